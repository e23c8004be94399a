package canvas

import (
	"math"

	"poster/internal/domain"
)

const (
	DefaultMinDistance = 100.0
	DefaultStrength    = 10.0
)

// Collisions detects overlap between the active block and its peers and
// proposes a separation vector. The result is advisory: nothing here
// writes to a scene.
type Collisions struct {
	MinDistance float64
	Strength    float64
}

func NewCollisions(minDistance, strength float64) *Collisions {
	return &Collisions{MinDistance: minDistance, Strength: strength}
}

// Collision is the advisory result for one active block.
type Collision struct {
	IDs       []string      `json:"ids"`
	Repulsion domain.Vector `json:"repulsion"`
}

// Intersects is the AABB overlap test: a pair collides unless one box is
// entirely left of, right of, above or below the other. Touching edges
// do not collide.
func Intersects(a, b domain.Rect) bool {
	return a.Intersects(b)
}

// Detect collects the visible blocks overlapping activeID and sums their
// pairwise repulsion forces.
func (c *Collisions) Detect(s *domain.Scene, activeID string) Collision {
	var out Collision
	active, ok := s.Get(activeID)
	if !ok {
		return out
	}
	ar := active.Rect()
	for _, other := range s.All() {
		if other.ID == activeID || !other.Visible {
			continue
		}
		or := other.Rect()
		if !Intersects(ar, or) {
			continue
		}
		out.IDs = append(out.IDs, other.ID)
		f := c.force(ar.Center(), or.Center())
		out.Repulsion.X += f.X
		out.Repulsion.Y += f.Y
	}
	return out
}

// force pushes active away from other when their centers are closer
// than MinDistance. Coincident centers push along +X.
func (c *Collisions) force(active, other domain.Point) domain.Vector {
	if c.MinDistance <= 0 {
		return domain.Vector{}
	}
	vx, vy := active.X-other.X, active.Y-other.Y
	d := math.Hypot(vx, vy)
	if d >= c.MinDistance {
		return domain.Vector{}
	}
	magnitude := (c.MinDistance - d) / c.MinDistance * c.Strength
	if d == 0 {
		return domain.Vector{X: magnitude}
	}
	return domain.Vector{X: vx / d * magnitude, Y: vy / d * magnitude}
}

// Overlaps lists every overlapping pair of visible blocks in the scene,
// in insertion order.
func Overlaps(s *domain.Scene) [][2]string {
	blocks := s.All()
	var pairs [][2]string
	for i := 0; i < len(blocks); i++ {
		if !blocks[i].Visible {
			continue
		}
		for j := i + 1; j < len(blocks); j++ {
			if blocks[j].Visible && Intersects(blocks[i].Rect(), blocks[j].Rect()) {
				pairs = append(pairs, [2]string{blocks[i].ID, blocks[j].ID})
			}
		}
	}
	return pairs
}
