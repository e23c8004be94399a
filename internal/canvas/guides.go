package canvas

import (
	"math"
	"sort"

	"poster/internal/domain"
)

const DefaultGuideEpsilon = 5.0

// Guides finds near-alignments between a moving block and its peers.
// Guides are visual hints only; they never move anything.
type Guides struct {
	Epsilon float64
}

func NewGuides(epsilon float64) *Guides {
	return &Guides{Epsilon: epsilon}
}

// GuideSet holds guide coordinates: vertical lines are x values,
// horizontal lines are y values.
type GuideSet struct {
	Vertical   []float64 `json:"verticalLines"`
	Horizontal []float64 `json:"horizontalLines"`
}

func (g GuideSet) Empty() bool {
	return len(g.Vertical) == 0 && len(g.Horizontal) == 0
}

// axisFeatures are the comparable coordinates of a box along one axis.
type axisFeatures struct {
	lo, mid, hi float64
}

func xFeatures(r domain.Rect) axisFeatures { return axisFeatures{r.Left(), r.Left() + r.W/2, r.Right()} }
func yFeatures(r domain.Rect) axisFeatures { return axisFeatures{r.Top(), r.Top() + r.H/2, r.Bottom()} }

// Find compares the active block's centers and edges against every other
// visible block. A guide is registered at the peer's coordinate.
func (g *Guides) Find(s *domain.Scene, activeID string) GuideSet {
	var out GuideSet
	active, ok := s.Get(activeID)
	if !ok {
		return out
	}
	ax, ay := xFeatures(active.Rect()), yFeatures(active.Rect())
	vertical := map[float64]bool{}
	horizontal := map[float64]bool{}
	for _, other := range s.All() {
		if other.ID == activeID || !other.Visible {
			continue
		}
		g.match(ax, xFeatures(other.Rect()), vertical)
		g.match(ay, yFeatures(other.Rect()), horizontal)
	}
	out.Vertical = sortedKeys(vertical)
	out.Horizontal = sortedKeys(horizontal)
	return out
}

// match registers center-to-center and edge-to-edge alignments,
// including opposite edges so abutting blocks are guided too.
func (g *Guides) match(a, o axisFeatures, into map[float64]bool) {
	if g.near(a.mid, o.mid) {
		into[o.mid] = true
	}
	for _, ae := range []float64{a.lo, a.hi} {
		for _, oe := range []float64{o.lo, o.hi} {
			if g.near(ae, oe) {
				into[oe] = true
			}
		}
	}
}

func (g *Guides) near(a, b float64) bool {
	return math.Abs(a-b) < g.Epsilon
}

func sortedKeys(m map[float64]bool) []float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([]float64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Float64s(out)
	return out
}
