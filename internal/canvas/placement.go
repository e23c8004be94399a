// Package canvas holds the geometric engines of the poster editor:
// grid-snapped placement, anchor-preserving resize, collision and
// alignment feedback, z-order and automatic layout.
//
// Every engine works on *domain.Scene values and returns a new scene
// (or advisory data) without mutating its input. None of them know about
// block types beyond the container flag, history or the host.
package canvas

import (
	"math"

	"poster/internal/domain"
)

const DefaultGridSize = 20.0

// Placement converts drag deltas into committed block positions.
type Placement struct {
	GridSize float64
	// Bounds optionally confines top-level blocks. Nil leaves the root
	// canvas unconstrained.
	Bounds *domain.Rect
}

func NewPlacement(gridSize float64, bounds *domain.Rect) *Placement {
	return &Placement{GridSize: gridSize, Bounds: bounds}
}

// Snap rounds v to the nearest grid line.
func (p *Placement) Snap(v float64) float64 {
	if p.GridSize <= 0 {
		return v
	}
	return math.Round(v/p.GridSize) * p.GridSize
}

// Drag places block id at start+(dx,dy), snapped to the grid and kept
// inside its container (or the root bounds). Descendants travel with it.
// Unknown or locked blocks leave the scene untouched and report false.
func (p *Placement) Drag(s *domain.Scene, id string, start domain.Point, dx, dy float64) (*domain.Scene, bool) {
	b, ok := s.Get(id)
	if !ok || b.Locked {
		return s, false
	}
	pos := domain.Point{X: p.Snap(start.X + dx), Y: p.Snap(start.Y + dy)}
	if lim, ok := p.limits(s, b); ok {
		pos = p.clamp(pos, b.Size, lim, p.GridSize)
	}
	return moveTree(s, b, pos), true
}

// Offset moves block id by (dx, dy) without snapping. Used for keyboard
// nudges, which must be able to reach off-grid positions.
func (p *Placement) Offset(s *domain.Scene, id string, dx, dy float64) (*domain.Scene, bool) {
	b, ok := s.Get(id)
	if !ok || b.Locked {
		return s, false
	}
	pos := b.Position.Add(dx, dy)
	if lim, ok := p.limits(s, b); ok {
		pos = p.clamp(pos, b.Size, lim, 0)
	}
	return moveTree(s, b, pos), true
}

// MoveTo places block id at pos exactly, clamped but not snapped.
func (p *Placement) MoveTo(s *domain.Scene, id string, pos domain.Point) (*domain.Scene, bool) {
	b, ok := s.Get(id)
	if !ok {
		return s, false
	}
	return p.Offset(s, id, pos.X-b.Position.X, pos.Y-b.Position.Y)
}

// Confine returns b's position kept inside its container, or inside the
// root bounds for top-level blocks. b does not have to be in s yet.
func (p *Placement) Confine(s *domain.Scene, b domain.Block) domain.Point {
	if lim, ok := p.limits(s, b); ok {
		return p.clamp(b.Position, b.Size, lim, 0)
	}
	return b.Position
}

// DropTarget finds the container a top-level block would fall into if
// released now: the topmost visible container, other than the block and
// its descendants, whose rectangle holds the block's center.
func (p *Placement) DropTarget(s *domain.Scene, id string) (domain.Block, bool) {
	b, ok := s.Get(id)
	if !ok {
		return domain.Block{}, false
	}
	if _, nested := s.Parent(b); nested {
		return domain.Block{}, false
	}
	center := b.Rect().Center()
	var target domain.Block
	found := false
	for _, c := range s.Ordered() {
		if c.ID == id || !c.IsContainer() || !c.Visible || s.IsDescendant(c.ID, id) {
			continue
		}
		if c.Rect().ContainsPoint(center) {
			target, found = c, true
		}
	}
	return target, found
}

// Reparent sets block id's parent and pulls it inside the new parent's
// rectangle. An empty parentID detaches the block. Unknown ids, self
// parenting and cycles are rejected.
func (p *Placement) Reparent(s *domain.Scene, id, parentID string) (*domain.Scene, bool) {
	b, ok := s.Get(id)
	if !ok {
		return s, false
	}
	if parentID == "" {
		if b.ParentID == "" {
			return s, false
		}
		b.ParentID = ""
		out := s.Clone()
		out.Upsert(b)
		return out, true
	}
	parent, ok := s.Get(parentID)
	if !ok || parentID == id || s.IsDescendant(parentID, id) {
		return s, false
	}
	b.ParentID = parentID
	out := s.Clone()
	out.Upsert(b)
	pos := p.clamp(b.Position, b.Size, parent.Rect(), p.GridSize)
	return moveTree(out, b, pos), true
}

// limits returns the rectangle the block has to stay in, if any.
func (p *Placement) limits(s *domain.Scene, b domain.Block) (domain.Rect, bool) {
	if parent, ok := s.Parent(b); ok {
		return parent.Rect(), true
	}
	if p.Bounds != nil {
		return *p.Bounds, true
	}
	return domain.Rect{}, false
}

func (p *Placement) clamp(pos domain.Point, size domain.Size, lim domain.Rect, grid float64) domain.Point {
	return domain.Point{
		X: clampAxis(pos.X, size.Width, lim.X, lim.Right(), grid),
		Y: clampAxis(pos.Y, size.Height, lim.Y, lim.Bottom(), grid),
	}
}

// clampAxis keeps [v, v+size] inside [lo, hi]. When clamping moves v off
// the grid it is pulled inward to the nearest grid line that still fits.
// A block larger than the range is pinned to lo.
func clampAxis(v, size, lo, hi, grid float64) float64 {
	maxV := hi - size
	if maxV < lo {
		return lo
	}
	switch {
	case v < lo:
		v = lo
		if grid > 0 {
			if g := math.Ceil(lo/grid) * grid; g <= maxV {
				v = g
			}
		}
	case v > maxV:
		v = maxV
		if grid > 0 {
			if g := math.Floor(maxV/grid) * grid; g >= lo {
				v = g
			}
		}
	}
	return v
}

// moveTree moves b to pos and shifts every descendant by the same offset.
func moveTree(s *domain.Scene, b domain.Block, pos domain.Point) *domain.Scene {
	dx, dy := pos.X-b.Position.X, pos.Y-b.Position.Y
	out := s.Clone()
	b.Position = pos
	out.Upsert(b)
	if dx == 0 && dy == 0 {
		return out
	}
	for _, c := range s.All() {
		if c.ID != b.ID && s.IsDescendant(c.ID, b.ID) {
			c.Position = c.Position.Add(dx, dy)
			out.Upsert(c)
		}
	}
	return out
}
