package canvas

import "poster/internal/domain"

// Handle names one of the eight resize grips around a block.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Handles lists every valid handle.
var Handles = []Handle{HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW}

func ParseHandle(s string) (Handle, bool) {
	for _, h := range Handles {
		if string(h) == s {
			return h, true
		}
	}
	return "", false
}

// edges reports which sides of the box the handle drags. The opposite
// sides form the anchor.
func (h Handle) edges() (north, south, east, west bool) {
	switch h {
	case HandleN:
		north = true
	case HandleS:
		south = true
	case HandleE:
		east = true
	case HandleW:
		west = true
	case HandleNE:
		north, east = true, true
	case HandleNW:
		north, west = true, true
	case HandleSE:
		south, east = true, true
	case HandleSW:
		south, west = true, true
	}
	return
}

// Resize computes the rectangle produced by dragging handle h by (dx, dy)
// from start. Dimensions are clamped to c, and for north/west handles the
// position is recomputed from the anchor so the opposite edge stays put.
func Resize(start domain.Rect, h Handle, dx, dy float64, c domain.SizeConstraints) domain.Rect {
	north, south, east, west := h.edges()
	r := start
	if east {
		r.W = c.ClampWidth(start.W + dx)
	}
	if west {
		r.W = c.ClampWidth(start.W - dx)
		r.X = start.Right() - r.W
	}
	if south {
		r.H = c.ClampHeight(start.H + dy)
	}
	if north {
		r.H = c.ClampHeight(start.H - dy)
		r.Y = start.Bottom() - r.H
	}
	return r
}

// ResizeBlock applies Resize to block id, where start is the block's
// rectangle when the gesture began. Unknown or locked blocks are a no-op.
func ResizeBlock(s *domain.Scene, id string, start domain.Rect, h Handle, dx, dy float64, c domain.SizeConstraints) (*domain.Scene, bool) {
	b, ok := s.Get(id)
	if !ok || b.Locked {
		return s, false
	}
	r := Resize(start, h, dx, dy, c)
	b.Position = domain.Point{X: r.X, Y: r.Y}
	b.Size = domain.Size{Width: r.W, Height: r.H}
	out := s.Clone()
	out.Upsert(b)
	return out, true
}

// SetSize resizes block id to size from its top-left anchor, clamped.
func SetSize(s *domain.Scene, id string, size domain.Size, c domain.SizeConstraints) (*domain.Scene, bool) {
	b, ok := s.Get(id)
	if !ok || b.Locked {
		return s, false
	}
	return ResizeBlock(s, id, b.Rect(), HandleSE, size.Width-b.Size.Width, size.Height-b.Size.Height, c)
}
