package canvas

import (
	"math"

	"poster/internal/domain"
)

const (
	DefaultLayoutPadding = 40.0 // 2 grid cells between blocks
	DefaultMaxRowWidth   = 1200.0
)

// Layout handles automatic placement of blocks on the canvas so that
// blocks added without a position don't land on top of existing ones.
type Layout struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayout(gridSize, padding, maxRowW float64) *Layout {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	return &Layout{
		gridSize: gridSize,
		padding:  padding,
		maxRowW:  maxRowW,
	}
}

// snap rounds v to the nearest grid point.
func (le *Layout) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// NextPosition finds the next non-overlapping grid position for a block
// of the given size among the existing blocks.
func (le *Layout) NextPosition(existing []domain.Block, size domain.Size) domain.Point {
	if len(existing) == 0 {
		return domain.Point{}
	}

	occupied := make([]domain.Rect, 0, len(existing))
	for _, b := range existing {
		if b.Visible {
			occupied = append(occupied, b.Rect())
		}
	}

	// Scan rows top-to-bottom, columns left-to-right
	candidate := domain.Rect{W: size.Width, H: size.Height}
	for y := 0.0; y < 100000; y += le.gridSize {
		for x := 0.0; x+size.Width <= le.maxRowW || x == 0; x += le.gridSize {
			candidate.X = le.snap(x)
			candidate.Y = le.snap(y)

			overlaps := false
			for _, occ := range occupied {
				padded := domain.Rect{
					X: occ.X - le.padding,
					Y: occ.Y - le.padding,
					W: occ.W + le.padding*2,
					H: occ.H + le.padding*2,
				}
				if candidate.Intersects(padded) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return domain.Point{X: candidate.X, Y: candidate.Y}
			}
		}
	}

	// Fallback: place below all existing blocks
	maxY := 0.0
	for _, b := range existing {
		if b.Position.Y+b.Size.Height > maxY {
			maxY = b.Position.Y + b.Size.Height
		}
	}
	return domain.Point{Y: le.snap(maxY + le.padding)}
}

// ArrangeGroup places blocks in rows starting from start, wrapping at the
// maximum row width. It returns the blocks with their new positions; the
// input slice is not modified.
func (le *Layout) ArrangeGroup(blocks []domain.Block, start domain.Point) []domain.Block {
	out := make([]domain.Block, len(blocks))
	copy(out, blocks)

	x := le.snap(start.X)
	y := le.snap(start.Y)
	rowHeight := 0.0

	for i := range out {
		if x > le.snap(start.X) && x+out[i].Size.Width > start.X+le.maxRowW {
			x = le.snap(start.X)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}

		out[i].Position = domain.Point{X: x, Y: y}
		if out[i].Size.Height > rowHeight {
			rowHeight = out[i].Size.Height
		}
		x += le.snap(out[i].Size.Width + le.padding)
	}

	return out
}
