package editor

import (
	"poster/internal/canvas"
	"poster/internal/domain"
	"poster/internal/history"
)

// Options tunes a Session. Zero numeric fields are replaced by the
// defaults in DefaultOptions when the session is built.
type Options struct {
	GridSize    float64
	Bounds      *domain.Rect
	Constraints domain.SizeConstraints

	MinDistance  float64
	Strength     float64
	GuideEpsilon float64

	NudgeStep       float64
	FineNudgeStep   float64
	DuplicateOffset float64

	// AutoContain reparents a top-level block into the container under
	// its center when a drag ends.
	AutoContain bool

	HistoryLimit int

	LayoutPadding float64
	MaxRowWidth   float64

	// FallbackSize is used for new blocks and presets the catalog does
	// not know.
	FallbackSize domain.Size
}

func DefaultOptions() Options {
	return Options{
		GridSize:        canvas.DefaultGridSize,
		Constraints:     domain.DefaultSizeConstraints(),
		MinDistance:     canvas.DefaultMinDistance,
		Strength:        canvas.DefaultStrength,
		GuideEpsilon:    canvas.DefaultGuideEpsilon,
		NudgeStep:       10,
		FineNudgeStep:   1,
		DuplicateOffset: 20,
		AutoContain:     true,
		HistoryLimit:    history.DefaultLimit,
		LayoutPadding:   canvas.DefaultLayoutPadding,
		MaxRowWidth:     canvas.DefaultMaxRowWidth,
		FallbackSize:    domain.Size{Width: 200, Height: 100},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.GridSize <= 0 {
		o.GridSize = d.GridSize
	}
	if o.Constraints == (domain.SizeConstraints{}) {
		o.Constraints = d.Constraints
	}
	if o.MinDistance <= 0 {
		o.MinDistance = d.MinDistance
	}
	if o.Strength <= 0 {
		o.Strength = d.Strength
	}
	if o.GuideEpsilon <= 0 {
		o.GuideEpsilon = d.GuideEpsilon
	}
	if o.NudgeStep <= 0 {
		o.NudgeStep = d.NudgeStep
	}
	if o.FineNudgeStep <= 0 {
		o.FineNudgeStep = d.FineNudgeStep
	}
	if o.DuplicateOffset == 0 {
		o.DuplicateOffset = d.DuplicateOffset
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = d.HistoryLimit
	}
	if o.LayoutPadding <= 0 {
		o.LayoutPadding = d.LayoutPadding
	}
	if o.MaxRowWidth <= 0 {
		o.MaxRowWidth = d.MaxRowWidth
	}
	if o.FallbackSize.Width <= 0 || o.FallbackSize.Height <= 0 {
		o.FallbackSize = d.FallbackSize
	}
	return o
}
