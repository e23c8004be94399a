package domain

import "math"

type BlockType string

const (
	BlockTypeHeader    BlockType = "header"
	BlockTypeSubheader BlockType = "subheader"
	BlockTypePrice     BlockType = "price"
	BlockTypeImage     BlockType = "image"
	BlockTypeText      BlockType = "text"
	BlockTypeContainer BlockType = "container"
	BlockTypeBadge     BlockType = "badge"
)

// Block is a placeable rectangle on the poster canvas.
// Content is opaque to the layout engine and copied verbatim.
type Block struct {
	ID       string    `json:"id" yaml:"id" bson:"id"`
	Type     BlockType `json:"type" yaml:"type" bson:"type"`
	Position Point     `json:"position" yaml:"position" bson:"position"`
	Size     Size      `json:"size" yaml:"size" bson:"size"`
	ZIndex   int       `json:"zIndex" yaml:"zIndex" bson:"zIndex"`
	ParentID string    `json:"parentId,omitempty" yaml:"parentId,omitempty" bson:"parentId,omitempty"`
	Content  string    `json:"content" yaml:"content" bson:"content"`
	Locked   bool      `json:"locked" yaml:"locked" bson:"locked"`
	Visible  bool      `json:"visible" yaml:"visible" bson:"visible"`
}

// Rect returns the block's bounding box.
func (b Block) Rect() Rect {
	return Rect{X: b.Position.X, Y: b.Position.Y, W: b.Size.Width, H: b.Size.Height}
}

// IsContainer reports whether other blocks may be dropped into b.
func (b Block) IsContainer() bool {
	return b.Type == BlockTypeContainer
}

// SizeConstraints bounds block dimensions.
type SizeConstraints struct {
	MinWidth  float64 `toml:"min_width"`
	MaxWidth  float64 `toml:"max_width"`
	MinHeight float64 `toml:"min_height"`
	MaxHeight float64 `toml:"max_height"`
}

// DefaultSizeConstraints returns width ∈ [50,1000], height ∈ [30,600].
func DefaultSizeConstraints() SizeConstraints {
	return SizeConstraints{MinWidth: 50, MaxWidth: 1000, MinHeight: 30, MaxHeight: 600}
}

func (c SizeConstraints) ClampWidth(w float64) float64 {
	return clamp(w, c.MinWidth, c.MaxWidth)
}

func (c SizeConstraints) ClampHeight(h float64) float64 {
	return clamp(h, c.MinHeight, c.MaxHeight)
}

// Clamp returns s with both dimensions inside the constraints.
func (c SizeConstraints) Clamp(s Size) Size {
	return Size{Width: c.ClampWidth(s.Width), Height: c.ClampHeight(s.Height)}
}

// clamp bounds v to [lo, hi]; a non-positive hi means unbounded above.
func clamp(v, lo, hi float64) float64 {
	if hi > 0 {
		v = math.Min(v, hi)
	}
	return math.Max(v, lo)
}
