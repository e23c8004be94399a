package canvas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"poster/internal/canvas"
	"poster/internal/domain"
)

func TestGuides_CenterAlignment(t *testing.T) {
	g := canvas.NewGuides(canvas.DefaultGuideEpsilon)

	// Active center x=150, peer center x=153; edges stay far apart.
	near := domain.NewScene(blk("a", 100, 0, 100, 50), blk("b", 133, 500, 40, 40))
	got := g.Find(near, "a")
	assert.Equal(t, []float64{153}, got.Vertical)
	assert.Empty(t, got.Horizontal)

	// Peer center x=160 is outside epsilon.
	far := domain.NewScene(blk("a", 100, 0, 100, 50), blk("b", 140, 500, 40, 40))
	assert.True(t, g.Find(far, "a").Empty())
}

func TestGuides_EdgeAlignment(t *testing.T) {
	g := canvas.NewGuides(canvas.DefaultGuideEpsilon)
	// a's right edge (200) sits 2 units from b's left edge (202); tops
	// match exactly.
	s := domain.NewScene(blk("a", 100, 300, 100, 50), blk("b", 202, 300, 80, 200))

	got := g.Find(s, "a")
	assert.Contains(t, got.Vertical, 202.0)
	assert.Contains(t, got.Horizontal, 300.0)
}

func TestGuides_DeduplicatesAndSorts(t *testing.T) {
	g := canvas.NewGuides(canvas.DefaultGuideEpsilon)
	s := domain.NewScene(
		blk("a", 0, 0, 100, 100),
		blk("b", 0, 400, 100, 100),
		blk("c", 2, 800, 100, 100),
	)

	got := g.Find(s, "a")
	assert.Equal(t, []float64{0, 2, 50, 52, 100, 102}, got.Vertical)
}

func TestGuides_SkipsHiddenAndUnknown(t *testing.T) {
	g := canvas.NewGuides(canvas.DefaultGuideEpsilon)
	hidden := blk("b", 0, 400, 100, 100)
	hidden.Visible = false
	s := domain.NewScene(blk("a", 0, 0, 100, 100), hidden)

	assert.True(t, g.Find(s, "a").Empty())
	assert.True(t, g.Find(s, "missing").Empty())
}
