package canvas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poster/internal/canvas"
	"poster/internal/domain"
)

func TestResize_SouthEastKeepsPosition(t *testing.T) {
	start := domain.Rect{X: 100, Y: 100, W: 200, H: 100}
	got := canvas.Resize(start, canvas.HandleSE, 50, 20, domain.DefaultSizeConstraints())
	assert.Equal(t, domain.Rect{X: 100, Y: 100, W: 250, H: 120}, got)
}

func TestResize_NorthWestKeepsBottomRight(t *testing.T) {
	start := domain.Rect{X: 100, Y: 100, W: 200, H: 100}
	got := canvas.Resize(start, canvas.HandleNW, 50, 20, domain.DefaultSizeConstraints())
	assert.Equal(t, domain.Rect{X: 150, Y: 120, W: 150, H: 80}, got)
	assert.Equal(t, start.Right(), got.Right())
	assert.Equal(t, start.Bottom(), got.Bottom())
}

func TestResize_ClampsToMinimum(t *testing.T) {
	c := domain.DefaultSizeConstraints()
	start := domain.Rect{X: 100, Y: 100, W: 200, H: 100}

	east := canvas.Resize(start, canvas.HandleE, -500, 0, c)
	assert.Equal(t, c.MinWidth, east.W)
	assert.Equal(t, start.X, east.X)

	west := canvas.Resize(start, canvas.HandleW, 500, 0, c)
	assert.Equal(t, c.MinWidth, west.W)
	assert.Equal(t, start.Right(), west.Right(), "anchor holds even when clamped")

	north := canvas.Resize(start, canvas.HandleN, 0, 5000, c)
	assert.Equal(t, c.MinHeight, north.H)
	assert.Equal(t, start.Bottom(), north.Bottom())
}

func TestResize_ClampsToMaximum(t *testing.T) {
	c := domain.DefaultSizeConstraints()
	got := canvas.Resize(domain.Rect{W: 200, H: 100}, canvas.HandleSE, 5000, 5000, c)
	assert.Equal(t, c.MaxWidth, got.W)
	assert.Equal(t, c.MaxHeight, got.H)
}

func TestResize_AnchorForEveryHandle(t *testing.T) {
	c := domain.DefaultSizeConstraints()
	start := domain.Rect{X: 100, Y: 100, W: 200, H: 100}

	for _, h := range canvas.Handles {
		for _, d := range [][2]float64{{30, -40}, {-30, 40}, {-900, 900}, {900, -900}} {
			got := canvas.Resize(start, h, d[0], d[1], c)
			name := string(h)

			assert.GreaterOrEqual(t, got.W, c.MinWidth, name)
			assert.LessOrEqual(t, got.W, c.MaxWidth, name)
			assert.GreaterOrEqual(t, got.H, c.MinHeight, name)
			assert.LessOrEqual(t, got.H, c.MaxHeight, name)

			switch h {
			case canvas.HandleW, canvas.HandleNW, canvas.HandleSW:
				assert.Equal(t, start.Right(), got.Right(), name)
			case canvas.HandleE, canvas.HandleNE, canvas.HandleSE:
				assert.Equal(t, start.Left(), got.Left(), name)
			default:
				assert.Equal(t, start.X, got.X, name)
				assert.Equal(t, start.W, got.W, name)
			}
			switch h {
			case canvas.HandleN, canvas.HandleNE, canvas.HandleNW:
				assert.Equal(t, start.Bottom(), got.Bottom(), name)
			case canvas.HandleS, canvas.HandleSE, canvas.HandleSW:
				assert.Equal(t, start.Top(), got.Top(), name)
			default:
				assert.Equal(t, start.Y, got.Y, name)
				assert.Equal(t, start.H, got.H, name)
			}
		}
	}
}

func TestParseHandle(t *testing.T) {
	h, ok := canvas.ParseHandle("sw")
	require.True(t, ok)
	assert.Equal(t, canvas.HandleSW, h)

	_, ok = canvas.ParseHandle("middle")
	assert.False(t, ok)
}

func TestResizeBlock_LockedIsNoop(t *testing.T) {
	b := blk("a", 0, 0, 100, 100)
	b.Locked = true
	s := domain.NewScene(b)

	out, ok := canvas.ResizeBlock(s, "a", b.Rect(), canvas.HandleSE, 50, 50, domain.DefaultSizeConstraints())
	assert.False(t, ok)
	assert.Same(t, s, out)
}

func TestSetSize(t *testing.T) {
	s := domain.NewScene(blk("a", 40, 60, 100, 100))

	out, ok := canvas.SetSize(s, "a", domain.Size{Width: 20, Height: 250}, domain.DefaultSizeConstraints())
	require.True(t, ok)
	got, _ := out.Get("a")
	assert.Equal(t, domain.Point{X: 40, Y: 60}, got.Position)
	assert.Equal(t, domain.Size{Width: 50, Height: 250}, got.Size)

	orig, _ := s.Get("a")
	assert.Equal(t, 100.0, orig.Size.Width, "input scene untouched")
}
