package shortcut_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poster/internal/domain"
	"poster/internal/editor"
	"poster/internal/shortcut"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ctrl+Shift+Z", "Ctrl+Shift+Z"},
		{"ctrl+shift+z", "Ctrl+Shift+Z"},
		{"Cmd+d", "Ctrl+D"},
		{"Shift+ArrowUp", "Shift+ArrowUp"},
		{"left", "ArrowLeft"},
		{"Esc", "Escape"},
		{"del", "Delete"},
		{"3", "3"},
		{"f5", "F5"},
	}
	for _, tt := range tests {
		k, err := shortcut.ParseKey(tt.in)
		if err != nil {
			t.Errorf("ParseKey(%q): %v", tt.in, err)
			continue
		}
		if got := k.String(); got != tt.want {
			t.Errorf("ParseKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "Hyper+Z", "Ctrl+", "Banana", "F99"} {
		_, err := shortcut.ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func setup(t *testing.T) (*editor.Session, *shortcut.Dispatcher, domain.Block) {
	t.Helper()
	s := editor.New(editor.DefaultOptions(), nil, nil)
	p := domain.Point{X: 100, Y: 100}
	b, ok := s.Add(editor.NewBlock{Type: domain.BlockTypeText, Position: &p, Content: "hello"})
	require.True(t, ok)
	return s, shortcut.New(s, shortcut.Hooks{}), b
}

func press(t *testing.T, d *shortcut.Dispatcher, key string) bool {
	t.Helper()
	ok, err := d.Press(context.Background(), key)
	require.NoError(t, err)
	return ok
}

func TestDispatcher_Nudge(t *testing.T) {
	s, d, b := setup(t)

	assert.True(t, press(t, d, "ArrowRight"))
	assert.True(t, press(t, d, "Shift+ArrowUp"))

	got, _ := s.Block(b.ID)
	assert.Equal(t, domain.Point{X: 110, Y: 99}, got.Position)
}

func TestDispatcher_CustomNudgeSteps(t *testing.T) {
	s := editor.New(editor.DefaultOptions(), nil, nil)
	b, _ := s.Add(editor.NewBlock{Type: domain.BlockTypeText})
	d := shortcut.New(s, shortcut.Hooks{}, shortcut.WithNudge(25, 5))

	press(t, d, "ArrowDown")
	press(t, d, "Shift+ArrowLeft")
	got, _ := s.Block(b.ID)
	assert.Equal(t, domain.Point{X: b.Position.X - 5, Y: b.Position.Y + 25}, got.Position)
}

func TestDispatcher_DuplicateDeleteUndo(t *testing.T) {
	s, d, b := setup(t)

	require.True(t, press(t, d, "Ctrl+D"))
	require.Len(t, s.Blocks(), 2)
	dup := s.Blocks()[1]
	assert.Equal(t, domain.Point{X: 120, Y: 120}, dup.Position)
	assert.Equal(t, b.Content, dup.Content)

	require.True(t, press(t, d, "Delete"), "deletes the selected duplicate")
	assert.Len(t, s.Blocks(), 1)
	assert.False(t, press(t, d, "Backspace"), "nothing selected")

	require.True(t, press(t, d, "Ctrl+Z"))
	assert.Len(t, s.Blocks(), 2)
	require.True(t, press(t, d, "Ctrl+Shift+Z"))
	assert.Len(t, s.Blocks(), 1)
	require.True(t, press(t, d, "Ctrl+Z"))
	require.True(t, press(t, d, "Ctrl+Y"))
	assert.Len(t, s.Blocks(), 1)
}

func TestDispatcher_Presets(t *testing.T) {
	s, d, b := setup(t)
	s.SetSize(b.ID, domain.Size{Width: 400, Height: 400})

	require.True(t, press(t, d, "3"))
	got, _ := s.Block(b.ID)
	assert.Equal(t, domain.Size{Width: 200, Height: 100}, got.Size, "fallback preset size")
}

func TestDispatcher_EscapeClearsSelection(t *testing.T) {
	s, d, _ := setup(t)
	assert.True(t, press(t, d, "Escape"))
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.False(t, press(t, d, "ArrowLeft"))
}

func TestDispatcher_Hooks(t *testing.T) {
	_, d, _ := setup(t)
	assert.False(t, press(t, d, "Ctrl+S"), "no hook installed")

	var saved, exported int
	boom := errors.New("disk full")
	d.SetHooks(shortcut.Hooks{
		Save:   func(context.Context) error { saved++; return nil },
		Export: func(context.Context) error { exported++; return boom },
	})

	assert.True(t, press(t, d, "Ctrl+S"))
	assert.Equal(t, 1, saved)

	ok, err := d.Press(context.Background(), "Ctrl+E")
	assert.True(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, exported)
}

func TestDispatcher_BindOverrides(t *testing.T) {
	s, d, _ := setup(t)
	calls := 0
	d.Bind(shortcut.MustParseKey("Delete"), func(context.Context) (bool, error) {
		calls++
		return true, nil
	})

	press(t, d, "Delete")
	assert.Equal(t, 1, calls)
	assert.Len(t, s.Blocks(), 1)

	d.Bind(shortcut.MustParseKey("Delete"), nil)
	assert.False(t, press(t, d, "Delete"))
	assert.NotContains(t, d.Bindings(), "Delete")
	assert.Contains(t, d.Bindings(), "Ctrl+Shift+Z")
}

func TestDispatcher_UnboundAndInvalid(t *testing.T) {
	_, d, _ := setup(t)
	assert.False(t, press(t, d, "Ctrl+Alt+Q"))

	_, err := d.Press(context.Background(), "Hyper+Q")
	assert.Error(t, err)
}
