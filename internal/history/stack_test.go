package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poster/internal/domain"
	"poster/internal/history"
)

func blocks(ids ...string) []domain.Block {
	out := make([]domain.Block, len(ids))
	for i, id := range ids {
		out[i] = domain.Block{ID: id, Size: domain.Size{Width: 100, Height: 100}, ZIndex: i + 1, Visible: true}
	}
	return out
}

func TestNew_SeedsInitialEntry(t *testing.T) {
	s := history.New(nil)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Cursor())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.Equal(t, history.InitialDescription, s.Present().Description)
}

func TestStack_UndoRedoRoundTrip(t *testing.T) {
	s := history.New(nil)
	s.Record(blocks("a"), "add")
	afterA := s.Present()
	s.Record(blocks("a", "b"), "add")

	s.Undo()
	s.Undo()
	got := s.Redo()

	assert.Equal(t, afterA.Blocks, got.Blocks)
	assert.True(t, s.CanRedo())
}

func TestStack_EndsAreNoops(t *testing.T) {
	s := history.New(blocks("a"))
	assert.Equal(t, blocks("a"), s.Undo().Blocks)
	assert.Equal(t, 0, s.Cursor())

	s.Record(blocks("a", "b"), "add")
	assert.Equal(t, blocks("a", "b"), s.Redo().Blocks)
	assert.Equal(t, 1, s.Cursor())
}

func TestStack_RecordTruncatesRedoBranch(t *testing.T) {
	s := history.New(nil)
	s.Record(blocks("a"), "add")
	s.Record(blocks("a", "b"), "add")
	s.Undo()

	s.Record(blocks("a", "c"), "add")

	assert.Equal(t, 3, s.Len())
	assert.False(t, s.CanRedo())
	assert.Equal(t, blocks("a", "c"), s.Present().Blocks)
}

func TestStack_LimitDropsOldest(t *testing.T) {
	s := history.New(nil, history.WithLimit(3))
	s.Record(blocks("a"), "one")
	s.Record(blocks("b"), "two")
	s.Record(blocks("c"), "three")

	require.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Cursor())
	entries := s.Entries()
	assert.Equal(t, "one", entries[0].Description)
	assert.Equal(t, "three", entries[2].Description)
}

func TestStack_SnapshotsAreIsolated(t *testing.T) {
	live := blocks("a")
	s := history.New(nil)
	s.Record(live, "add")

	live[0].Position.X = 999
	assert.Zero(t, s.Present().Blocks[0].Position.X, "recorded snapshot copied")

	p := s.Present()
	p.Blocks[0].ID = "mutated"
	assert.Equal(t, "a", s.Present().Blocks[0].ID, "returned entry copied")
}

func TestStack_Clock(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := history.New(nil, history.WithClock(func() time.Time { return ts }))
	assert.Equal(t, ts, s.Present().Timestamp)
}
