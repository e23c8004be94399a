// Package history keeps the linear undo/redo timeline of a poster scene.
package history

import (
	"time"

	"poster/internal/domain"
)

const (
	DefaultLimit = 100

	// InitialDescription labels the entry every stack is seeded with.
	InitialDescription = "initial state"
)

// Stack is a linear list of snapshots with a cursor pointing at the
// present. Recording after an undo discards the redo branch.
type Stack struct {
	entries []domain.HistoryEntry
	cursor  int
	limit   int
	now     func() time.Time
}

type Option func(*Stack)

// WithLimit caps the number of entries kept. When exceeded the oldest
// entries are dropped. Values below 2 are ignored.
func WithLimit(n int) Option {
	return func(s *Stack) {
		if n >= 2 {
			s.limit = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Stack) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a stack seeded with a single entry holding initial.
func New(initial []domain.Block, opts ...Option) *Stack {
	s := &Stack{limit: DefaultLimit, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.entries = []domain.HistoryEntry{s.entry(initial, InitialDescription)}
	return s
}

func (s *Stack) entry(blocks []domain.Block, description string) domain.HistoryEntry {
	return domain.HistoryEntry{
		Blocks:      copyBlocks(blocks),
		Timestamp:   s.now(),
		Description: description,
	}
}

// Record appends a snapshot after the cursor, dropping any entries that
// could have been redone.
func (s *Stack) Record(blocks []domain.Block, description string) {
	s.entries = append(s.entries[:s.cursor+1], s.entry(blocks, description))
	s.cursor = len(s.entries) - 1
	s.prune()
}

// prune drops the oldest entries past the limit and shifts the cursor.
func (s *Stack) prune() {
	extra := len(s.entries) - s.limit
	if extra <= 0 {
		return
	}
	kept := make([]domain.HistoryEntry, len(s.entries)-extra)
	copy(kept, s.entries[extra:])
	s.entries = kept
	s.cursor -= extra
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// Undo steps back one entry and returns the new present. At the oldest
// entry it returns the present unchanged.
func (s *Stack) Undo() domain.HistoryEntry {
	if s.CanUndo() {
		s.cursor--
	}
	return s.Present()
}

// Redo steps forward one entry and returns the new present.
func (s *Stack) Redo() domain.HistoryEntry {
	if s.CanRedo() {
		s.cursor++
	}
	return s.Present()
}

func (s *Stack) CanUndo() bool { return s.cursor > 0 }
func (s *Stack) CanRedo() bool { return s.cursor < len(s.entries)-1 }

// Present returns a copy of the entry under the cursor.
func (s *Stack) Present() domain.HistoryEntry {
	return cloneEntry(s.entries[s.cursor])
}

func (s *Stack) Len() int    { return len(s.entries) }
func (s *Stack) Cursor() int { return s.cursor }
func (s *Stack) Limit() int  { return s.limit }

// Entries returns copies of every entry, oldest first.
func (s *Stack) Entries() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func cloneEntry(e domain.HistoryEntry) domain.HistoryEntry {
	e.Blocks = copyBlocks(e.Blocks)
	return e
}

func copyBlocks(blocks []domain.Block) []domain.Block {
	out := make([]domain.Block, len(blocks))
	copy(out, blocks)
	return out
}
