// Package editor owns the editing session of one poster scene. Every
// mutation, whether it comes from the pointer, a shortcut, an MCP tool or
// a file reload, goes through a Session method, which runs the canvas
// engines and records history.
//
// A Session is not safe for concurrent use. Hosts with several input
// goroutines serialize events themselves.
package editor

import (
	"context"

	"github.com/google/uuid"

	"poster/internal/canvas"
	"poster/internal/domain"
	"poster/internal/history"
)

type Session struct {
	opts    Options
	catalog TypeCatalog
	emitter Emitter

	scene   *domain.Scene
	history *history.Stack

	placement  *canvas.Placement
	collisions *canvas.Collisions
	guides     *canvas.Guides
	layout     *canvas.Layout

	gesture  gesture
	feedback Feedback
	selected string

	// version increases whenever the live scene is replaced outside a
	// gesture frame. Hosts compare it to detect unsaved changes.
	version uint64
	newID   func() string
}

// New builds a session over initial. A nil catalog or emitter is
// replaced with a no-op.
func New(opts Options, catalog TypeCatalog, emitter Emitter, initial ...domain.Block) *Session {
	opts = opts.withDefaults()
	if catalog == nil {
		catalog = nopCatalog{}
	}
	if emitter == nil {
		emitter = nopEmitter{}
	}
	scene := domain.NewScene(initial...)
	return &Session{
		opts:       opts,
		catalog:    catalog,
		emitter:    emitter,
		scene:      scene,
		history:    history.New(scene.All(), history.WithLimit(opts.HistoryLimit)),
		placement:  canvas.NewPlacement(opts.GridSize, opts.Bounds),
		collisions: canvas.NewCollisions(opts.MinDistance, opts.Strength),
		guides:     canvas.NewGuides(opts.GuideEpsilon),
		layout:     canvas.NewLayout(opts.GridSize, opts.LayoutPadding, opts.MaxRowWidth),
		gesture:    gesture{kind: GestureIdle},
		newID:      uuid.NewString,
	}
}

func (s *Session) Options() Options { return s.opts }

// Version identifies the current committed state.
func (s *Session) Version() uint64 { return s.version }

// Blocks returns copies of every block in insertion order.
func (s *Session) Blocks() []domain.Block { return s.scene.All() }

func (s *Session) Block(id string) (domain.Block, bool) { return s.scene.Get(id) }

// Scene returns a copy of the live scene.
func (s *Session) Scene() *domain.Scene { return s.scene.Clone() }

// TopToBottom lists block ids in paint order, topmost first.
func (s *Session) TopToBottom() []string { return canvas.TopToBottom(s.scene) }

// Inspect computes collision and guide feedback for id as it stands.
func (s *Session) Inspect(id string) (Feedback, bool) {
	if !s.scene.Has(id) {
		return Feedback{}, false
	}
	fb := Feedback{
		Collision: s.collisions.Detect(s.scene, id),
		Guides:    s.guides.Find(s.scene, id),
	}
	if target, ok := s.placement.DropTarget(s.scene, id); ok {
		fb.DropTarget = target.ID
	}
	return fb, true
}

// ── history ──────────────────────────────────────────────

func (s *Session) History() []domain.HistoryEntry { return s.history.Entries() }
func (s *Session) HistoryCursor() int             { return s.history.Cursor() }
func (s *Session) CanUndo() bool                  { return !s.gesture.active() && s.history.CanUndo() }
func (s *Session) CanRedo() bool                  { return !s.gesture.active() && s.history.CanRedo() }

// Undo restores the previous entry. It is rejected during a gesture and
// at the oldest entry.
func (s *Session) Undo() bool {
	if !s.CanUndo() {
		return false
	}
	s.restore(s.history.Undo())
	return true
}

// Redo re-applies the next entry.
func (s *Session) Redo() bool {
	if !s.CanRedo() {
		return false
	}
	s.restore(s.history.Redo())
	return true
}

func (s *Session) restore(e domain.HistoryEntry) {
	s.scene = domain.NewScene(e.Blocks...)
	s.version++
	if s.selected != "" && !s.scene.Has(s.selected) {
		s.selected = ""
	}
	s.emit(EventHistoryMoved, s.change(e.Description))
}

// record snapshots the live scene as a new history entry.
func (s *Session) record(description string) {
	s.history.Record(s.scene.All(), description)
	s.version++
	s.emit(EventCommitted, s.change(description))
}

// commit replaces the live scene with next and records it, unless next
// is identical to the current scene.
func (s *Session) commit(next *domain.Scene, description string) {
	if next.Equal(s.scene) {
		return
	}
	s.scene = next
	s.record(description)
}

func (s *Session) change(description string) Change {
	return Change{Description: description, Cursor: s.history.Cursor(), Blocks: s.scene.Len()}
}

func (s *Session) emit(event string, data any) {
	s.emitter.Emit(context.Background(), event, data)
}

// ── selection ────────────────────────────────────────────

// Select makes id the current selection.
func (s *Session) Select(id string) bool {
	if !s.scene.Has(id) {
		return false
	}
	s.selectID(id)
	return true
}

func (s *Session) selectID(id string) {
	if s.selected == id {
		return
	}
	s.selected = id
	s.emit(EventSelection, id)
}

func (s *Session) Selected() (string, bool) {
	if s.selected == "" || !s.scene.Has(s.selected) {
		return "", false
	}
	return s.selected, true
}

func (s *Session) ClearSelection() {
	if s.selected != "" {
		s.selectID("")
	}
}
