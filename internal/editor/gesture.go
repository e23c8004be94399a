package editor

import (
	"poster/internal/canvas"
	"poster/internal/domain"
)

// GestureKind names the pointer gesture in progress.
type GestureKind string

const (
	GestureIdle   GestureKind = "idle"
	GestureDrag   GestureKind = "drag"
	GestureResize GestureKind = "resize"
)

// gesture is the Idle → Active → Idle machine. Intermediate frames are
// always computed from base, the scene at gesture start, so a frame only
// depends on the cumulative delta.
type gesture struct {
	kind      GestureKind
	id        string
	base      *domain.Scene
	startPos  domain.Point
	startRect domain.Rect
	handle    canvas.Handle
}

func (g *gesture) active() bool { return g.kind != "" && g.kind != GestureIdle }

func (g *gesture) reset() { *g = gesture{kind: GestureIdle} }

// Gesture reports the kind and target of the active gesture.
type Gesture struct {
	Kind    GestureKind   `json:"kind"`
	BlockID string        `json:"blockId,omitempty"`
	Handle  canvas.Handle `json:"handle,omitempty"`
}

// Feedback is the advisory data shown while a gesture is active.
type Feedback struct {
	Collision  canvas.Collision `json:"collision"`
	Guides     canvas.GuideSet  `json:"guides"`
	DropTarget string           `json:"dropTarget,omitempty"`
}

func (s *Session) Gesture() Gesture {
	if !s.gesture.active() {
		return Gesture{Kind: GestureIdle}
	}
	return Gesture{Kind: s.gesture.kind, BlockID: s.gesture.id, Handle: s.gesture.handle}
}

// Feedback returns the advisory data of the last gesture frame. It is
// empty while idle.
func (s *Session) Feedback() Feedback { return s.feedback }

// BeginDrag starts dragging block id. It fails while another gesture is
// active and for unknown or locked blocks.
func (s *Session) BeginDrag(id string) bool {
	b, ok := s.begin(id)
	if !ok {
		return false
	}
	s.gesture = gesture{kind: GestureDrag, id: id, base: s.scene.Clone(), startPos: b.Position, startRect: b.Rect()}
	s.selectID(id)
	return true
}

// DragTo updates the live scene with the block moved by the cumulative
// pointer delta (dx, dy) since BeginDrag.
func (s *Session) DragTo(dx, dy float64) (Feedback, bool) {
	if s.gesture.kind != GestureDrag {
		return Feedback{}, false
	}
	next, _ := s.placement.Drag(s.gesture.base, s.gesture.id, s.gesture.startPos, dx, dy)
	s.scene = next
	s.frame(true)
	return s.feedback, true
}

// EndDrag finishes the drag. A top-level block that moved and was dropped
// over a container is moved into it when AutoContain is set. Exactly one
// "move" entry is recorded if the scene changed.
func (s *Session) EndDrag() bool {
	if s.gesture.kind != GestureDrag {
		return false
	}
	id := s.gesture.id
	moved := !s.scene.Equal(s.gesture.base)
	if s.opts.AutoContain && moved {
		if target, ok := s.placement.DropTarget(s.scene, id); ok {
			s.scene, _ = s.placement.Reparent(s.scene, id, target.ID)
		}
	}
	base := s.gesture.base
	s.gesture.reset()
	s.feedback = Feedback{}
	if s.scene.Equal(base) {
		return true
	}
	s.record("move")
	return true
}

// BeginResize starts resizing block id from handle h.
func (s *Session) BeginResize(id string, h canvas.Handle) bool {
	if _, valid := canvas.ParseHandle(string(h)); !valid {
		return false
	}
	b, ok := s.begin(id)
	if !ok {
		return false
	}
	s.gesture = gesture{kind: GestureResize, id: id, base: s.scene.Clone(), startPos: b.Position, startRect: b.Rect(), handle: h}
	s.selectID(id)
	return true
}

// ResizeTo updates the live scene with the handle dragged by the
// cumulative delta (dx, dy).
func (s *Session) ResizeTo(dx, dy float64) (Feedback, bool) {
	if s.gesture.kind != GestureResize {
		return Feedback{}, false
	}
	g := s.gesture
	next, _ := canvas.ResizeBlock(g.base, g.id, g.startRect, g.handle, dx, dy, s.opts.Constraints)
	s.scene = next
	s.frame(false)
	return s.feedback, true
}

// EndResize finishes the resize, recording one "resize" entry if the
// block changed.
func (s *Session) EndResize() bool {
	if s.gesture.kind != GestureResize {
		return false
	}
	base := s.gesture.base
	s.gesture.reset()
	s.feedback = Feedback{}
	if s.scene.Equal(base) {
		return true
	}
	s.record("resize")
	return true
}

func (s *Session) begin(id string) (domain.Block, bool) {
	if s.gesture.active() {
		return domain.Block{}, false
	}
	b, ok := s.scene.Get(id)
	if !ok || b.Locked {
		return domain.Block{}, false
	}
	return b, true
}

// frame recomputes feedback for the active block and notifies the host.
func (s *Session) frame(withDropTarget bool) {
	id := s.gesture.id
	s.feedback = Feedback{
		Collision: s.collisions.Detect(s.scene, id),
		Guides:    s.guides.Find(s.scene, id),
	}
	if withDropTarget && s.opts.AutoContain {
		if target, ok := s.placement.DropTarget(s.scene, id); ok {
			s.feedback.DropTarget = target.ID
		}
	}
	s.emit(EventGestureFrame, s.feedback)
}
