package editor

import (
	"poster/internal/canvas"
	"poster/internal/domain"
)

// NewBlock describes a block to create. Nil Position places the block
// with the auto layout; nil Size asks the type catalog.
type NewBlock struct {
	Type     domain.BlockType
	Content  string
	Position *domain.Point
	Size     *domain.Size
	ParentID string
}

// Add creates a block on top of the stack, selects it and records "add".
func (s *Session) Add(nb NewBlock) (domain.Block, bool) {
	if s.gesture.active() {
		return domain.Block{}, false
	}
	size := s.opts.FallbackSize
	if nb.Size != nil {
		size = *nb.Size
	} else if hint, ok := s.catalog.DefaultSize(nb.Type, nb.Content); ok {
		size = hint
	}
	size = s.opts.Constraints.Clamp(size)

	b := domain.Block{
		ID:      s.newID(),
		Type:    nb.Type,
		Size:    size,
		ZIndex:  s.scene.MaxZIndex() + 1,
		Content: nb.Content,
		Visible: true,
	}
	if nb.Position != nil {
		b.Position = *nb.Position
	} else {
		b.Position = s.layout.NextPosition(s.scene.All(), size)
	}
	b.Position = s.placement.Confine(s.scene, b)

	next := s.scene.Clone()
	next.Upsert(b)
	if nb.ParentID != "" {
		next, _ = s.placement.Reparent(next, b.ID, nb.ParentID)
	}
	s.scene = next
	s.record("add")
	s.selectID(b.ID)
	b, _ = s.scene.Get(b.ID)
	return b, true
}

// Delete removes block id. Children are not removed; they become
// top-level until reparented.
func (s *Session) Delete(id string) bool {
	if s.gesture.active() || !s.scene.Has(id) {
		return false
	}
	next := s.scene.Clone()
	next.Remove(id)
	if s.selected == id {
		s.selected = ""
	}
	s.commit(next, "delete")
	return true
}

// Duplicate copies block id with a fresh id, offset by DuplicateOffset on
// both axes and placed on top.
func (s *Session) Duplicate(id string) (domain.Block, bool) {
	if s.gesture.active() {
		return domain.Block{}, false
	}
	src, ok := s.scene.Get(id)
	if !ok {
		return domain.Block{}, false
	}
	dup := src
	dup.ID = s.newID()
	dup.Position = src.Position.Add(s.opts.DuplicateOffset, s.opts.DuplicateOffset)
	dup.Position = s.placement.Confine(s.scene, dup)
	dup.ZIndex = s.scene.MaxZIndex() + 1

	next := s.scene.Clone()
	next.Upsert(dup)
	s.scene = next
	s.record("duplicate")
	s.selectID(dup.ID)
	return dup, true
}

// Nudge moves block id by (dx, dy) without snapping.
func (s *Session) Nudge(id string, dx, dy float64) bool {
	if s.gesture.active() {
		return false
	}
	next, ok := s.placement.Offset(s.scene, id, dx, dy)
	if !ok {
		return false
	}
	s.commit(next, "nudge")
	return true
}

// Move drags block id to pos as a single complete gesture.
func (s *Session) Move(id string, pos domain.Point) bool {
	if !s.BeginDrag(id) {
		return false
	}
	s.DragTo(pos.X-s.gesture.startPos.X, pos.Y-s.gesture.startPos.Y)
	return s.EndDrag()
}

// Resize drags handle h of block id by (dx, dy) as a single gesture.
func (s *Session) Resize(id string, h canvas.Handle, dx, dy float64) bool {
	if !s.BeginResize(id, h) {
		return false
	}
	s.ResizeTo(dx, dy)
	return s.EndResize()
}

// SetSize resizes block id from its top-left corner.
func (s *Session) SetSize(id string, size domain.Size) bool {
	if s.gesture.active() {
		return false
	}
	next, ok := canvas.SetSize(s.scene, id, size, s.opts.Constraints)
	if !ok {
		return false
	}
	s.commit(next, "resize")
	return true
}

// ApplyPreset resizes block id to the named preset of its type, or to
// FallbackSize when the catalog has none.
func (s *Session) ApplyPreset(id, name string) bool {
	if s.gesture.active() {
		return false
	}
	b, ok := s.scene.Get(id)
	if !ok {
		return false
	}
	size, ok := s.catalog.Preset(b.Type, name)
	if !ok {
		size = s.opts.FallbackSize
	}
	next, ok := canvas.SetSize(s.scene, id, size, s.opts.Constraints)
	if !ok {
		return false
	}
	s.commit(next, "preset "+name)
	return true
}

// Reparent moves block id into parentID, or detaches it for "".
func (s *Session) Reparent(id, parentID string) bool {
	if s.gesture.active() {
		return false
	}
	next, ok := s.placement.Reparent(s.scene, id, parentID)
	if !ok {
		return false
	}
	s.commit(next, "reparent")
	return true
}

func (s *Session) SetVisible(id string, visible bool) bool {
	return s.setFlag(id, "visibility", func(b *domain.Block) { b.Visible = visible })
}

func (s *Session) SetLocked(id string, locked bool) bool {
	return s.setFlag(id, "lock", func(b *domain.Block) { b.Locked = locked })
}

// SetContent replaces the opaque payload of block id.
func (s *Session) SetContent(id, content string) bool {
	return s.setFlag(id, "content", func(b *domain.Block) { b.Content = content })
}

// BlockUpdate lists the attributes Update changes; nil fields are left
// alone.
type BlockUpdate struct {
	Content *string
	Visible *bool
	Locked  *bool
}

// Update applies every set field of u to block id as one "update" entry.
func (s *Session) Update(id string, u BlockUpdate) bool {
	return s.setFlag(id, "update", func(b *domain.Block) {
		if u.Content != nil {
			b.Content = *u.Content
		}
		if u.Visible != nil {
			b.Visible = *u.Visible
		}
		if u.Locked != nil {
			b.Locked = *u.Locked
		}
	})
}

func (s *Session) setFlag(id, description string, apply func(*domain.Block)) bool {
	if s.gesture.active() {
		return false
	}
	b, ok := s.scene.Get(id)
	if !ok {
		return false
	}
	apply(&b)
	next := s.scene.Clone()
	next.Upsert(b)
	s.commit(next, description)
	return true
}

// Reorder applies a top-to-bottom id list to the z-order.
func (s *Session) Reorder(ids []string) bool {
	if s.gesture.active() {
		return false
	}
	s.commit(canvas.Reorder(s.scene, ids), "reorder")
	return true
}

// LayerOp is a single-step z-order command.
type LayerOp string

const (
	LayerFront    LayerOp = "front"
	LayerBack     LayerOp = "back"
	LayerForward  LayerOp = "forward"
	LayerBackward LayerOp = "backward"
)

func (s *Session) Layer(id string, op LayerOp) bool {
	if s.gesture.active() {
		return false
	}
	var fn func(*domain.Scene, string) (*domain.Scene, bool)
	switch op {
	case LayerFront:
		fn = canvas.BringToFront
	case LayerBack:
		fn = canvas.SendToBack
	case LayerForward:
		fn = canvas.BringForward
	case LayerBackward:
		fn = canvas.SendBackward
	default:
		return false
	}
	next, ok := fn(s.scene, id)
	if !ok {
		return false
	}
	s.commit(next, "reorder")
	return true
}

// Arrange lays the given top-level blocks out in rows from start, or
// from the top-left of the group when start is nil. Empty ids arranges
// every unlocked top-level block. Children follow their containers.
// It returns how many blocks were laid out; zero means nothing qualified.
func (s *Session) Arrange(ids []string, start *domain.Point) int {
	if s.gesture.active() {
		return 0
	}
	var group []domain.Block
	if len(ids) == 0 {
		for _, b := range s.topLevel() {
			if !b.Locked {
				group = append(group, b)
			}
		}
	} else {
		for _, id := range ids {
			b, ok := s.scene.Get(id)
			if !ok || b.Locked {
				continue
			}
			if _, nested := s.scene.Parent(b); nested {
				continue
			}
			group = append(group, b)
		}
	}
	if len(group) == 0 {
		return 0
	}

	origin := group[0].Position
	if start != nil {
		origin = *start
	} else {
		for _, b := range group[1:] {
			origin.X = min(origin.X, b.Position.X)
			origin.Y = min(origin.Y, b.Position.Y)
		}
	}

	next := s.scene
	for _, b := range s.layout.ArrangeGroup(group, origin) {
		next, _ = s.placement.MoveTo(next, b.ID, b.Position)
	}
	s.commit(next, "arrange")
	return len(group)
}

// Load replaces the whole scene, recording one entry with description.
// Used for files reloaded from disk and scenes loaded from storage.
func (s *Session) Load(blocks []domain.Block, description string) bool {
	if s.gesture.active() {
		return false
	}
	next := domain.NewScene(blocks...)
	if s.selected != "" && !next.Has(s.selected) {
		s.selected = ""
	}
	s.commit(next, description)
	return true
}

// topLevel returns the blocks without a resolvable parent.
func (s *Session) topLevel() []domain.Block {
	var out []domain.Block
	for _, b := range s.scene.All() {
		if _, nested := s.scene.Parent(b); !nested {
			out = append(out, b)
		}
	}
	return out
}
