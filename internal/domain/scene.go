package domain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDuplicateID    = errors.New("duplicate block id")
	ErrSizeOutOfRange = errors.New("block size out of range")
	ErrZIndexConflict = errors.New("zIndex shared by two blocks")
	ErrOutsideParent  = errors.New("block outside its parent")
	ErrEmptyID        = errors.New("empty block id")
	ErrParentCycle    = errors.New("parent chain forms a cycle")
)

// Scene is the flat, insertion-ordered collection of blocks of one
// editing session. Blocks are addressed by ID only; every accessor
// returns copies.
type Scene struct {
	blocks []Block
	index  map[string]int
}

// NewScene builds a scene from blocks. A repeated ID overwrites the
// earlier block, as Upsert does.
func NewScene(blocks ...Block) *Scene {
	s := &Scene{index: make(map[string]int, len(blocks))}
	for _, b := range blocks {
		s.Upsert(b)
	}
	return s
}

// Upsert replaces the block with b.ID, or appends b.
func (s *Scene) Upsert(b Block) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[b.ID]; ok {
		s.blocks[i] = b
		return
	}
	s.index[b.ID] = len(s.blocks)
	s.blocks = append(s.blocks, b)
}

// Remove deletes the block with id. Missing ids are ignored.
func (s *Scene) Remove(id string) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.blocks); j++ {
		s.index[s.blocks[j].ID] = j
	}
}

func (s *Scene) Get(id string) (Block, bool) {
	i, ok := s.index[id]
	if !ok {
		return Block{}, false
	}
	return s.blocks[i], true
}

func (s *Scene) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Scene) Len() int { return len(s.blocks) }

// All returns the blocks in insertion order.
func (s *Scene) All() []Block {
	out := make([]Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// Ordered returns the blocks bottom to top: ascending ZIndex, ties
// broken by insertion order.
func (s *Scene) Ordered() []Block {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// MaxZIndex returns the highest ZIndex in the scene, or 0 when empty.
func (s *Scene) MaxZIndex() int {
	maxZ := 0
	for i, b := range s.blocks {
		if i == 0 || b.ZIndex > maxZ {
			maxZ = b.ZIndex
		}
	}
	return maxZ
}

// Children returns the blocks whose ParentID is parentID.
func (s *Scene) Children(parentID string) []Block {
	var out []Block
	for _, b := range s.blocks {
		if parentID != "" && b.ParentID == parentID {
			out = append(out, b)
		}
	}
	return out
}

// Parent resolves b's parent. A dangling ParentID resolves to nothing,
// so orphaned blocks behave as top-level.
func (s *Scene) Parent(b Block) (Block, bool) {
	if b.ParentID == "" || b.ParentID == b.ID {
		return Block{}, false
	}
	return s.Get(b.ParentID)
}

// IsDescendant reports whether id sits somewhere below ancestorID in the
// containment chain.
func (s *Scene) IsDescendant(id, ancestorID string) bool {
	seen := map[string]bool{}
	cur, ok := s.Get(id)
	for ok && !seen[cur.ID] {
		seen[cur.ID] = true
		if cur.ParentID == ancestorID {
			return true
		}
		cur, ok = s.Parent(cur)
	}
	return false
}

// Clone returns an independent copy.
func (s *Scene) Clone() *Scene {
	return NewScene(s.blocks...)
}

// Equal reports whether both scenes hold the same blocks in the same order.
func (s *Scene) Equal(o *Scene) bool {
	if s.Len() != o.Len() {
		return false
	}
	for i := range s.blocks {
		if s.blocks[i] != o.blocks[i] {
			return false
		}
	}
	return true
}

// Validate checks the hard scene invariants: unique ids, sizes inside
// the constraints and strictly ordered z-indexes.
func (s *Scene) Validate(c SizeConstraints) error {
	return ValidateBlocks(s.blocks, c)
}

// ValidateBlocks runs the scene invariants over a raw block list, which
// may come from a file or a store and so may contain duplicates.
func ValidateBlocks(blocks []Block, c SizeConstraints) error {
	var errs []error
	ids := make(map[string]bool, len(blocks))
	zs := make(map[int]string, len(blocks))
	for _, b := range blocks {
		if b.ID == "" {
			errs = append(errs, ErrEmptyID)
		} else if ids[b.ID] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateID, b.ID))
		}
		ids[b.ID] = true

		if b.Size.Width < c.MinWidth || b.Size.Height < c.MinHeight ||
			(c.MaxWidth > 0 && b.Size.Width > c.MaxWidth) ||
			(c.MaxHeight > 0 && b.Size.Height > c.MaxHeight) {
			errs = append(errs, fmt.Errorf("%w: %s is %.0f×%.0f", ErrSizeOutOfRange, b.ID, b.Size.Width, b.Size.Height))
		}

		if other, ok := zs[b.ZIndex]; ok {
			errs = append(errs, fmt.Errorf("%w: %s and %s at %d", ErrZIndexConflict, other, b.ID, b.ZIndex))
		} else {
			zs[b.ZIndex] = b.ID
		}
	}
	errs = append(errs, parentCycles(blocks)...)
	return errors.Join(errs...)
}

// parentCycles reports each ParentID cycle once, named by the first of
// its members in block order.
func parentCycles(blocks []Block) []error {
	parents := make(map[string]string, len(blocks))
	for _, b := range blocks {
		if b.ParentID != "" {
			parents[b.ID] = b.ParentID
		}
	}
	var errs []error
	reported := make(map[string]bool)
	for _, b := range blocks {
		if reported[b.ID] {
			continue
		}
		cur, steps := b.ID, 0
		for steps <= len(parents) {
			next, ok := parents[cur]
			if !ok {
				break
			}
			cur = next
			steps++
			if cur == b.ID {
				for m := parents[b.ID]; !reported[m]; m = parents[m] {
					reported[m] = true
				}
				reported[b.ID] = true
				errs = append(errs, fmt.Errorf("%w: %s", ErrParentCycle, b.ID))
				break
			}
		}
	}
	return errs
}

// ContainmentViolations lists children that sit outside their resolved
// parent. Containment is soft, so these are warnings rather than errors.
func (s *Scene) ContainmentViolations() []error {
	var out []error
	for _, b := range s.blocks {
		p, ok := s.Parent(b)
		if !ok {
			continue
		}
		if !p.Rect().Contains(b.Rect()) {
			out = append(out, fmt.Errorf("%w: %s in %s", ErrOutsideParent, b.ID, p.ID))
		}
	}
	return out
}
