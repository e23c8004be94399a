package canvas

import "poster/internal/domain"

// TopToBottom returns block ids in visual order, topmost first.
func TopToBottom(s *domain.Scene) []string {
	ordered := s.Ordered()
	ids := make([]string, len(ordered))
	for i, b := range ordered {
		ids[len(ordered)-1-i] = b.ID
	}
	return ids
}

// Reorder assigns z-indexes from a top-to-bottom id list: the block at
// position i gets count-i. Unknown and repeated ids are skipped; blocks
// missing from the list keep their relative order underneath the listed
// ones. Visibility and lock flags are left alone.
func Reorder(s *domain.Scene, ids []string) *domain.Scene {
	seen := make(map[string]bool, s.Len())
	order := make([]string, 0, s.Len())
	for _, id := range ids {
		if s.Has(id) && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, id := range TopToBottom(s) {
		if !seen[id] {
			order = append(order, id)
		}
	}

	out := s.Clone()
	count := len(order)
	for i, id := range order {
		b, _ := out.Get(id)
		b.ZIndex = count - i
		out.Upsert(b)
	}
	return out
}

// BringToFront moves id above every other block.
func BringToFront(s *domain.Scene, id string) (*domain.Scene, bool) {
	if !s.Has(id) {
		return s, false
	}
	return Reorder(s, []string{id}), true
}

// SendToBack moves id below every other block.
func SendToBack(s *domain.Scene, id string) (*domain.Scene, bool) {
	if !s.Has(id) {
		return s, false
	}
	var order []string
	for _, other := range TopToBottom(s) {
		if other != id {
			order = append(order, other)
		}
	}
	return Reorder(s, append(order, id)), true
}

// BringForward swaps id with the block directly above it.
func BringForward(s *domain.Scene, id string) (*domain.Scene, bool) {
	return step(s, id, -1)
}

// SendBackward swaps id with the block directly below it.
func SendBackward(s *domain.Scene, id string) (*domain.Scene, bool) {
	return step(s, id, 1)
}

func step(s *domain.Scene, id string, dir int) (*domain.Scene, bool) {
	order := TopToBottom(s)
	for i, other := range order {
		if other != id {
			continue
		}
		j := i + dir
		if j < 0 || j >= len(order) {
			return Reorder(s, order), true
		}
		order[i], order[j] = order[j], order[i]
		return Reorder(s, order), true
	}
	return s, false
}
