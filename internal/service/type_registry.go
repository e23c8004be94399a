package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"poster/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Type registry: per block type sizing
// ─────────────────────────────────────────────────────────────

// ContentRenderer estimates how much room a block's content needs. It is
// consulted only when a block is created.
type ContentRenderer interface {
	SizeHint(content string) (domain.Size, bool)
}

// TypeSpec describes one block type.
type TypeSpec struct {
	Type        domain.BlockType
	DefaultSize domain.Size
	// Presets are named sizes, "1" to "9" reachable from the keyboard.
	Presets  map[string]domain.Size
	Renderer ContentRenderer
}

// TypeRegistry maps block types to their specs. It implements
// editor.TypeCatalog.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[domain.BlockType]TypeSpec
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[domain.BlockType]TypeSpec)}
}

// Register adds a type. Panics on duplicate registration.
func (r *TypeRegistry) Register(spec TypeSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[spec.Type]; exists {
		panic(fmt.Sprintf("type registry: duplicate registration for block type %q", spec.Type))
	}
	r.types[spec.Type] = spec
}

func (r *TypeRegistry) Lookup(t domain.BlockType) (TypeSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.types[t]
	return spec, ok
}

// Types lists registered type names, sorted.
func (r *TypeRegistry) Types() []domain.BlockType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.BlockType, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultSize prefers the renderer's hint for non-empty content and falls
// back to the type's default size.
func (r *TypeRegistry) DefaultSize(t domain.BlockType, content string) (domain.Size, bool) {
	spec, ok := r.Lookup(t)
	if !ok {
		return domain.Size{}, false
	}
	if spec.Renderer != nil && content != "" {
		if hint, ok := spec.Renderer.SizeHint(content); ok {
			return hint, true
		}
	}
	return spec.DefaultSize, true
}

func (r *TypeRegistry) Preset(t domain.BlockType, name string) (domain.Size, bool) {
	spec, ok := r.Lookup(t)
	if !ok {
		return domain.Size{}, false
	}
	size, ok := spec.Presets[name]
	return size, ok
}

// TextRenderer sizes plain text from its line count and longest line.
type TextRenderer struct {
	CharWidth  float64
	LineHeight float64
	Padding    float64
}

func (tr TextRenderer) SizeHint(content string) (domain.Size, bool) {
	if strings.TrimSpace(content) == "" || tr.CharWidth <= 0 || tr.LineHeight <= 0 {
		return domain.Size{}, false
	}
	lines := strings.Split(content, "\n")
	longest := 0
	for _, l := range lines {
		longest = max(longest, len([]rune(l)))
	}
	return domain.Size{
		Width:  math.Ceil(float64(longest)*tr.CharWidth + 2*tr.Padding),
		Height: math.Ceil(float64(len(lines))*tr.LineHeight + 2*tr.Padding),
	}, true
}

func presets(sizes ...domain.Size) map[string]domain.Size {
	out := make(map[string]domain.Size, len(sizes))
	for i, s := range sizes {
		out[fmt.Sprint(i+1)] = s
	}
	return out
}

// DefaultTypeRegistry registers the built-in poster block types.
func DefaultTypeRegistry() *TypeRegistry {
	r := NewTypeRegistry()
	r.Register(TypeSpec{
		Type:        domain.BlockTypeHeader,
		DefaultSize: domain.Size{Width: 600, Height: 80},
		Presets:     presets(domain.Size{Width: 400, Height: 60}, domain.Size{Width: 600, Height: 80}, domain.Size{Width: 900, Height: 120}),
		Renderer:    TextRenderer{CharWidth: 24, LineHeight: 56, Padding: 12},
	})
	r.Register(TypeSpec{
		Type:        domain.BlockTypeSubheader,
		DefaultSize: domain.Size{Width: 400, Height: 50},
		Presets:     presets(domain.Size{Width: 300, Height: 40}, domain.Size{Width: 400, Height: 50}, domain.Size{Width: 600, Height: 70}),
		Renderer:    TextRenderer{CharWidth: 14, LineHeight: 32, Padding: 8},
	})
	r.Register(TypeSpec{
		Type:        domain.BlockTypePrice,
		DefaultSize: domain.Size{Width: 160, Height: 80},
		Presets:     presets(domain.Size{Width: 120, Height: 60}, domain.Size{Width: 160, Height: 80}, domain.Size{Width: 240, Height: 120}),
	})
	r.Register(TypeSpec{
		Type:        domain.BlockTypeImage,
		DefaultSize: domain.Size{Width: 300, Height: 200},
		Presets: presets(
			domain.Size{Width: 200, Height: 200},
			domain.Size{Width: 300, Height: 200},
			domain.Size{Width: 400, Height: 300},
			domain.Size{Width: 600, Height: 400},
		),
	})
	r.Register(TypeSpec{
		Type:        domain.BlockTypeText,
		DefaultSize: domain.Size{Width: 300, Height: 100},
		Presets:     presets(domain.Size{Width: 200, Height: 60}, domain.Size{Width: 300, Height: 100}, domain.Size{Width: 500, Height: 200}),
		Renderer:    TextRenderer{CharWidth: 8, LineHeight: 20, Padding: 8},
	})
	r.Register(TypeSpec{
		Type:        domain.BlockTypeContainer,
		DefaultSize: domain.Size{Width: 600, Height: 400},
		Presets:     presets(domain.Size{Width: 400, Height: 300}, domain.Size{Width: 600, Height: 400}, domain.Size{Width: 1000, Height: 600}),
	})
	r.Register(TypeSpec{
		Type:        domain.BlockTypeBadge,
		DefaultSize: domain.Size{Width: 100, Height: 100},
		Presets:     presets(domain.Size{Width: 60, Height: 60}, domain.Size{Width: 100, Height: 100}, domain.Size{Width: 160, Height: 160}),
	})
	return r
}
