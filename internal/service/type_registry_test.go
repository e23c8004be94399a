package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"poster/internal/domain"
	"poster/internal/service"
)

func TestTypeRegistry_DefaultTypes(t *testing.T) {
	r := service.DefaultTypeRegistry()
	assert.Equal(t, []domain.BlockType{"badge", "container", "header", "image", "price", "subheader", "text"}, r.Types())

	size, ok := r.DefaultSize(domain.BlockTypePrice, "9.99")
	assert.True(t, ok)
	assert.Equal(t, domain.Size{Width: 160, Height: 80}, size, "price has no renderer")

	_, ok = r.DefaultSize("sticker", "")
	assert.False(t, ok)
}

func TestTypeRegistry_RendererHint(t *testing.T) {
	r := service.DefaultTypeRegistry()

	size, ok := r.DefaultSize(domain.BlockTypeText, "hello\nworld!")
	assert.True(t, ok)
	// 6 chars * 8 + 16, 2 lines * 20 + 16
	assert.Equal(t, domain.Size{Width: 64, Height: 56}, size)

	size, _ = r.DefaultSize(domain.BlockTypeText, "   ")
	assert.Equal(t, domain.Size{Width: 300, Height: 100}, size, "blank content falls back")
}

func TestTypeRegistry_Presets(t *testing.T) {
	r := service.DefaultTypeRegistry()
	tests := []struct {
		typ  domain.BlockType
		name string
		want domain.Size
		ok   bool
	}{
		{domain.BlockTypePrice, "1", domain.Size{Width: 120, Height: 60}, true},
		{domain.BlockTypeImage, "4", domain.Size{Width: 600, Height: 400}, true},
		{domain.BlockTypeBadge, "4", domain.Size{}, false},
		{"sticker", "1", domain.Size{}, false},
	}
	for _, tt := range tests {
		got, ok := r.Preset(tt.typ, tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Preset(%s, %s) = %v, %v; want %v, %v", tt.typ, tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTypeRegistry_DuplicatePanics(t *testing.T) {
	r := service.NewTypeRegistry()
	r.Register(service.TypeSpec{Type: "sticker"})
	assert.Panics(t, func() { r.Register(service.TypeSpec{Type: "sticker"}) })
}
