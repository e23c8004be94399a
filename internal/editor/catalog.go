package editor

import (
	"context"

	"poster/internal/domain"
)

// TypeCatalog supplies per-type sizing. The session never looks at block
// types beyond this interface and the container flag.
type TypeCatalog interface {
	// DefaultSize returns the size of a new block of type t holding
	// content. ok is false when the type is unknown.
	DefaultSize(t domain.BlockType, content string) (domain.Size, bool)
	// Preset looks up a named size preset for type t.
	Preset(t domain.BlockType, name string) (domain.Size, bool)
}

// Emitter receives session events for re-rendering. It matches
// service.EventEmitter.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

const (
	EventCommitted    = "scene:committed"
	EventHistoryMoved = "history:moved"
	EventGestureFrame = "gesture:frame"
	EventSelection    = "selection:changed"
)

// Change is the payload of EventCommitted and EventHistoryMoved.
type Change struct {
	Description string `json:"description"`
	Cursor      int    `json:"cursor"`
	Blocks      int    `json:"blocks"`
}

type nopCatalog struct{}

func (nopCatalog) DefaultSize(domain.BlockType, string) (domain.Size, bool) {
	return domain.Size{}, false
}

func (nopCatalog) Preset(domain.BlockType, string) (domain.Size, bool) {
	return domain.Size{}, false
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, string, any) {}
