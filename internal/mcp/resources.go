package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	sceneURI    = "poster://scene"
	bindingsURI = "poster://shortcuts"
)

func (s *Server) registerResources() {
	// ── poster://scene ─────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		sceneURI,
		"Current Scene",
		mcp.WithResourceDescription("The scene being edited, with every block"),
		mcp.WithMIMEType("application/json"),
	), s.handleSceneResource)

	// ── poster://shortcuts ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		bindingsURI,
		"Keyboard Shortcuts",
		mcp.WithResourceDescription("Key chords accepted by press_key"),
		mcp.WithMIMEType("application/json"),
	), s.handleBindingsResource)
}

func (s *Server) handleSceneResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.ws.Document(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      sceneURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleBindingsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.ws.Bindings(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      bindingsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
