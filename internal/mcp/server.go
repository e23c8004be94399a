// Package mcpserver exposes a poster editing workspace to agents over the
// Model Context Protocol. Every tool call is one discrete editing event.
package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"poster/internal/domain"
	"poster/internal/editor"
	"poster/internal/service"
)

const (
	serverName    = "poster-mcp"
	serverVersion = "1.0.0"
)

// Server is the MCP server for one poster workspace.
type Server struct {
	mcp      *server.MCPServer
	ws       *service.Workspace
	registry *service.TypeRegistry
	logger   *log.Logger
}

// Deps holds what the server needs from the host.
type Deps struct {
	Workspace *service.Workspace
	Registry  *service.TypeRegistry
	Logger    *log.Logger
}

// New creates the server and registers all tools, resources and prompts.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	registry := deps.Registry
	if registry == nil {
		registry = service.DefaultTypeRegistry()
	}
	s := &Server{
		ws:       deps.Workspace,
		registry: registry,
		logger:   logger.WithPrefix("mcp"),
	}

	s.mcp = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerBlockTools()
	s.registerGestureTools()
	s.registerHistoryTools()
	s.registerStorageTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// unchanged reports an operation the session ignored. Unknown and locked
// blocks are not errors.
func unchanged(what string) *mcp.CallToolResult {
	return textResult(fmt.Sprintf("No change: %s", what))
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func getString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func requireString(args map[string]any, key string) (string, error) {
	v := getString(args, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func requireFloat(args map[string]any, key string) (float64, error) {
	v, ok := args[key].(float64)
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// getPoint returns the point (xKey, yKey) when both are present.
func getPoint(args map[string]any, xKey, yKey string) *domain.Point {
	x, hasX := args[xKey].(float64)
	y, hasY := args[yKey].(float64)
	if !hasX || !hasY {
		return nil
	}
	return &domain.Point{X: x, Y: y}
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// blockSummary is the compact block form returned by listing tools.
type blockSummary struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	ZIndex   int     `json:"zIndex"`
	ParentID string  `json:"parentId,omitempty"`
	Locked   bool    `json:"locked,omitempty"`
	Hidden   bool    `json:"hidden,omitempty"`
	Preview  string  `json:"preview,omitempty"`
}

func summarizeBlock(b domain.Block) blockSummary {
	preview := b.Content
	if r := []rune(preview); len(r) > 60 {
		preview = string(r[:60]) + "…"
	}
	return blockSummary{
		ID:       b.ID,
		Type:     string(b.Type),
		X:        b.Position.X,
		Y:        b.Position.Y,
		Width:    b.Size.Width,
		Height:   b.Size.Height,
		ZIndex:   b.ZIndex,
		ParentID: b.ParentID,
		Locked:   b.Locked,
		Hidden:   !b.Visible,
		Preview:  preview,
	}
}

// do runs fn under the workspace lock.
func (s *Server) do(fn func(sess *editor.Session) (*mcp.CallToolResult, error)) (*mcp.CallToolResult, error) {
	var res *mcp.CallToolResult
	err := s.ws.Do(func(sess *editor.Session) error {
		var err error
		res, err = fn(sess)
		return err
	})
	return res, err
}

// edit is do for commands that are rejected while a gesture is active.
func (s *Server) edit(fn func(sess *editor.Session) (*mcp.CallToolResult, error)) (*mcp.CallToolResult, error) {
	return s.do(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if g := sess.Gesture(); g.Kind != editor.GestureIdle {
			return nil, fmt.Errorf("%w: %s of %s", service.ErrBusy, g.Kind, g.BlockID)
		}
		return fn(sess)
	})
}
