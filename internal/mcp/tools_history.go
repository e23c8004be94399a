package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"poster/internal/editor"
)

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last committed change"),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the next change after an undo"),
	), s.handleRedo)

	s.mcp.AddTool(mcp.NewTool("history",
		mcp.WithDescription("List history entries, oldest first, and the current position"),
	), s.handleHistory)

	s.mcp.AddTool(mcp.NewTool("press_key",
		mcp.WithDescription("Send a keyboard shortcut, e.g. \"Delete\", \"Ctrl+D\", \"Shift+ArrowLeft\", \"3\", \"Ctrl+Z\". Applies to the selected block."),
		mcp.WithString("key", mcp.Description("Key chord"), mcp.Required()),
		mcp.WithString("select", mcp.Description("Select this block first (optional)")),
	), s.handlePressKey)
}

type historyEntry struct {
	Index       int       `json:"index"`
	Description string    `json:"description"`
	Blocks      int       `json:"blocks"`
	Timestamp   time.Time `json:"timestamp"`
	Current     bool      `json:"current,omitempty"`
}

type historyResult struct {
	Cursor  int            `json:"cursor"`
	CanUndo bool           `json:"canUndo"`
	CanRedo bool           `json:"canRedo"`
	Entries []historyEntry `json:"entries"`
}

func historyOf(sess *editor.Session) historyResult {
	entries := sess.History()
	cursor := sess.HistoryCursor()
	out := historyResult{Cursor: cursor, CanUndo: sess.CanUndo(), CanRedo: sess.CanRedo()}
	for i, e := range entries {
		out.Entries = append(out.Entries, historyEntry{
			Index:       i,
			Description: e.Description,
			Blocks:      len(e.Blocks),
			Timestamp:   e.Timestamp,
			Current:     i == cursor,
		})
	}
	return out
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.do(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !sess.Undo() {
			return unchanged("nothing to undo"), nil
		}
		return s.cursorResult(sess)
	})
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.do(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !sess.Redo() {
			return unchanged("nothing to redo"), nil
		}
		return s.cursorResult(sess)
	})
}

func (s *Server) cursorResult(sess *editor.Session) (*mcp.CallToolResult, error) {
	h := sess.History()
	cur := sess.HistoryCursor()
	return textResult(fmt.Sprintf("At %d/%d: %s", cur, len(h)-1, h[cur].Description)), nil
}

func (s *Server) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.do(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		return jsonResult(historyOf(sess))
	})
}

func (s *Server) handlePressKey(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	key, err := requireString(args, "key")
	if err != nil {
		return nil, err
	}
	if id := getString(args, "select"); id != "" {
		var found bool
		_ = s.ws.Do(func(sess *editor.Session) error {
			found = sess.Select(id)
			return nil
		})
		if !found {
			return nil, fmt.Errorf("block %s not found", id)
		}
	}
	handled, err := s.ws.Press(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("press %s: %w", key, err)
	}
	if !handled {
		return unchanged(fmt.Sprintf("%s did nothing", key)), nil
	}
	return textResult(fmt.Sprintf("%s handled", key)), nil
}
