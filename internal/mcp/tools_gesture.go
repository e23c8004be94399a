package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"poster/internal/canvas"
	"poster/internal/editor"
)

// Gesture tools drive the pointer state machine step by step, so an agent
// can watch collision and guide feedback before committing a move.
func (s *Server) registerGestureTools() {
	s.mcp.AddTool(mcp.NewTool("begin_drag",
		mcp.WithDescription("Start dragging a block. Other edits are rejected until end_drag."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleBeginDrag)

	s.mcp.AddTool(mcp.NewTool("drag",
		mcp.WithDescription("Update the active drag with the cumulative offset from its start. Returns live feedback."),
		mcp.WithNumber("dx", mcp.Description("Total horizontal offset"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Total vertical offset"), mcp.Required()),
	), s.handleDrag)

	s.mcp.AddTool(mcp.NewTool("end_drag",
		mcp.WithDescription("Finish the active drag and record it as one history entry"),
	), s.handleEndDrag)

	s.mcp.AddTool(mcp.NewTool("begin_resize",
		mcp.WithDescription("Start resizing a block from one of its handles"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("handle", mcp.Description("Handle: n, s, e, w, ne, nw, se, sw"), mcp.Required()),
	), s.handleBeginResize)

	s.mcp.AddTool(mcp.NewTool("resize",
		mcp.WithDescription("Update the active resize with the cumulative offset from its start"),
		mcp.WithNumber("dx", mcp.Description("Total horizontal offset"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Total vertical offset"), mcp.Required()),
	), s.handleResize)

	s.mcp.AddTool(mcp.NewTool("end_resize",
		mcp.WithDescription("Finish the active resize and record it as one history entry"),
	), s.handleEndResize)
}

type frameResult struct {
	Block    blockSummary    `json:"block"`
	Feedback editor.Feedback `json:"feedback"`
}

type endResult struct {
	Committed bool         `json:"committed"`
	Block     blockSummary `json:"block"`
}

func (s *Server) handleBeginDrag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "blockId")
	if err != nil {
		return nil, err
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !sess.BeginDrag(id) {
			return nil, fmt.Errorf("cannot drag %s: unknown or locked", id)
		}
		return jsonResult(sess.Gesture())
	})
}

func (s *Server) handleBeginResize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	handleName, err := requireString(args, "handle")
	if err != nil {
		return nil, err
	}
	handle, ok := canvas.ParseHandle(handleName)
	if !ok {
		return nil, fmt.Errorf("invalid handle %q", handleName)
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !sess.BeginResize(id, handle) {
			return nil, fmt.Errorf("cannot resize %s: unknown or locked", id)
		}
		return jsonResult(sess.Gesture())
	})
}

func (s *Server) handleDrag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.frame(req, editor.GestureDrag, (*editor.Session).DragTo)
}

func (s *Server) handleResize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.frame(req, editor.GestureResize, (*editor.Session).ResizeTo)
}

func (s *Server) frame(req mcp.CallToolRequest, kind editor.GestureKind, step func(*editor.Session, float64, float64) (editor.Feedback, bool)) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	dx, err := requireFloat(args, "dx")
	if err != nil {
		return nil, err
	}
	dy, err := requireFloat(args, "dy")
	if err != nil {
		return nil, err
	}
	return s.do(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		g := sess.Gesture()
		if g.Kind != kind {
			return nil, fmt.Errorf("no %s in progress", kind)
		}
		fb, _ := step(sess, dx, dy)
		b, _ := sess.Block(g.BlockID)
		return jsonResult(frameResult{Block: summarizeBlock(b), Feedback: fb})
	})
}

func (s *Server) handleEndDrag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.end(editor.GestureDrag, (*editor.Session).EndDrag)
}

func (s *Server) handleEndResize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.end(editor.GestureResize, (*editor.Session).EndResize)
}

func (s *Server) end(kind editor.GestureKind, finish func(*editor.Session) bool) (*mcp.CallToolResult, error) {
	return s.do(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		g := sess.Gesture()
		if g.Kind != kind {
			return nil, fmt.Errorf("no %s in progress", kind)
		}
		before := sess.Version()
		finish(sess)
		b, _ := sess.Block(g.BlockID)
		return jsonResult(endResult{Committed: sess.Version() != before, Block: summarizeBlock(b)})
	})
}
