package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"poster/internal/canvas"
	"poster/internal/domain"
	"poster/internal/editor"
)

func (s *Server) registerBlockTools() {
	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List all blocks top to bottom, optionally filtered by type"),
		mcp.WithString("type", mcp.Description("Filter by block type (optional)")),
	), s.handleListBlocks)

	// ── get_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_block",
		mcp.WithDescription("Get one block with its full content"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleGetBlock)

	// ── add_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Add a block on top of the stack. Position is auto-calculated if not provided, size comes from the block type."),
		mcp.WithString("type",
			mcp.Description("Block type: header, subheader, price, image, text, container, badge"),
			mcp.Required(),
		),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Width (optional, uses type default)")),
		mcp.WithNumber("height", mcp.Description("Height (optional, uses type default)")),
		mcp.WithString("content", mcp.Description("Initial content (optional)")),
		mcp.WithString("parentId", mcp.Description("Container to place the block in (optional)")),
	), s.handleAddBlock)

	// ── delete_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("Delete a block. Its children stay and become top-level."),
		mcp.WithString("blockId", mcp.Description("Block ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)

	// ── duplicate_block ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Copy a block with a small offset, on top of the stack"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleDuplicateBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block. The position snaps to the grid and stays inside the parent container."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveBlock)

	// ── nudge_block ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("nudge_block",
		mcp.WithDescription("Move a block by an exact offset without grid snapping"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal offset")),
		mcp.WithNumber("dy", mcp.Description("Vertical offset")),
	), s.handleNudgeBlock)

	// ── resize_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_block",
		mcp.WithDescription("Resize a block, either to width/height from the top-left corner or by dragging a handle by dx/dy"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width")),
		mcp.WithNumber("height", mcp.Description("New height")),
		mcp.WithString("handle", mcp.Description("Handle: n, s, e, w, ne, nw, se, sw")),
		mcp.WithNumber("dx", mcp.Description("Handle horizontal offset")),
		mcp.WithNumber("dy", mcp.Description("Handle vertical offset")),
	), s.handleResizeBlock)

	// ── apply_preset ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("apply_preset",
		mcp.WithDescription("Apply a named size preset (\"1\" to \"9\") of the block's type"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("preset", mcp.Description("Preset name"), mcp.Required()),
	), s.handleApplyPreset)

	// ── reparent_block ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reparent_block",
		mcp.WithDescription("Put a block into a container, or make it top-level with an empty parentId"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("parentId", mcp.Description("Container ID (empty for top-level)")),
	), s.handleReparentBlock)

	// ── set_block_flags ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_block_flags",
		mcp.WithDescription("Change visibility, lock state or content of a block"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithBoolean("visible", mcp.Description("Show or hide the block")),
		mcp.WithBoolean("locked", mcp.Description("Lock or unlock the block")),
		mcp.WithString("content", mcp.Description("Replace the content")),
	), s.handleSetBlockFlags)

	// ── reorder_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_blocks",
		mcp.WithDescription("Set the stacking order from a top-to-bottom list. Unlisted blocks go underneath."),
		mcp.WithString("blockIds", mcp.Description("Comma-separated block IDs, topmost first"), mcp.Required()),
	), s.handleReorderBlocks)

	// ── layer_block ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("layer_block",
		mcp.WithDescription("Move a block in the stacking order"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("op",
			mcp.Description("front, back, forward or backward"),
			mcp.Required(),
			mcp.Enum(string(editor.LayerFront), string(editor.LayerBack), string(editor.LayerForward), string(editor.LayerBackward)),
		),
	), s.handleLayerBlock)

	// ── arrange_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_blocks",
		mcp.WithDescription("Lay top-level blocks out in rows on the grid"),
		mcp.WithString("blockIds", mcp.Description("Comma-separated block IDs (optional, defaults to every unlocked top-level block)")),
		mcp.WithNumber("startX", mcp.Description("Starting X position (optional)")),
		mcp.WithNumber("startY", mcp.Description("Starting Y position (optional)")),
	), s.handleArrangeBlocks)

	// ── inspect_block ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("inspect_block",
		mcp.WithDescription("Report collisions, repulsion, alignment guides and drop target for a block"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleInspectBlock)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filterType := getString(req.GetArguments(), "type")
	return s.do(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		summaries := []blockSummary{}
		for _, id := range sess.TopToBottom() {
			b, _ := sess.Block(id)
			if filterType != "" && string(b.Type) != filterType {
				continue
			}
			summaries = append(summaries, summarizeBlock(b))
		}
		return jsonResult(summaries)
	})
}

func (s *Server) handleGetBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "blockId")
	if err != nil {
		return nil, err
	}
	return s.do(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		b, ok := sess.Block(id)
		if !ok {
			return nil, fmt.Errorf("block %s not found", id)
		}
		return jsonResult(b)
	})
}

func (s *Server) handleAddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockType, err := requireString(args, "type")
	if err != nil {
		return nil, err
	}
	if _, ok := s.registry.Lookup(domain.BlockType(blockType)); !ok {
		return nil, fmt.Errorf("unknown block type %q (known: %v)", blockType, s.registry.Types())
	}
	nb := editor.NewBlock{
		Type:     domain.BlockType(blockType),
		Content:  getString(args, "content"),
		Position: getPoint(args, "x", "y"),
		ParentID: getString(args, "parentId"),
	}
	if w, h := getFloat(args, "width", 0), getFloat(args, "height", 0); w > 0 && h > 0 {
		nb.Size = &domain.Size{Width: w, Height: h}
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		b, _ := sess.Add(nb)
		return jsonResult(b)
	})
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "blockId")
	if err != nil {
		return nil, err
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !sess.Delete(id) {
			return unchanged(fmt.Sprintf("block %s not found", id)), nil
		}
		return textResult(fmt.Sprintf("Block %s deleted", id)), nil
	})
}

func (s *Server) handleDuplicateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "blockId")
	if err != nil {
		return nil, err
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		b, ok := sess.Duplicate(id)
		if !ok {
			return unchanged(fmt.Sprintf("block %s not found", id)), nil
		}
		return jsonResult(b)
	})
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	pos := getPoint(args, "x", "y")
	if pos == nil {
		return nil, fmt.Errorf("x and y are required")
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !sess.Move(id, *pos) {
			return unchanged(fmt.Sprintf("block %s is unknown, locked or already there", id)), nil
		}
		return s.blockResult(sess, id)
	})
}

func (s *Server) handleNudgeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	dx, dy := getFloat(args, "dx", 0), getFloat(args, "dy", 0)
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !sess.Nudge(id, dx, dy) {
			return unchanged(fmt.Sprintf("block %s is unknown or locked", id)), nil
		}
		return s.blockResult(sess, id)
	})
}

func (s *Server) handleResizeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	w, h := getFloat(args, "width", 0), getFloat(args, "height", 0)
	handleName := getString(args, "handle")

	var apply func(sess *editor.Session) bool
	switch {
	case handleName != "":
		handle, ok := canvas.ParseHandle(handleName)
		if !ok {
			return nil, fmt.Errorf("invalid handle %q", handleName)
		}
		dx, dy := getFloat(args, "dx", 0), getFloat(args, "dy", 0)
		apply = func(sess *editor.Session) bool { return sess.Resize(id, handle, dx, dy) }
	case w > 0 && h > 0:
		apply = func(sess *editor.Session) bool { return sess.SetSize(id, domain.Size{Width: w, Height: h}) }
	default:
		return nil, fmt.Errorf("either width and height or handle is required")
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !apply(sess) {
			return unchanged(fmt.Sprintf("block %s is unknown, locked or already that size", id)), nil
		}
		return s.blockResult(sess, id)
	})
}

func (s *Server) handleApplyPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	preset, err := requireString(args, "preset")
	if err != nil {
		return nil, err
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !sess.ApplyPreset(id, preset) {
			return unchanged(fmt.Sprintf("preset %s not applied to %s", preset, id)), nil
		}
		return s.blockResult(sess, id)
	})
}

func (s *Server) handleReparentBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	parentID := getString(args, "parentId")
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !sess.Reparent(id, parentID) {
			return unchanged(fmt.Sprintf("cannot put %s into %q", id, parentID)), nil
		}
		return s.blockResult(sess, id)
	})
}

func (s *Server) handleSetBlockFlags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	var u editor.BlockUpdate
	if v, ok := args["visible"].(bool); ok {
		u.Visible = &v
	}
	if v, ok := args["locked"].(bool); ok {
		u.Locked = &v
	}
	if v, ok := args["content"].(string); ok {
		u.Content = &v
	}
	if u == (editor.BlockUpdate{}) {
		return nil, fmt.Errorf("one of visible, locked or content is required")
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if _, ok := sess.Block(id); !ok {
			return nil, fmt.Errorf("block %s not found", id)
		}
		sess.Update(id, u)
		return s.blockResult(sess, id)
	})
}

func (s *Server) handleReorderBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := splitIDs(getString(req.GetArguments(), "blockIds"))
	if len(ids) == 0 {
		return nil, fmt.Errorf("blockIds is required")
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		sess.Reorder(ids)
		return jsonResult(sess.TopToBottom())
	})
}

func (s *Server) handleLayerBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	op := editor.LayerOp(getString(args, "op"))
	switch op {
	case editor.LayerFront, editor.LayerBack, editor.LayerForward, editor.LayerBackward:
	default:
		return nil, fmt.Errorf("invalid op %q", op)
	}
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		if !sess.Layer(id, op) {
			return unchanged(fmt.Sprintf("block %s not found", id)), nil
		}
		return jsonResult(sess.TopToBottom())
	})
}

func (s *Server) handleArrangeBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ids := splitIDs(getString(args, "blockIds"))
	start := getPoint(args, "startX", "startY")
	return s.edit(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		before := sess.Version()
		n := sess.Arrange(ids, start)
		if n == 0 {
			return unchanged("no unlocked top-level blocks to arrange"), nil
		}
		if sess.Version() == before {
			return unchanged("blocks already arranged"), nil
		}
		return textResult(fmt.Sprintf("Arranged %d block(s)", n)), nil
	})
}

func (s *Server) handleInspectBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "blockId")
	if err != nil {
		return nil, err
	}
	return s.do(func(sess *editor.Session) (*mcp.CallToolResult, error) {
		fb, ok := sess.Inspect(id)
		if !ok {
			return nil, fmt.Errorf("block %s not found", id)
		}
		return jsonResult(fb)
	})
}

func (s *Server) blockResult(sess *editor.Session, id string) (*mcp.CallToolResult, error) {
	b, _ := sess.Block(id)
	return jsonResult(summarizeBlock(b))
}
