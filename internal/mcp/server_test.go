package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poster/internal/domain"
	"poster/internal/editor"
	"poster/internal/service"
)

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T) (*Server, *service.Workspace) {
	t.Helper()
	logger := log.New(io.Discard)
	ws := service.NewWorkspace(service.WorkspaceConfig{
		Options:  editor.DefaultOptions(),
		Catalog:  service.DefaultTypeRegistry(),
		FilePath: filepath.Join(t.TempDir(), "poster.yaml"),
		Logger:   logger,
	})
	return New(Deps{Workspace: ws, Logger: logger}), ws
}

func call(t *testing.T, h handler, args map[string]any) (string, error) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		return "", err
	}
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, nil
}

func mustCall(t *testing.T, h handler, args map[string]any) string {
	t.Helper()
	out, err := call(t, h, args)
	require.NoError(t, err)
	return out
}

func addTestBlock(t *testing.T, s *Server, args map[string]any) domain.Block {
	t.Helper()
	var b domain.Block
	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleAddBlock, args)), &b))
	return b
}

func TestTools_AddAndList(t *testing.T) {
	s, _ := newTestServer(t)

	header := addTestBlock(t, s, map[string]any{"type": "header", "content": "SALE"})
	price := addTestBlock(t, s, map[string]any{"type": "price", "x": 40.0, "y": 200.0})
	assert.Equal(t, domain.Point{X: 40, Y: 200}, price.Position)
	assert.Equal(t, domain.Size{Width: 160, Height: 80}, price.Size)
	assert.Greater(t, price.ZIndex, header.ZIndex)

	var all []blockSummary
	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleListBlocks, nil)), &all))
	require.Len(t, all, 2)
	assert.Equal(t, price.ID, all[0].ID, "topmost first")

	var prices []blockSummary
	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleListBlocks, map[string]any{"type": "price"})), &prices))
	assert.Len(t, prices, 1)

	_, err := call(t, s.handleAddBlock, map[string]any{"type": "sticker"})
	assert.ErrorContains(t, err, "unknown block type")
	_, err = call(t, s.handleAddBlock, nil)
	assert.ErrorContains(t, err, "type is required")
}

func TestTools_MoveSnapsToGrid(t *testing.T) {
	s, _ := newTestServer(t)
	b := addTestBlock(t, s, map[string]any{"type": "text"})

	var got blockSummary
	out := mustCall(t, s.handleMoveBlock, map[string]any{"blockId": b.ID, "x": 33.0, "y": 47.0})
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 40.0, got.X)
	assert.Equal(t, 40.0, got.Y)

	out = mustCall(t, s.handleMoveBlock, map[string]any{"blockId": "missing", "x": 0.0, "y": 0.0})
	assert.Contains(t, out, "No change")
}

func TestTools_LockedBlockIgnoresNudge(t *testing.T) {
	s, ws := newTestServer(t)
	b := addTestBlock(t, s, map[string]any{"type": "badge"})

	mustCall(t, s.handleSetBlockFlags, map[string]any{"blockId": b.ID, "locked": true})
	out := mustCall(t, s.handleNudgeBlock, map[string]any{"blockId": b.ID, "dx": 5.0})
	assert.Contains(t, out, "No change")
	assert.Equal(t, b.Position, ws.Document().Blocks[0].Position)

	_, err := call(t, s.handleSetBlockFlags, map[string]any{"blockId": b.ID})
	assert.Error(t, err)
}

func TestTools_SetFlagsRecordsOneEntry(t *testing.T) {
	s, ws := newTestServer(t)
	b := addTestBlock(t, s, map[string]any{"type": "text"})
	historyLen := func() int {
		var n int
		require.NoError(t, ws.Do(func(sess *editor.Session) error {
			n = len(sess.History())
			return nil
		}))
		return n
	}
	before := historyLen()

	mustCall(t, s.handleSetBlockFlags, map[string]any{"blockId": b.ID, "content": "NEW", "visible": false, "locked": true})
	assert.Equal(t, before+1, historyLen())

	got := ws.Document().Blocks[0]
	assert.Equal(t, "NEW", got.Content)
	assert.False(t, got.Visible)
	assert.True(t, got.Locked)
}

func TestTools_ArrangeReportsArrangedCount(t *testing.T) {
	s, _ := newTestServer(t)
	a := addTestBlock(t, s, map[string]any{"type": "text", "x": 0.0, "y": 0.0})
	b := addTestBlock(t, s, map[string]any{"type": "text", "x": 0.0, "y": 0.0})
	addTestBlock(t, s, map[string]any{"type": "text", "x": 900.0, "y": 900.0})

	out := mustCall(t, s.handleArrangeBlocks, map[string]any{"blockIds": a.ID + "," + b.ID})
	assert.Equal(t, "Arranged 2 block(s)", out)
}

func TestTools_GestureLifecycle(t *testing.T) {
	s, ws := newTestServer(t)
	b := addTestBlock(t, s, map[string]any{"type": "text", "x": 0.0, "y": 0.0})

	mustCall(t, s.handleBeginDrag, map[string]any{"blockId": b.ID})

	_, err := call(t, s.handleDeleteBlock, map[string]any{"blockId": b.ID})
	assert.ErrorIs(t, err, service.ErrBusy, "edits wait for the gesture")
	_, err = call(t, s.handleBeginResize, map[string]any{"blockId": b.ID, "handle": "se"})
	assert.ErrorIs(t, err, service.ErrBusy)

	var frame frameResult
	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleDrag, map[string]any{"dx": 95.0, "dy": 0.0})), &frame))
	assert.Equal(t, 100.0, frame.Block.X)
	_, err = call(t, s.handleResize, map[string]any{"dx": 1.0, "dy": 1.0})
	assert.Error(t, err, "resize frame during a drag")

	var end endResult
	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleEndDrag, nil)), &end))
	assert.True(t, end.Committed)
	assert.Equal(t, 100.0, end.Block.X)

	_, err = call(t, s.handleEndDrag, nil)
	assert.Error(t, err)

	var h historyResult
	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleHistory, nil)), &h))
	require.Len(t, h.Entries, 3)
	assert.Equal(t, "move", h.Entries[2].Description)
	assert.True(t, h.Entries[2].Current)

	mustCall(t, s.handleBeginResize, map[string]any{"blockId": b.ID, "handle": "se"})
	mustCall(t, s.handleResize, map[string]any{"dx": 0.0, "dy": 0.0})
	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleEndResize, nil)), &end))
	assert.False(t, end.Committed, "stationary resize records nothing")
	assert.Len(t, ws.Document().Blocks, 1)
}

func TestTools_UndoRedo(t *testing.T) {
	s, ws := newTestServer(t)
	addTestBlock(t, s, map[string]any{"type": "badge"})

	assert.Contains(t, mustCall(t, s.handleUndo, nil), "initial state")
	assert.Empty(t, ws.Document().Blocks)
	assert.Contains(t, mustCall(t, s.handleUndo, nil), "nothing to undo")
	assert.Contains(t, mustCall(t, s.handleRedo, nil), "add")
	assert.Len(t, ws.Document().Blocks, 1)
}

func TestTools_PressKey(t *testing.T) {
	s, ws := newTestServer(t)
	b := addTestBlock(t, s, map[string]any{"type": "price"})

	assert.Contains(t, mustCall(t, s.handlePressKey, map[string]any{"key": "Ctrl+D", "select": b.ID}), "handled")
	assert.Len(t, ws.Document().Blocks, 2)

	mustCall(t, s.handlePressKey, map[string]any{"key": "Escape"})
	assert.Contains(t, mustCall(t, s.handlePressKey, map[string]any{"key": "Delete"}), "did nothing")

	_, err := call(t, s.handlePressKey, map[string]any{"key": "Ctrl+"})
	assert.Error(t, err)
	_, err = call(t, s.handlePressKey, map[string]any{"key": "Delete", "select": "missing"})
	assert.Error(t, err)
}

func TestTools_LayerAndReorder(t *testing.T) {
	s, _ := newTestServer(t)
	a := addTestBlock(t, s, map[string]any{"type": "badge"})
	b := addTestBlock(t, s, map[string]any{"type": "badge"})

	var order []string
	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleLayerBlock, map[string]any{"blockId": a.ID, "op": "front"})), &order))
	assert.Equal(t, []string{a.ID, b.ID}, order)

	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleReorderBlocks, map[string]any{"blockIds": b.ID + ", " + a.ID})), &order))
	assert.Equal(t, []string{b.ID, a.ID}, order)

	_, err := call(t, s.handleLayerBlock, map[string]any{"blockId": a.ID, "op": "sideways"})
	assert.Error(t, err)
}

func TestTools_ResizeAndInspect(t *testing.T) {
	s, _ := newTestServer(t)
	a := addTestBlock(t, s, map[string]any{"type": "text", "x": 0.0, "y": 0.0})
	b := addTestBlock(t, s, map[string]any{"type": "text", "x": 0.0, "y": 200.0})

	var got blockSummary
	out := mustCall(t, s.handleResizeBlock, map[string]any{"blockId": a.ID, "handle": "s", "dx": 0.0, "dy": 150.0})
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 250.0, got.Height)

	var fb editor.Feedback
	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleInspectBlock, map[string]any{"blockId": a.ID})), &fb))
	assert.Equal(t, []string{b.ID}, fb.Collision.IDs)

	_, err := call(t, s.handleResizeBlock, map[string]any{"blockId": a.ID, "handle": "middle"})
	assert.Error(t, err)
	_, err = call(t, s.handleResizeBlock, map[string]any{"blockId": a.ID})
	assert.Error(t, err)
}

func TestTools_SaveScene(t *testing.T) {
	s, ws := newTestServer(t)
	addTestBlock(t, s, map[string]any{"type": "header"})

	var res service.SaveResult
	require.NoError(t, json.Unmarshal([]byte(mustCall(t, s.handleSaveScene, map[string]any{"name": "Coffee week"})), &res))
	assert.Equal(t, ws.FilePath(), res.File)
	assert.FileExists(t, res.File)
	assert.Equal(t, "Coffee week", ws.Meta().Name)

	_, err := call(t, s.handleListScenes, nil)
	assert.ErrorIs(t, err, service.ErrNoStore)
}

func TestResources_Scene(t *testing.T) {
	s, _ := newTestServer(t)
	b := addTestBlock(t, s, map[string]any{"type": "image"})

	req := mcp.ReadResourceRequest{}
	req.Params.URI = sceneURI
	contents, err := s.handleSceneResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, b.ID)
}

func TestPrompts_LayoutPoster(t *testing.T) {
	s, _ := newTestServer(t)
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"brief": "coffee 2 for 5.99"}
	res, err := s.handleLayoutPosterPrompt(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0].Content.(mcp.TextContent).Text, "coffee 2 for 5.99")
}

func TestServer_ListsTools(t *testing.T) {
	s, _ := newTestServer(t)
	msg := s.MCP().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	for _, name := range []string{"add_block", "begin_drag", "press_key", "save_scene", "arrange_blocks"} {
		assert.Contains(t, string(data), `"`+name+`"`)
	}
}
