package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerStorageTools() {
	s.mcp.AddTool(mcp.NewTool("save_scene",
		mcp.WithDescription("Save the scene to the configured store and scene file"),
		mcp.WithString("name", mcp.Description("Rename the scene before saving (optional)")),
	), s.handleSaveScene)

	s.mcp.AddTool(mcp.NewTool("load_scene",
		mcp.WithDescription("Replace the scene with a stored one. Undoable."),
		mcp.WithString("sceneId", mcp.Description("Scene ID from list_scenes"), mcp.Required()),
	), s.handleLoadScene)

	s.mcp.AddTool(mcp.NewTool("list_scenes",
		mcp.WithDescription("List stored scenes, most recently updated first"),
	), s.handleListScenes)

	s.mcp.AddTool(mcp.NewTool("list_revisions",
		mcp.WithDescription("List saved revisions of the current scene, newest first"),
	), s.handleListRevisions)

	s.mcp.AddTool(mcp.NewTool("load_revision",
		mcp.WithDescription("Restore a saved revision of the current scene. Undoable."),
		mcp.WithString("revisionId", mcp.Description("Revision ID from list_revisions"), mcp.Required()),
	), s.handleLoadRevision)
}

func (s *Server) handleSaveScene(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if name := getString(req.GetArguments(), "name"); name != "" {
		s.ws.Rename(name)
	}
	res, err := s.ws.Save(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("scene saved", "scene", res.SceneID, "file", res.File)
	return jsonResult(res)
}

func (s *Server) handleLoadScene(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "sceneId")
	if err != nil {
		return nil, err
	}
	if err := s.ws.Load(ctx, id); err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	meta := s.ws.Meta()
	return textResult(fmt.Sprintf("Loaded %q (%d blocks)", meta.Name, len(s.ws.Document().Blocks))), nil
}

func (s *Server) handleListScenes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scenes, err := s.ws.ListScenes(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(scenes)
}

func (s *Server) handleListRevisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	revs, err := s.ws.ListRevisions(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(revs)
}

func (s *Server) handleLoadRevision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "revisionId")
	if err != nil {
		return nil, err
	}
	if err := s.ws.LoadRevision(ctx, id); err != nil {
		return nil, fmt.Errorf("load revision: %w", err)
	}
	return textResult(fmt.Sprintf("Restored revision %s", id)), nil
}
