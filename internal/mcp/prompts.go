package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("layout_poster",
		mcp.WithPromptDescription("Guide through laying out a retail poster from a short brief"),
		mcp.WithArgument("brief",
			mcp.ArgumentDescription("What the poster advertises, e.g. \"weekend sale on coffee, 2 for 5.99\""),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("format",
			mcp.ArgumentDescription("Canvas size, e.g. \"A3 portrait\" (optional)"),
		),
	), s.handleLayoutPosterPrompt)
}

func (s *Server) handleLayoutPosterPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	brief := req.Params.Arguments["brief"]
	format := req.Params.Arguments["format"]
	if format == "" {
		format = "the default canvas"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Lay out a poster for: %s", brief),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Lay out a poster for "%s" on %s. Follow these steps:

1. Read poster://scene to see what is already there.
2. Add a header block with the main message, then a subheader for the detail line.
3. Add one price block per offer and a badge for any discount.
4. Group related blocks in a container (add_block with type container, then reparent_block).
5. Use inspect_block on every block and fix collisions with move_block or nudge_block.
6. Call arrange_blocks if the result looks crowded, then save_scene.

Keep blocks on the grid and avoid overlaps. Prefer presets (apply_preset) over arbitrary sizes.`, brief, format),
				},
			},
		},
	}, nil
}
