package viewbridge

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/overlay/kit"
)

// RegisterMCP registers the bridge tools on an MCP server.
func (b *Bridge) RegisterMCP(srv *mcp.Server) {
	ep := b.endpoints()

	kit.RegisterMCPTool[struct{}](srv, &mcp.Tool{
		Name:        "viewbridge_get_view_state",
		Description: "Return the last computed view state: geometry, props and slots of every tagged element, keyed by node id. Rects are relative to the root container.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, ep.viewState)

	kit.RegisterMCPTool[selectionRequest](srv, &mcp.Tool{
		Name:        "viewbridge_set_selection",
		Description: "Isolate one tagged element with the pinhole overlay, or hide the overlay when node_id is null. Unknown ids are ignored and reported with applied=false.",
		InputSchema: inputSchema(map[string]any{
			"node_id": map[string]any{"type": []any{"string", "null"}, "description": "Node id to select; null clears"},
		}, []string{"node_id"}),
	}, ep.setSelection)

	kit.RegisterMCPTool[struct{}](srv, &mcp.Tool{
		Name:        "viewbridge_update",
		Description: "Recompute the view state now from the live render tree and re-project the current selection.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, ep.update)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}
