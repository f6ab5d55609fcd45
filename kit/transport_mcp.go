package kit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/overlay/idgen"
)

var requestIDs = idgen.Prefixed("req_", idgen.Default)

// RegisterMCPTool exposes endpoint as an MCP tool. The raw tool arguments
// are decoded into a fresh *Req, which the endpoint receives as its request;
// absent arguments leave Req at its zero value. Every call carries
// TransportMCP and a new request id.
//
// Bad arguments and endpoint failures come back as tool errors so the model
// sees them. Protocol errors are reserved for the session itself.
func RegisterMCPTool[Req any](srv *mcp.Server, tool *mcp.Tool, endpoint Endpoint) {
	srv.AddTool(tool, func(ctx context.Context, call *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = WithRequestID(WithTransport(ctx, TransportMCP), requestIDs())

		req := new(Req)
		if raw := call.Params.Arguments; len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, req); err != nil {
				return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}

		resp, err := endpoint(ctx, req)
		if err != nil {
			return toolError(err), nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return toolError(fmt.Errorf("marshal: %w", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}
