package tools

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/tenant-crm/internal/session"
)

// sessionID returns the id of the calling MCP session. Transports without
// session ids map to "".
func sessionID(req *mcp.CallToolRequest) string {
	if req == nil || req.Session == nil {
		return ""
	}
	return req.Session.ID()
}

// currentTenant picks the explicit tenant id when given, otherwise the
// session's current tenant.
func currentTenant(sess *session.Sessions, req *mcp.CallToolRequest, explicit string) (string, *mcp.CallToolResult) {
	if explicit != "" {
		return explicit, nil
	}
	id, ok := sess.Current(sessionID(req))
	if !ok {
		return "", toolError("No active tenant. Use init_tenant or switch_tenant, or pass tenant_id.")
	}
	return id, nil
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
