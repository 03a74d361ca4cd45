package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cgerrors "github.com/arven/codegraph/internal/errors"
)

// jsonResult wraps data as the single TextContent block the MCP client
// expects.
func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}, nil
}

// errorResult reports a tool-level failure inside the result object with
// IsError set, per the MCP spec: protocol-level errors hide the failure
// from the calling model, but a tool_error the model can see lets it
// self-correct. The "code" field carries the machine-readable ErrorType so
// transports can branch on the failure kind without parsing message text.
func errorResult(operation string, err error) (*mcp.CallToolResult, error) {
	result, marshalErr := jsonResult(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"code":      string(cgerrors.TypeOf(err)),
		"error":     err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	result.IsError = true
	return result, nil
}
