package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/aki/gen3talk/internal/core/mailbox"
)

// setupTestServer creates a server over a fresh file mailbox
func setupTestServer(t *testing.T, opts ...Option) (*Server, *mailbox.Manager) {
	t.Helper()

	mgr := mailbox.NewManager(t.TempDir())
	require.NoError(t, mgr.Init(context.Background()))

	s, err := NewServer(mgr, opts...)
	require.NoError(t, err)
	return s, mgr
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// decodeResult extracts the "result" field of an enhanced result
func decodeResult[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()

	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var envelope struct {
		Result   T                  `json:"result"`
		Metadata ToolResultMetadata `json:"_metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
	require.NotEmpty(t, envelope.Metadata.ToolUsed)
	return envelope.Result
}
