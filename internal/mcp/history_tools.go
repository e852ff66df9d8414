package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// HistoryResult is one journal entry as returned by history_recent
type HistoryResult struct {
	ID        int64  `json:"id"`
	RequestID string `json:"request_id"`
	Original  string `json:"original"`
	Rewritten string `json:"rewritten"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleHistoryRecent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params HistoryParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, err
	}

	entries, err := s.history.Recent(ctx, params.Limit)
	if err != nil {
		return nil, err
	}

	results := make([]HistoryResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, HistoryResult{
			ID:        e.ID,
			RequestID: e.RequestID,
			Original:  e.Original,
			Rewritten: e.Rewritten,
			CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return createEnhancedResult("history_recent", results)
}
