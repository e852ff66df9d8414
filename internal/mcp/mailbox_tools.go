package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aki/gen3talk/internal/codec"
	"github.com/aki/gen3talk/internal/ipc"
)

// PendingResult is returned by mailbox_pending
type PendingResult struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// SubmitResult is returned by mailbox_submit
type SubmitResult struct {
	ID  string `json:"id"`
	Hex string `json:"hex"`
}

// TakeResult is returned by mailbox_take
type TakeResult struct {
	ID   string `json:"id"`
	Hex  string `json:"hex"`
	Text string `json:"text"`
}

func (s *Server) registerMailboxTools() error {
	if err := s.addTool("mailbox_pending", struct{}{}, s.handleMailboxPending); err != nil {
		return err
	}
	// Submitting and taking need the peer-side operations.
	if _, ok := s.mailbox.(ipc.Requester); !ok {
		return nil
	}
	if err := s.addTool("mailbox_submit", MailboxSubmitParams{}, s.handleMailboxSubmit); err != nil {
		return err
	}
	return s.addTool("mailbox_take", MailboxTakeParams{}, s.handleMailboxTake)
}

func (s *Server) handleMailboxPending(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.mailbox.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending responses: %w", err)
	}
	return createEnhancedResult("mailbox_pending", PendingResult{IDs: ids, Count: len(ids)})
}

func (s *Server) requester() (ipc.Requester, error) {
	r, ok := s.mailbox.(ipc.Requester)
	if !ok {
		return nil, NotConfiguredError("a request-capable mailbox", "mailbox_pending - Inspect responses instead")
	}
	return r, nil
}

func (s *Server) handleMailboxSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params MailboxSubmitParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, err
	}
	if params.Text == "" {
		return nil, InvalidParameterError("text", "non-empty dialogue text")
	}

	r, err := s.requester()
	if err != nil {
		return nil, err
	}

	id := params.ID
	if id == "" {
		id = ipc.NewService(s.mailbox).GenerateID()
	}
	payload := codec.Encode(params.Text, codec.DefaultMaxLen)
	if err := r.SubmitRequest(ctx, id, payload); err != nil {
		return nil, fmt.Errorf("failed to submit request: %w", err)
	}

	return createEnhancedResult("mailbox_submit", SubmitResult{ID: id, Hex: codec.FormatHex(payload)})
}

func (s *Server) handleMailboxTake(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params MailboxTakeParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, err
	}

	r, err := s.requester()
	if err != nil {
		return nil, err
	}

	payload, ok, err := r.TakeResponse(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to take response: %w", err)
	}
	if !ok {
		return nil, ResponseNotFoundError(params.ID)
	}

	return createEnhancedResult("mailbox_take", TakeResult{
		ID:   params.ID,
		Hex:  codec.FormatHex(payload),
		Text: codec.Decode(payload),
	})
}
