package mcp

import (
	"context"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aki/gen3talk/internal/codec"
)

// ROMStringResult is returned by rom_string
type ROMStringResult struct {
	Offset string `json:"offset"`
	Hex    string `json:"hex"`
	Text   string `json:"text"`
}

func (s *Server) handleROMString(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ROMStringParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, err
	}

	offset, err := strconv.ParseInt(strings.TrimSpace(params.Offset), 0, 64)
	if err != nil || offset < 0 {
		return nil, InvalidParameterError("offset", "a non-negative decimal or 0x-prefixed number")
	}

	data, err := s.image.StringAt(int(offset))
	if err != nil {
		return nil, err
	}

	return createEnhancedResult("rom_string", ROMStringResult{
		Offset: "0x" + strings.ToUpper(strconv.FormatInt(offset, 16)),
		Hex:    codec.FormatHex(data),
		Text:   codec.Decode(data),
	})
}
