package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aki/gen3talk/internal/codec"
)

// DecodeResult is returned by codec_decode
type DecodeResult struct {
	Text  string `json:"text"`
	Bytes int    `json:"bytes"`
}

// EncodeResult is returned by codec_encode
type EncodeResult struct {
	Hex    string `json:"hex"`
	Length int    `json:"length"`
}

func (s *Server) registerCodecTools() error {
	if err := s.addTool("codec_decode", CodecDecodeParams{}, s.handleCodecDecode); err != nil {
		return err
	}
	return s.addTool("codec_encode", CodecEncodeParams{}, s.handleCodecEncode)
}

func (s *Server) handleCodecDecode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params CodecDecodeParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, err
	}
	if params.Hex == "" {
		return nil, InvalidParameterError("hex", "a non-empty hex string")
	}

	data, err := codec.ParseHex(params.Hex)
	if err != nil {
		return nil, InvalidParameterError("hex", "hex byte pairs such as \"FC 10 BB FF\"")
	}

	return createEnhancedResult("codec_decode", DecodeResult{
		Text:  codec.Decode(data),
		Bytes: len(data),
	})
}

func (s *Server) handleCodecEncode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params CodecEncodeParams
	if err := UnmarshalArgs(request, &params); err != nil {
		return nil, err
	}
	if params.MaxLen == 0 {
		params.MaxLen = codec.DefaultMaxLen
	}
	if params.MaxLen < 0 {
		return nil, InvalidParameterError("max_len", "a positive number")
	}

	data := codec.Encode(params.Text, params.MaxLen)
	return createEnhancedResult("codec_encode", EncodeResult{
		Hex:    codec.FormatHex(data),
		Length: len(data),
	})
}
