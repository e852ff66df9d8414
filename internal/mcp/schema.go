// Package mcp exposes the codec and the mailbox to MCP clients.
package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StructToToolOptions converts a struct with tags into MCP tool options.
// The struct should use tags like `json:"text" mcp:"required" description:"Text to encode"`
func StructToToolOptions(structType interface{}) ([]mcp.ToolOption, error) {
	t := reflect.TypeOf(structType)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct type, got %v", t.Kind())
	}

	var toolOptions []mcp.ToolOption
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		jsonTag := field.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}
		fieldName, _, _ := strings.Cut(jsonTag, ",")

		description := field.Tag.Get("description")
		if description == "" {
			description = fmt.Sprintf("%s field", fieldName)
		}

		opts := []mcp.PropertyOption{mcp.Description(description)}
		if field.Tag.Get("mcp") == "required" {
			opts = append(opts, mcp.Required())
		}

		switch field.Type.Kind() { //nolint:exhaustive // Only handling types we support
		case reflect.String:
			if enumTag := field.Tag.Get("enum"); enumTag != "" {
				var enumValues []string
				if err := json.Unmarshal([]byte("["+enumTag+"]"), &enumValues); err == nil {
					opts = append(opts, mcp.Enum(enumValues...))
				}
			}
			toolOptions = append(toolOptions, mcp.WithString(fieldName, opts...))
		case reflect.Int, reflect.Int64:
			toolOptions = append(toolOptions, mcp.WithNumber(fieldName, opts...))
		case reflect.Bool:
			toolOptions = append(toolOptions, mcp.WithBoolean(fieldName, opts...))
		default:
			continue
		}
	}

	return toolOptions, nil
}

// WithStructOptions is a helper that combines a description with struct-based options
func WithStructOptions(description string, structType interface{}) ([]mcp.ToolOption, error) {
	structOpts, err := StructToToolOptions(structType)
	if err != nil {
		return nil, err
	}
	return append([]mcp.ToolOption{mcp.WithDescription(description)}, structOpts...), nil
}

// UnmarshalArgs unmarshals CallToolRequest arguments into a struct
func UnmarshalArgs[T any](request mcp.CallToolRequest, target *T) error {
	jsonBytes, err := json.Marshal(request.GetArguments())
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal arguments to struct: %w", err)
	}
	return nil
}

// CodecDecodeParams defines parameters for decoding bytes
type CodecDecodeParams struct {
	Hex string `json:"hex" mcp:"required" description:"Encoded bytes as hex, separators and 0x prefixes allowed"`
}

// CodecEncodeParams defines parameters for encoding text
type CodecEncodeParams struct {
	Text   string `json:"text" mcp:"required" description:"Text to encode; {PLAYER} and {RIVAL} are placeholders"`
	MaxLen int    `json:"max_len,omitempty" description:"Maximum output length including the terminator (default 255)"`
}

// MailboxSubmitParams defines parameters for submitting a request
type MailboxSubmitParams struct {
	Text string `json:"text" mcp:"required" description:"Dialogue text to submit as a request"`
	ID   string `json:"id,omitempty" description:"Request id (optional, generated when empty)"`
}

// MailboxTakeParams defines parameters for taking a response
type MailboxTakeParams struct {
	ID string `json:"id" mcp:"required" description:"Request id whose response to take"`
}

// ROMStringParams defines parameters for reading a string from the image
type ROMStringParams struct {
	Offset string `json:"offset" mcp:"required" description:"Image offset, decimal or 0x-prefixed hex"`
}

// HistoryParams defines parameters for listing journal entries
type HistoryParams struct {
	Limit int `json:"limit,omitempty" description:"Number of entries to return (default 20)"`
}
