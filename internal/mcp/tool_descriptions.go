package mcp

import "strings"

// ToolDescription provides enhanced descriptions for AI agents
type ToolDescription struct {
	Description string
	WhenToUse   []string
	Examples    []string
	NextTools   []string
}

var toolDescriptions = map[string]ToolDescription{
	"codec_decode": {
		Description: "Decode Gen3 encoded bytes into text. Decoding stops at the FF terminator or the FB page break and never fails: unknown bytes show as [XX]",
		WhenToUse: []string{
			"When inspecting a request or response payload",
			"When checking what the game will display for some bytes",
		},
		Examples: []string{
			`codec_decode(hex: "FC 10 BB FF")`,
		},
		NextTools: []string{
			"codec_encode - Encode a corrected text",
		},
	},
	"codec_encode": {
		Description: "Encode text into Gen3 bytes. The output always ends with FF and never exceeds max_len bytes",
		WhenToUse: []string{
			"When preparing a payload by hand",
			"When checking how long a rewrite is once encoded",
		},
		Examples: []string{
			`codec_encode(text: "Hello {PLAYER}!")`,
			`codec_encode(text: "A long line", max_len: 8)`,
		},
		NextTools: []string{
			"codec_decode - Verify the round trip",
			"mailbox_submit - Send the text as a request",
		},
	},
	"mailbox_pending": {
		Description: "List request ids that have a response waiting in the mailbox",
		WhenToUse: []string{
			"When checking whether the loop answered a request",
			"When the peer seems to be missing responses",
		},
		NextTools: []string{
			"mailbox_take - Read and remove a response",
		},
	},
	"mailbox_submit": {
		Description: "Submit dialogue text as a request, the way the emulator script does",
		WhenToUse: []string{
			"When testing the rewrite loop without an emulator",
		},
		Examples: []string{
			`mailbox_submit(text: "Hello there!")`,
		},
		NextTools: []string{
			"mailbox_pending - Wait for the response",
			"mailbox_take - Read the response",
		},
	},
	"mailbox_take": {
		Description: "Read and remove the response for a request id",
		WhenToUse: []string{
			"After mailbox_pending lists the id",
		},
		Examples: []string{
			`mailbox_take(id: "req-1")`,
		},
	},
	"rom_string": {
		Description: "Read the encoded string at an offset of the configured game image and decode it",
		WhenToUse: []string{
			"When looking up the original text of a dialogue line",
		},
		Examples: []string{
			`rom_string(offset: "0x1A2B3C")`,
		},
		NextTools: []string{
			"mailbox_submit - Send the line through the rewrite loop",
		},
	},
	"history_recent": {
		Description: "List the most recent rewrites recorded in the journal",
		WhenToUse: []string{
			"When reviewing what the loop has published",
		},
		Examples: []string{
			`history_recent(limit: 5)`,
		},
	},
}

// GetEnhancedDescription returns the enhanced description for a tool
func GetEnhancedDescription(toolName string) string {
	desc, ok := toolDescriptions[toolName]
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(desc.Description)
	sb.WriteString("\n\nWHEN TO USE THIS TOOL:\n")
	for _, when := range desc.WhenToUse {
		sb.WriteString("- " + when + "\n")
	}
	if len(desc.Examples) > 0 {
		sb.WriteString("\nEXAMPLES:\n")
		for _, example := range desc.Examples {
			sb.WriteString(example + "\n")
		}
	}
	return sb.String()
}

// GetNextToolSuggestions returns suggested next tools for a given tool
func GetNextToolSuggestions(toolName string) []map[string]string {
	desc, ok := toolDescriptions[toolName]
	if !ok || len(desc.NextTools) == 0 {
		return nil
	}
	suggestions := make([]map[string]string, 0, len(desc.NextTools))
	for _, next := range desc.NextTools {
		suggestions = append(suggestions, map[string]string{
			"tool": next,
		})
	}
	return suggestions
}
