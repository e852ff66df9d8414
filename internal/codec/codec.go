// Package codec converts between the Gen3 in-game text encoding and
// readable text.
//
// Letters are case-distinct: upper and lower case occupy separate ranges,
// so encoding then decoding reproduces the input exactly. Decoding stops at
// the first page break, which is emitted as "\f".
package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Codec converts game-encoded strings to text and back.
type Codec interface {
	Decode(data []byte) string
	Encode(text string, maxLen int) []byte
}

// Gen3 is the Codec for the Gen3 character set.
type Gen3 struct{}

// New returns the Gen3 codec.
func New() Gen3 {
	return Gen3{}
}

// Decode implements Codec
func (Gen3) Decode(data []byte) string {
	return Decode(data)
}

// Encode implements Codec
func (Gen3) Encode(text string, maxLen int) []byte {
	return Encode(text, maxLen)
}

// RuleKind identifies how a piece of text is encoded.
type RuleKind int

const (
	// MappedByte is a single byte from the character table
	MappedByte RuleKind = iota
	// MappedBytes is a multi-byte sequence such as an escape code
	MappedBytes
	// AsciiRangeFallback derives the byte from the letter's alphabet position
	AsciiRangeFallback
	// UnmappedFallback emits FallbackByte
	UnmappedFallback
)

func (k RuleKind) String() string {
	switch k {
	case MappedByte:
		return "mapped-byte"
	case MappedBytes:
		return "mapped-bytes"
	case AsciiRangeFallback:
		return "ascii-range"
	case UnmappedFallback:
		return "unmapped"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// Rule is the resolved encoding for one unit of input text.
type Rule struct {
	Kind  RuleKind
	Bytes []byte
}

// Decode converts game bytes to text. It never fails: unknown bytes and
// unknown escape sub-codes become bracketed hex tokens.
func Decode(data []byte) string {
	var sb strings.Builder
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == Terminator:
			return sb.String()
		case b == PageBreak:
			sb.WriteByte('\f')
			return sb.String()
		case b == Newline:
			sb.WriteByte('\n')
		case b == Escape && i+1 < len(data):
			i++
			sb.WriteString(decodeEscape(data[i]))
		default:
			if g, ok := Glyph(b); ok {
				sb.WriteString(g)
			} else {
				fmt.Fprintf(&sb, "[%02X]", b)
			}
		}
	}
	return sb.String()
}

func decodeEscape(code byte) string {
	switch code {
	case PlayerCode:
		return PlayerToken
	case RivalCode:
		return RivalToken
	case ArrowCode:
		return ArrowGlyph
	default:
		return fmt.Sprintf("[FC %02X]", code)
	}
}

// Resolve picks the encoding rule for the text starting at text[pos:] and
// reports how many bytes of text it consumes.
func Resolve(text string, pos int) (Rule, int) {
	rest := text[pos:]
	for _, p := range placeholders {
		if strings.HasPrefix(rest, p.token) {
			return Rule{Kind: MappedBytes, Bytes: []byte{Escape, p.code}}, len(p.token)
		}
	}

	r, size := utf8.DecodeRuneInString(rest)
	if rule, ok := reverseTable[r]; ok && r != utf8.RuneError {
		return rule, size
	}
	switch {
	case r >= 'A' && r <= 'Z':
		return Rule{Kind: AsciiRangeFallback, Bytes: []byte{byte(upperBase + r - 'A')}}, size
	case r >= 'a' && r <= 'z':
		return Rule{Kind: AsciiRangeFallback, Bytes: []byte{byte(lowerBase + r - 'a')}}, size
	}
	return Rule{Kind: UnmappedFallback, Bytes: []byte{FallbackByte}}, size
}

// Encode converts text to game bytes. The result always ends with
// Terminator and is never longer than maxLen; content that does not fit is
// dropped. A maxLen below 1 is treated as 1.
func Encode(text string, maxLen int) []byte {
	if maxLen < 1 {
		maxLen = 1
	}
	limit := maxLen - 1
	out := make([]byte, 0, min(maxLen, len(text)+1))
	for pos := 0; pos < len(text); {
		rule, n := Resolve(text, pos)
		if len(out)+len(rule.Bytes) > limit {
			break
		}
		out = append(out, rule.Bytes...)
		pos += n
	}
	return append(out, Terminator)
}
