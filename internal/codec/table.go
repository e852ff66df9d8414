package codec

// Control bytes of the Gen3 text encoding.
const (
	// Terminator ends a string unconditionally
	Terminator byte = 0xFF
	// PageBreak ends the current text box
	PageBreak byte = 0xFB
	// Newline is the soft line break inside a text box
	Newline byte = 0xFE
	// Escape reinterprets the following byte as a sub-code
	Escape byte = 0xFC
	// FallbackByte is emitted for characters with no encoding
	FallbackByte byte = 0x50
)

// Escape sub-codes.
const (
	PlayerCode byte = 0x10
	RivalCode  byte = 0x11
	ArrowCode  byte = 0x0C
)

// Placeholder tokens used in decoded text.
const (
	PlayerToken = "{PLAYER}"
	RivalToken  = "{RIVAL}"
	ArrowGlyph  = "→"
)

// DefaultMaxLen is the size of the in-game string buffer, terminator included.
const DefaultMaxLen = 255

const (
	digitBase = 0xA1
	upperBase = 0xBB
	lowerBase = 0xD5
)

// charTable maps a byte to its glyph. An empty slot is a table miss.
var charTable = buildCharTable()

// reverseTable maps a glyph back to its encoding.
var reverseTable = buildReverseTable()

// placeholders are matched at the current position before any single rune,
// longest token first.
var placeholders = []struct {
	token string
	code  byte
}{
	{PlayerToken, PlayerCode},
	{RivalToken, RivalCode},
}

func buildCharTable() [256]string {
	var t [256]string
	t[0x00] = " "
	for i := 0; i < 10; i++ {
		t[digitBase+i] = string(rune('0' + i))
	}
	for i := 0; i < 26; i++ {
		t[upperBase+i] = string(rune('A' + i))
		t[lowerBase+i] = string(rune('a' + i))
	}
	for code, glyph := range map[byte]string{
		0xAD: ".",
		0xB8: ",",
		0xB4: "'",
		0x1B: "é",
		0xAB: "!",
		0xAC: "?",
		0xB3: "\"",
		0xB0: "…",
		0xB5: "♂",
		0xB6: "♀",
	} {
		t[code] = glyph
	}
	return t
}

func buildReverseTable() map[rune]Rule {
	r := make(map[rune]Rule, 96)
	for code, glyph := range charTable {
		if glyph == "" {
			continue
		}
		r[[]rune(glyph)[0]] = Rule{Kind: MappedByte, Bytes: []byte{byte(code)}}
	}
	r['\n'] = Rule{Kind: MappedByte, Bytes: []byte{Newline}}
	r['\f'] = Rule{Kind: MappedByte, Bytes: []byte{PageBreak}}
	r['→'] = Rule{Kind: MappedBytes, Bytes: []byte{Escape, ArrowCode}}
	return r
}

// Glyph returns the table entry for b and whether the slot is defined.
func Glyph(b byte) (string, bool) {
	g := charTable[b]
	return g, g != ""
}
