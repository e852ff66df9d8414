package codec

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []string{
		"Hello, world!",
		"POKéMON Center",
		"Press START to begin!",
		"It's dangerous to go alone...",
		"",
		"{PLAYER} vs {RIVAL}!",
		"Line one\nLine two",
		"0123456789",
		"\"Quoted\" … ♂ ♀ ?",
		"Go → there",
		"{RIVAL}{PLAYER}{RIVAL}",
	}

	codec := New()
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			encoded := codec.Encode(text, DefaultMaxLen)
			require.NotEmpty(t, encoded)
			assert.Equal(t, Terminator, encoded[len(encoded)-1])
			assert.Equal(t, text, codec.Decode(encoded))
		})
	}
}

func TestEncodeTerminatorInvariant(t *testing.T) {
	alphabet := []string{"a", "Z", "5", " ", ".", "\n", "é", "#", "日", "{PLAYER}", "{RIVAL}", "→", "{", "\f"}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		var sb strings.Builder
		for n := rng.Intn(80); n > 0; n-- {
			sb.WriteString(alphabet[rng.Intn(len(alphabet))])
		}
		text := sb.String()
		maxLen := 1 + rng.Intn(40)

		encoded := Encode(text, maxLen)
		require.NotEmpty(t, encoded, "text %q maxLen %d", text, maxLen)
		assert.LessOrEqual(t, len(encoded), maxLen, "text %q", text)
		assert.Equal(t, Terminator, encoded[len(encoded)-1], "text %q", text)
	}
}

func TestEncodeTruncation(t *testing.T) {
	t.Run("content stops one short of max length", func(t *testing.T) {
		encoded := Encode("ABCDEFGHIJ", 5)
		assert.Equal(t, []byte{0xBB, 0xBC, 0xBD, 0xBE, Terminator}, encoded)
	})

	t.Run("placeholder that does not fit is dropped whole", func(t *testing.T) {
		encoded := Encode("AB{PLAYER}", 4)
		assert.Equal(t, []byte{0xBB, 0xBC, Terminator}, encoded)
	})

	t.Run("max length one yields only the terminator", func(t *testing.T) {
		assert.Equal(t, []byte{Terminator}, Encode("Hello", 1))
	})

	t.Run("non-positive max length is clamped", func(t *testing.T) {
		assert.Equal(t, []byte{Terminator}, Encode("Hello", 0))
		assert.Equal(t, []byte{Terminator}, Encode("Hello", -3))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Equal(t, []byte{Terminator}, Encode("", DefaultMaxLen))
	})
}

func TestEncodeFallbacks(t *testing.T) {
	t.Run("unmapped characters emit one fallback byte each", func(t *testing.T) {
		assert.Equal(t, []byte{FallbackByte, FallbackByte, Terminator}, Encode("#日", DefaultMaxLen))
	})

	t.Run("unmatched brace is a plain unmapped character", func(t *testing.T) {
		assert.Equal(t, []byte{FallbackByte, 0xBB, Terminator}, Encode("{A", DefaultMaxLen))
	})

	t.Run("control characters", func(t *testing.T) {
		assert.Equal(t, []byte{0xBB, Newline, 0xBC, PageBreak, Terminator}, Encode("A\nB\f", DefaultMaxLen))
	})
}

func TestResolve(t *testing.T) {
	tests := []struct {
		text     string
		kind     RuleKind
		bytes    []byte
		consumed int
	}{
		{"{PLAYER} hi", MappedBytes, []byte{Escape, PlayerCode}, len(PlayerToken)},
		{"{RIVAL}", MappedBytes, []byte{Escape, RivalCode}, len(RivalToken)},
		{"→", MappedBytes, []byte{Escape, ArrowCode}, len("→")},
		{"A", MappedByte, []byte{0xBB}, 1},
		{"z", MappedByte, []byte{0xEE}, 1},
		{"9", MappedByte, []byte{0xAA}, 1},
		{"é", MappedByte, []byte{0x1B}, len("é")},
		{"\n", MappedByte, []byte{Newline}, 1},
		{"~", UnmappedFallback, []byte{FallbackByte}, 1},
		{"日本", UnmappedFallback, []byte{FallbackByte}, len("日")},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			rule, n := Resolve(tt.text, 0)
			assert.Equal(t, tt.kind, rule.Kind)
			assert.Equal(t, tt.bytes, rule.Bytes)
			assert.Equal(t, tt.consumed, n)
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"player placeholder", []byte{Escape, PlayerCode, 0xBB, Terminator}, "{PLAYER}A"},
		{"rival and arrow", []byte{Escape, RivalCode, 0x00, Escape, ArrowCode}, "{RIVAL} →"},
		{"stops at terminator", []byte{0xBB, Terminator, 0xBC}, "A"},
		{"page break truncates", []byte{0xBB, PageBreak, 0xBC, 0xBD}, "A\f"},
		{"newline continues", []byte{0xBB, Newline, 0xBC}, "A\nB"},
		{"unknown byte", []byte{0xBB, 0x41, 0xBC}, "A[41]B"},
		{"unknown escape sub-code", []byte{Escape, 0x99, 0xBB}, "[FC 99]A"},
		{"escape as last byte", []byte{0xBB, Escape}, "A[FC]"},
		{"empty", nil, ""},
		{"digits and punctuation", []byte{0xA1, 0xAA, 0xAD, 0xB8, 0xB4, 0xAB, 0xAC, 0xB3, 0xB0, 0xB5, 0xB6}, "09.,'!?\"…♂♀"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.data))
		})
	}
}

func TestDecodeNeverFails(t *testing.T) {
	for b := 0; b < 256; b++ {
		out := Decode([]byte{byte(b), byte(b), 0x00})
		if _, ok := Glyph(byte(b)); ok {
			continue
		}
		switch byte(b) {
		case Terminator, PageBreak, Newline, Escape:
			continue
		}
		assert.Contains(t, out, "["+strings.ToUpper(FormatHex([]byte{byte(b)}))+"]", "byte %02X", b)
	}
}

func TestCharTableRanges(t *testing.T) {
	for i := 0; i < 26; i++ {
		upper, ok := Glyph(byte(upperBase + i))
		require.True(t, ok)
		assert.Equal(t, string(rune('A'+i)), upper)

		lower, ok := Glyph(byte(lowerBase + i))
		require.True(t, ok)
		assert.Equal(t, string(rune('a'+i)), lower)
	}
	for i := 0; i < 10; i++ {
		digit, ok := Glyph(byte(digitBase + i))
		require.True(t, ok)
		assert.Equal(t, string(rune('0'+i)), digit)
	}
	space, ok := Glyph(0x00)
	require.True(t, ok)
	assert.Equal(t, " ", space)
}

func TestHex(t *testing.T) {
	assert.Equal(t, "FC 10 BB FF", FormatHex([]byte{0xFC, 0x10, 0xBB, 0xFF}))

	for _, in := range []string{"FC10BBFF", "fc 10 bb ff", "0xFC,0x10,0xBB,0xFF"} {
		data, err := ParseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, []byte{0xFC, 0x10, 0xBB, 0xFF}, data, in)
	}

	_, err := ParseHex("zz")
	assert.Error(t, err)
}
