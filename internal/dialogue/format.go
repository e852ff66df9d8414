package dialogue

import (
	"strings"
	"unicode"
)

// DefaultWrapWidth is the approximate characters per text box line
const DefaultWrapWidth = 25

var normalizer = strings.NewReplacer(
	"–", "-",
	"’", "\"",
)

var flattener = strings.NewReplacer("\n", " ", "\f", " ")

// Format prepares a rewrite for the text box. En dashes become hyphens and
// right single quotes become double quotes, characters the table cannot
// encode. Then, roughly every width characters, the next whitespace is
// replaced by a line break, alternating between newline and page break.
func Format(text string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}
	runes := []rune(normalizer.Replace(text))

	newline := true
	for i := width; i < len(runes); {
		j := i
		for j < len(runes) && !unicode.IsSpace(runes[j]) {
			j++
		}
		if j == len(runes) {
			break
		}
		if newline {
			runes[j] = '\n'
		} else {
			runes[j] = '\f'
		}
		newline = !newline
		i = j + width
	}
	return string(runes)
}

// Flatten turns line and page breaks into spaces
func Flatten(text string) string {
	return flattener.Replace(text)
}
