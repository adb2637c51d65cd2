package transform

import (
	"strings"
	"unicode"
)

// Minimum cleaned-text lengths, in characters, for the two entry points.
const (
	MinDirectChars = 10
	MinUploadChars = 50
)

// CleanText normalizes whitespace while preserving paragraph structure.
// Whitespace runs containing two or more newlines collapse to a single blank
// line; every other whitespace run collapses to one space. Leading and
// trailing whitespace is removed.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		b        strings.Builder
		inSpace  bool
		newlines int
	)
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsSpace(r) {
			inSpace = true
			if r == '\n' {
				newlines++
			}
			continue
		}
		if inSpace {
			if b.Len() > 0 {
				if newlines >= 2 {
					b.WriteString("\n\n")
				} else {
					b.WriteByte(' ')
				}
			}
			inSpace = false
			newlines = 0
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CheckMinLength verifies that cleaned text meets the minimum character count
// for its entry point. The count is in runes so multibyte text is not
// penalized.
func CheckMinLength(cleaned string, min int) error {
	if n := len([]rune(cleaned)); n < min {
		return invalidInputf("text too short: %d characters, need at least %d", n, min)
	}
	return nil
}
