package transform

import (
	"strings"
	"unicode"
)

// Words splits text on whitespace. This is the counting unit for durations
// and budgets.
func Words(text string) []string {
	return strings.Fields(text)
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// letterTokens splits text into runs of letters, dropping digits and
// punctuation entirely.
func letterTokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// Sentences splits text at terminator runes (. ! ?) followed by whitespace or
// end of input. Trailing closing quotes and brackets stay with the sentence
// they close. Empty sentences are dropped.
func Sentences(text string) []string {
	var (
		out   []string
		runes = []rune(text)
		start = 0
	)
	flush := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			j := i + 1
			for j < len(runes) && isClosing(runes[j]) {
				j++
			}
			if j >= len(runes) || unicode.IsSpace(runes[j]) {
				flush(j)
				i = j - 1
			}
		}
	}
	flush(len(runes))
	return out
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '»', '”', '’':
		return true
	}
	return false
}
