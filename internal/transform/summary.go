package transform

import "strings"

// DefaultSummarySentences is the default length of a generated summary.
const DefaultSummarySentences = 3

// Summarize returns the first maxSentences sentences of text, with an
// ellipsis when content was cut. Text at or under the limit is returned
// whole.
func Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultSummarySentences
	}
	sentences := Sentences(text)
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " ")
	}
	return strings.Join(sentences[:maxSentences], " ") + "..."
}
