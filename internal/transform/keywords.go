package transform

import (
	"sort"
	"strings"
)

// DocumentKeywordCount is the default keyword count for whole documents.
const DocumentKeywordCount = 10

// ExtractKeywords returns up to max keywords ranked by frequency. Tokens are
// lowercased letter runs longer than three characters, with stopwords
// removed. Ties keep first-occurrence order, so results are deterministic for
// a given input.
func ExtractKeywords(text string, max int) []string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range letterTokens(text) {
		if len([]rune(tok)) <= 3 {
			continue
		}
		word := strings.ToLower(tok)
		if isStopword(word) {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > max {
		order = order[:max]
	}
	return order
}
