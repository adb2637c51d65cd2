package transform

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/microlearning/microlearn/internal/models"
)

// DefaultQuizQuestions is the default question count per generated quiz.
const DefaultQuizQuestions = 5

const (
	quizMinSentenceTokens = 6
	quizMinKeywordRunes   = 4
)

// quizOptions are the fixed answer choices for every generated question. The
// first option is always the correct one regardless of the focus keyword;
// this matches the established grading behavior and any change needs product
// sign-off first.
var quizOptions = []string{
	"A key technical element",
	"A secondary notion",
	"A fundamental principle",
	"An unimportant detail",
}

// GenerateQuiz builds up to numQuestions template questions from the text,
// one per qualifying sentence in document order. Sentences with six or fewer
// tokens, or with no usable focus keyword, are skipped. The result may be
// shorter than requested; it is empty, not an error, when nothing qualifies.
func GenerateQuiz(text string, numQuestions int) []models.QuizQuestion {
	if numQuestions <= 0 {
		return nil
	}
	var questions []models.QuizQuestion
	for _, sentence := range Sentences(text) {
		if len(questions) >= numQuestions {
			break
		}
		if wordCount(sentence) <= quizMinSentenceTokens {
			continue
		}
		keyword, ok := focusKeyword(sentence)
		if !ok {
			continue
		}
		questions = append(questions, newQuizQuestion(len(questions)+1, keyword))
	}
	return questions
}

// focusKeyword picks the first alphabetic token longer than four characters
// that is not a stopword, preserving its original casing.
func focusKeyword(sentence string) (string, bool) {
	for _, tok := range Words(sentence) {
		tok = strings.TrimFunc(tok, unicode.IsPunct)
		if len([]rune(tok)) <= quizMinKeywordRunes || !isAlphabetic(tok) {
			continue
		}
		if isStopword(strings.ToLower(tok)) {
			continue
		}
		return tok, true
	}
	return "", false
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func newQuizQuestion(number int, keyword string) models.QuizQuestion {
	return models.QuizQuestion{
		Text:          fmt.Sprintf("Question %d: Explain the concept of '%s' in this context", number, keyword),
		Options:       append([]string(nil), quizOptions...),
		CorrectAnswer: quizOptions[0],
		Points:        1,
		Explanation:   fmt.Sprintf("The concept '%s' is central to understanding this content.", keyword),
	}
}
