package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/microlearning/microlearn/internal/models"
)

// Tunable constants of the segmentation pass.
const (
	// WordsPerMinute converts word counts to reading durations.
	WordsPerMinute = 200

	// MinParagraphWords is the threshold below which a paragraph is merged
	// into its neighbor instead of standing alone.
	MinParagraphWords = 50

	// MinTargetMinutes and MaxTargetMinutes bound the requested lesson
	// duration.
	MinTargetMinutes = 1
	MaxTargetMinutes = 30

	// summaryWordLimit marks a single-lesson result as a summary when the
	// whole document fits under it.
	summaryWordLimit = 500

	lessonKeywordCount = 5
	titleMaxRunes      = 80
)

// Segment splits text into micro-lessons sized to targetMinutes of reading.
// Paragraph boundaries are respected: a paragraph is never divided between
// lessons unless the entire document is one paragraph over budget, in which
// case it is split at sentence boundaries.
func Segment(text string, targetMinutes int) (*models.TransformResult, error) {
	if targetMinutes < MinTargetMinutes || targetMinutes > MaxTargetMinutes {
		return nil, invalidInputf("target duration %d minutes out of range [%d, %d]",
			targetMinutes, MinTargetMinutes, MaxTargetMinutes)
	}
	cleaned := CleanText(text)
	if err := CheckMinLength(cleaned, MinDirectChars); err != nil {
		return nil, err
	}

	targetWords := targetMinutes * WordsPerMinute
	paragraphs := mergeShortParagraphs(splitParagraphs(cleaned))
	if len(paragraphs) == 1 && wordCount(paragraphs[0]) > targetWords {
		paragraphs = splitLongParagraph(paragraphs[0], targetWords)
	}

	var (
		lessons    []models.MicroLesson
		current    []string
		currentLen int
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		lessons = append(lessons, buildLesson(len(lessons)+1, current))
		current = nil
		currentLen = 0
	}
	for _, p := range paragraphs {
		pw := wordCount(p)
		if currentLen+pw > targetWords && len(current) > 0 {
			flush()
		}
		current = append(current, p)
		currentLen += pw
	}
	flush()

	result := &models.TransformResult{
		Lessons:      lessons,
		TotalLessons: len(lessons),
	}
	for _, l := range lessons {
		result.TotalDurationMinutes += l.EstimatedMinutes
		result.TotalWords += l.WordCount
	}
	if len(result.Lessons) == 1 && result.TotalWords < summaryWordLimit {
		result.Lessons[0].IsSummary = true
	}
	return result, nil
}

// splitParagraphs divides cleaned text on blank lines.
func splitParagraphs(cleaned string) []string {
	var out []string
	for _, p := range strings.Split(cleaned, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mergeShortParagraphs folds paragraphs under MinParagraphWords forward into
// the next paragraph. A short run at the end of the document merges backward
// into the last emitted paragraph.
func mergeShortParagraphs(paragraphs []string) []string {
	var (
		out     []string
		pending []string
	)
	for _, p := range paragraphs {
		if wordCount(p) < MinParagraphWords {
			pending = append(pending, p)
			continue
		}
		if len(pending) > 0 {
			p = strings.Join(append(pending, p), " ")
			pending = nil
		}
		out = append(out, p)
	}
	if len(pending) > 0 {
		tail := strings.Join(pending, " ")
		if len(out) > 0 {
			out[len(out)-1] = out[len(out)-1] + " " + tail
		} else {
			out = append(out, tail)
		}
	}
	return out
}

// splitLongParagraph breaks one oversized paragraph into budget-sized pieces
// at sentence boundaries. A single sentence longer than the budget stays
// whole.
func splitLongParagraph(paragraph string, targetWords int) []string {
	sentences := Sentences(paragraph)
	if len(sentences) <= 1 {
		return []string{paragraph}
	}
	var (
		out        []string
		current    []string
		currentLen int
	)
	for _, s := range sentences {
		sw := wordCount(s)
		if currentLen+sw > targetWords && len(current) > 0 {
			out = append(out, strings.Join(current, " "))
			current = nil
			currentLen = 0
		}
		current = append(current, s)
		currentLen += sw
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, " "))
	}
	return out
}

func buildLesson(order int, paragraphs []string) models.MicroLesson {
	content := strings.Join(paragraphs, "\n\n")
	words := wordCount(content)
	minutes := int(math.Round(float64(words) / WordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return models.MicroLesson{
		Order:            order,
		Title:            lessonTitle(order, content),
		Content:          content,
		EstimatedMinutes: minutes,
		WordCount:        words,
		Keywords:         ExtractKeywords(content, lessonKeywordCount),
	}
}

// lessonTitle derives a title from the first substantial sentence of the
// lesson, falling back to a positional name when the content has no usable
// sentence.
func lessonTitle(order int, content string) string {
	sentences := Sentences(content)
	if len(sentences) == 0 {
		return fmt.Sprintf("Lesson %d", order)
	}
	chosen := sentences[0]
	for _, s := range sentences {
		if wordCount(s) > 5 {
			chosen = s
			break
		}
	}
	return fmt.Sprintf("Lesson %d: %s", order, truncateTitle(chosen))
}

func truncateTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= titleMaxRunes {
		return s
	}
	return string(runes[:titleMaxRunes-3]) + "..."
}
