// Package search provides the Bleve-backed full-text index over lessons.
package search

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/microlearning/microlearn/internal/models"
)

// LessonHit is one search result.
type LessonHit struct {
	LessonID string  `json:"lesson_id"`
	Score    float64 `json:"score"`
}

// lessonDoc is the shape indexed per lesson.
type lessonDoc struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Tags     string `json:"tags"`
}

// LessonIndex indexes lesson titles, content, and tags for full-text search.
type LessonIndex struct {
	index bleve.Index
}

// NewLessonIndex creates or opens a Bleve index at path. An existing index is
// reused; remove the directory to force a rebuild after mapping changes.
func NewLessonIndex(path string) (*LessonIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match
	// exact words across mixed English and French content.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("tags", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("course_id", keywordFieldMapping)
	im.AddDocumentMapping("lesson", docMapping)
	im.DefaultType = "lesson"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open lesson index: %w", openErr)
		}
		return &LessonIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson index: %w", err)
	}
	return &LessonIndex{index: index}, nil
}

// IndexLesson adds or replaces a lesson in the index.
func (l *LessonIndex) IndexLesson(ctx context.Context, lesson *models.Lesson) error {
	return l.index.Index(lesson.ID, lessonDoc{
		CourseID: lesson.CourseID,
		Title:    lesson.Title,
		Content:  lesson.Content,
		Tags:     strings.Join(lesson.Tags, " "),
	})
}

// Delete removes a lesson from the index.
func (l *LessonIndex) Delete(ctx context.Context, lessonID string) error {
	return l.index.Delete(lessonID)
}

// Search runs a match query over title, content, and tags. When courseID is
// non-empty, results are restricted to that course.
func (l *LessonIndex) Search(ctx context.Context, query, courseID string, limit int) ([]*LessonHit, error) {
	match := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(match)
	if courseID != "" {
		courseQuery := bleve.NewTermQuery(courseID)
		courseQuery.SetField("course_id")
		req = bleve.NewSearchRequest(bleve.NewConjunctionQuery(match, courseQuery))
	}
	req.Size = limit

	results, err := l.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lesson search failed: %w", err)
	}
	out := make([]*LessonHit, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &LessonHit{LessonID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// DocCount returns the number of indexed lessons.
func (l *LessonIndex) DocCount() (uint64, error) {
	return l.index.DocCount()
}

// Close closes the index.
func (l *LessonIndex) Close() error {
	return l.index.Close()
}
