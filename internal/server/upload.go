package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/microlearning/microlearn/internal/auth"
	"github.com/microlearning/microlearn/internal/events"
	"github.com/microlearning/microlearn/internal/models"
	"github.com/microlearning/microlearn/internal/storage"
	"github.com/microlearning/microlearn/internal/transform"
)

// uploadResult is the response for a course material upload.
type uploadResult struct {
	Course        *models.Course `json:"course"`
	LessonsAdded  int            `json:"lessons_added"`
	TotalDuration int            `json:"total_duration_minutes"`
	TotalWords    int            `json:"total_words"`
}

func (s *Server) handleUploadCourse(w http.ResponseWriter, r *http.Request) {
	maxSize := s.config.Upload.MaxSizeBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !s.allowedExtension(ext) {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type %q", ext))
		return
	}
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	text, err := s.extractor.ExtractBytes(content, ext)
	if err != nil {
		s.logger.Warn("text extraction failed", zap.String("file", header.Filename), zap.Error(err))
		s.respondError(w, http.StatusBadRequest, "failed to extract text from file")
		return
	}
	if strings.TrimSpace(text) == "" {
		s.respondError(w, http.StatusBadRequest, "no text could be extracted")
		return
	}
	if err := transform.CheckMinLength(transform.CleanText(text), transform.MinUploadChars); err != nil {
		s.respondTransformError(w, err)
		return
	}

	duration := s.config.Transform.DefaultDurationMinutes
	if v := r.FormValue("target_duration"); v != "" {
		duration, err = strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid target_duration")
			return
		}
	}
	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	teacherID := ""
	if claims := auth.ClaimsFrom(r.Context()); claims != nil {
		teacherID = claims.Subject
	}

	result, err := s.ingestText(r.Context(), ingestParams{
		Text:      text,
		Title:     title,
		Subject:   r.FormValue("subject"),
		CourseID:  r.FormValue("course_id"),
		TeacherID: teacherID,
		Duration:  duration,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "course not found")
			return
		}
		s.respondTransformError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) allowedExtension(ext string) bool {
	for _, allowed := range s.config.Upload.Extensions {
		if strings.EqualFold(strings.TrimPrefix(allowed, "."), strings.TrimPrefix(ext, ".")) {
			return true
		}
	}
	return false
}

// ingestParams describes one document to turn into course lessons.
type ingestParams struct {
	Text      string
	Title     string
	Subject   string
	CourseID  string // when set, lessons are appended to this course
	TeacherID string
	Duration  int
}

// ingestText segments a document and persists the result: either a new course
// with its lessons, or additional lessons appended to an existing course.
// Lessons are indexed for search and lesson.created events are published.
func (s *Server) ingestText(ctx context.Context, p ingestParams) (*uploadResult, error) {
	result, err := transform.Segment(p.Text, p.Duration)
	if err != nil {
		return nil, err
	}
	keywords := transform.ExtractKeywords(p.Text, transform.DocumentKeywordCount)

	var course *models.Course
	orderBase := 0
	now := time.Now().UTC()
	if p.CourseID != "" {
		course, err = s.store.GetCourse(ctx, p.CourseID)
		if err != nil {
			return nil, err
		}
		orderBase = course.LessonCount
	} else {
		subject := p.Subject
		if subject == "" {
			subject = "general"
		}
		course = &models.Course{
			ID:        uuid.New().String(),
			Title:     p.Title,
			TeacherID: p.TeacherID,
			Subject:   subject,
			Tags:      keywords,
			Status:    models.CourseDraft,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.CreateCourse(ctx, course); err != nil {
			return nil, err
		}
		s.publish(ctx, events.TopicCourseCreated, course)
	}

	lessons := make([]*models.Lesson, len(result.Lessons))
	for i, ml := range result.Lessons {
		lessons[i] = &models.Lesson{
			ID:              uuid.New().String(),
			CourseID:        course.ID,
			Title:           ml.Title,
			Content:         ml.Content,
			DurationMinutes: ml.EstimatedMinutes,
			Order:           orderBase + ml.Order,
			Tags:            ml.Keywords,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}
	if err := s.store.BatchCreateLessons(ctx, lessons); err != nil {
		return nil, err
	}
	for _, lesson := range lessons {
		if err := s.index.IndexLesson(ctx, lesson); err != nil {
			s.logger.Warn("failed to index lesson", zap.String("id", lesson.ID), zap.Error(err))
		}
		s.publish(ctx, events.TopicLessonCreated, lesson)
	}
	course.LessonCount += len(lessons)

	s.logger.Info("document ingested",
		zap.String("course_id", course.ID),
		zap.Int("lessons", len(lessons)),
		zap.Int("words", result.TotalWords))
	return &uploadResult{
		Course:        course,
		LessonsAdded:  len(lessons),
		TotalDuration: result.TotalDurationMinutes,
		TotalWords:    result.TotalWords,
	}, nil
}

// IngestFile extracts, transforms, and stores a file dropped into a watched
// ingest directory. Used as the watcher callback; errors are returned for the
// caller to log.
func (s *Server) IngestFile(ctx context.Context, path string) error {
	text, err := s.extractor.Extract(path)
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("extract %s: no text could be extracted", path)
	}
	if err := transform.CheckMinLength(transform.CleanText(text), transform.MinUploadChars); err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	_, err = s.ingestText(ctx, ingestParams{
		Text:     text,
		Title:    title,
		Duration: s.config.Transform.DefaultDurationMinutes,
	})
	if err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	return nil
}
