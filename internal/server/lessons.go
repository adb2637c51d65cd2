package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/microlearning/microlearn/internal/events"
	"github.com/microlearning/microlearn/internal/models"
)

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	var req models.LessonCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetCourse(r.Context(), req.CourseID); err != nil {
		s.respondStorageError(w, err, "course")
		return
	}

	now := time.Now().UTC()
	lesson := &models.Lesson{
		ID:              uuid.New().String(),
		CourseID:        req.CourseID,
		Title:           req.Title,
		Content:         req.Content,
		DurationMinutes: req.DurationMinutes,
		Order:           req.Order,
		Tags:            req.Tags,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if lesson.Tags == nil {
		lesson.Tags = []string{}
	}
	if err := s.store.CreateLesson(r.Context(), lesson); err != nil {
		s.respondStorageError(w, err, "lesson")
		return
	}
	if err := s.index.IndexLesson(r.Context(), lesson); err != nil {
		s.logger.Warn("failed to index lesson", zap.String("id", lesson.ID), zap.Error(err))
	}
	s.publish(r.Context(), events.TopicLessonCreated, lesson)
	s.respondJSON(w, http.StatusCreated, lesson)
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lesson, err := s.store.GetLesson(r.Context(), id)
	if err != nil {
		s.respondStorageError(w, err, "lesson")
		return
	}
	if r.URL.Query().Get("view") != "false" {
		if err := s.store.IncrementLessonViews(r.Context(), id); err != nil {
			s.logger.Warn("failed to increment lesson views", zap.String("id", id), zap.Error(err))
		} else {
			lesson.Views++
		}
	}
	s.respondJSON(w, http.StatusOK, lesson)
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("course_id")
	if courseID == "" {
		s.respondError(w, http.StatusBadRequest, "course_id is required")
		return
	}
	lessons, err := s.store.ListLessonsByCourse(r.Context(), courseID)
	if err != nil {
		s.respondStorageError(w, err, "lessons")
		return
	}
	if lessons == nil {
		lessons = []*models.Lesson{}
	}
	s.respondJSON(w, http.StatusOK, lessons)
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteLesson(r.Context(), id); err != nil {
		s.respondStorageError(w, err, "lesson")
		return
	}
	if err := s.index.Delete(r.Context(), id); err != nil {
		s.logger.Warn("failed to remove lesson from index", zap.String("id", id), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
