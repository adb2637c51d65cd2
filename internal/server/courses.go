package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/microlearning/microlearn/internal/events"
	"github.com/microlearning/microlearn/internal/models"
)

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CourseCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := req.Status
	if status == "" {
		status = models.CourseDraft
	}
	if !status.Valid() {
		s.respondError(w, http.StatusBadRequest, "invalid course status")
		return
	}

	now := time.Now().UTC()
	course := &models.Course{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   req.TeacherID,
		Subject:     req.Subject,
		Tags:        req.Tags,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if course.Tags == nil {
		course.Tags = []string{}
	}
	if err := s.store.CreateCourse(r.Context(), course); err != nil {
		s.respondStorageError(w, err, "course")
		return
	}
	s.logger.Info("course created", zap.String("id", course.ID), zap.String("title", course.Title))
	s.publish(r.Context(), events.TopicCourseCreated, course)
	s.respondJSON(w, http.StatusCreated, course)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.store.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err, "course")
		return
	}
	s.respondJSON(w, http.StatusOK, course)
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	filter := models.CourseFilter{
		TeacherID: q.Get("teacher_id"),
		Subject:   q.Get("subject"),
		Offset:    offset,
		Limit:     limit,
	}
	courses, err := s.store.ListCourses(r.Context(), filter)
	if err != nil {
		s.respondStorageError(w, err, "courses")
		return
	}
	if courses == nil {
		courses = []*models.Course{}
	}
	s.respondJSON(w, http.StatusOK, courses)
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CourseUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	course, err := s.store.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err, "course")
		return
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			s.respondError(w, http.StatusBadRequest, "invalid course status")
			return
		}
		course.Status = *req.Status
	}
	if req.Tags != nil {
		course.Tags = *req.Tags
	}
	course.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateCourse(r.Context(), course); err != nil {
		s.respondStorageError(w, err, "course")
		return
	}
	s.respondJSON(w, http.StatusOK, course)
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lessons, err := s.store.ListLessonsByCourse(r.Context(), id)
	if err != nil {
		s.respondStorageError(w, err, "course")
		return
	}
	if err := s.store.DeleteCourse(r.Context(), id); err != nil {
		s.respondStorageError(w, err, "course")
		return
	}
	for _, lesson := range lessons {
		if err := s.index.Delete(r.Context(), lesson.ID); err != nil {
			s.logger.Warn("failed to remove lesson from index", zap.String("id", lesson.ID), zap.Error(err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
