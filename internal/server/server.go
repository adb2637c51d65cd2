// Package server implements the content service HTTP API: courses, lessons,
// quizzes, transformation, upload, and search.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/microlearning/microlearn/internal/auth"
	"github.com/microlearning/microlearn/internal/config"
	"github.com/microlearning/microlearn/internal/events"
	"github.com/microlearning/microlearn/internal/extract"
	"github.com/microlearning/microlearn/internal/models"
	"github.com/microlearning/microlearn/internal/search"
	"github.com/microlearning/microlearn/internal/storage"
	"github.com/microlearning/microlearn/internal/transform"
)

// Server is the content service HTTP server.
type Server struct {
	store     storage.Storage
	index     *search.LessonIndex
	publisher events.Publisher
	extractor *extract.Extractor
	issuer    *auth.TokenIssuer
	validate  *validator.Validate
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a content server with the given dependencies.
func NewServer(store storage.Storage, index *search.LessonIndex, publisher events.Publisher,
	issuer *auth.TokenIssuer, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		store:     store,
		index:     index,
		publisher: publisher,
		extractor: extract.NewExtractor(),
		issuer:    issuer,
		validate:  validator.New(),
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router for the content service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Get("/courses", s.handleListCourses)
		r.Get("/courses/{id}", s.handleGetCourse)
		r.Get("/lessons", s.handleListLessons)
		r.Get("/lessons/{id}", s.handleGetLesson)
		r.Get("/quizzes", s.handleListQuizzes)
		r.Get("/quizzes/{id}", s.handleGetQuiz)
		r.Get("/search", s.handleSearch)

		r.Post("/transform", s.handleTransform)
		r.Post("/transform/quiz", s.handleTransformQuiz)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.issuer))
			r.Post("/quizzes/{id}/submit", s.handleSubmitQuiz)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleTeacher, models.RoleAdmin))
				r.Post("/courses", s.handleCreateCourse)
				r.Patch("/courses/{id}", s.handleUpdateCourse)
				r.Delete("/courses/{id}", s.handleDeleteCourse)
				r.Post("/lessons", s.handleCreateLesson)
				r.Delete("/lessons/{id}", s.handleDeleteLesson)
				r.Post("/quizzes", s.handleCreateQuiz)
				r.Delete("/quizzes/{id}", s.handleDeleteQuiz)
				r.Post("/upload/course", s.handleUploadCourse)
			})
		})
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting content server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":  "ok",
		"storage": s.config.Storage.Driver,
	}
	if err := s.store.Ping(r.Context()); err != nil {
		health["status"] = "degraded"
		health["storage_error"] = err.Error()
		s.respondJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	s.respondJSON(w, http.StatusOK, health)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courses, err := s.store.CountCourses(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	lessons, err := s.store.CountLessons(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	quizzes, err := s.store.CountQuizzes(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	indexed, err := s.index.DocCount()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"courses":         courses,
		"lessons":         lessons,
		"quizzes":         quizzes,
		"indexed_lessons": indexed,
		"storage":         s.config.Storage.Driver,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondStorageError maps storage errors to HTTP statuses: missing records
// give 404, everything else 500.
func (s *Server) respondStorageError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, what+" not found")
		return
	}
	s.logger.Error("storage error", zap.String("what", what), zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, "storage error")
}

// respondTransformError maps core transformation errors: invalid input gives
// 400 with the reason, everything else 500.
func (s *Server) respondTransformError(w http.ResponseWriter, err error) {
	var invalid *transform.InvalidInputError
	if errors.As(err, &invalid) {
		s.respondError(w, http.StatusBadRequest, invalid.Reason)
		return
	}
	s.logger.Error("transform error", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, "transformation failed")
}

// publish sends a domain event, logging failures without failing the request.
func (s *Server) publish(ctx context.Context, topic string, event interface{}) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
