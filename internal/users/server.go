package users

import (
	"context"
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
)

// Server is the HTTP server for the user service.
type Server struct {
	store    Store
	issuer   *auth.TokenIssuer
	validate *validator.Validate
	config   *config.UserServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a user service server with the given dependencies.
func NewServer(store Store, issuer *auth.TokenIssuer, cfg *config.UserServerConfig, logger *zap.Logger) *Server {
	return &Server{
		store:    store,
		issuer:   issuer,
		validate: validator.New(),
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router for the user service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Post("/api/users/register", s.handleRegister)
	r.Post("/api/users/login", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(s.issuer))
		r.Get("/api/users/me", s.handleMe)
		r.Get("/api/users/{id}", s.handleGetUser)
		r.With(auth.RequireRole("admin")).Get("/api/users", s.handleListUsers)
	})
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting user server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
