package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/microlearning/microlearn/internal/auth"
	"github.com/microlearning/microlearn/internal/models"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, ErrExists) {
			s.respondError(w, http.StatusConflict, "username or email already registered")
			return
		}
		s.logger.Error("create user failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	s.logger.Info("user registered", zap.String("id", user.ID), zap.String("role", user.Role))
	s.respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if !user.IsActive {
		s.respondError(w, http.StatusForbidden, "account disabled")
		return
	}

	token, err := s.issuer.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		s.logger.Error("token issuance failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	s.respondJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.issuer.TTL().Seconds()),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	user, err := s.store.GetUser(r.Context(), claims.Subject)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "user not found")
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "user not found")
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}
	users, err := s.store.ListUsers(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	s.respondJSON(w, http.StatusOK, users)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
