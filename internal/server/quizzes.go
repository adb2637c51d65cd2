package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/microlearning/microlearn/internal/auth"
	"github.com/microlearning/microlearn/internal/events"
	"github.com/microlearning/microlearn/internal/models"
)

const defaultPassingScore = 70

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.QuizCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i, question := range req.Questions {
		if !containsOption(question.Options, question.CorrectAnswer) {
			s.respondError(w, http.StatusBadRequest,
				fmt.Sprintf("question %d: correct_answer must be one of the options", i+1))
			return
		}
	}
	if _, err := s.store.GetCourse(r.Context(), req.CourseID); err != nil {
		s.respondStorageError(w, err, "course")
		return
	}

	passing := req.PassingScore
	if passing == 0 {
		passing = defaultPassingScore
	}
	now := time.Now().UTC()
	quiz := &models.Quiz{
		ID:           uuid.New().String(),
		CourseID:     req.CourseID,
		Title:        req.Title,
		Description:  req.Description,
		Questions:    req.Questions,
		PassingScore: passing,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateQuiz(r.Context(), quiz); err != nil {
		s.respondStorageError(w, err, "quiz")
		return
	}
	s.logger.Info("quiz created", zap.String("id", quiz.ID), zap.Int("questions", len(quiz.Questions)))
	s.respondJSON(w, http.StatusCreated, quiz)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := s.store.GetQuiz(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err, "quiz")
		return
	}
	s.respondJSON(w, http.StatusOK, quiz)
}

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("course_id")
	if courseID == "" {
		s.respondError(w, http.StatusBadRequest, "course_id is required")
		return
	}
	quizzes, err := s.store.ListQuizzesByCourse(r.Context(), courseID)
	if err != nil {
		s.respondStorageError(w, err, "quizzes")
		return
	}
	if quizzes == nil {
		quizzes = []*models.Quiz{}
	}
	s.respondJSON(w, http.StatusOK, quizzes)
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteQuiz(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondStorageError(w, err, "quiz")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var sub models.QuizSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&sub); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	quiz, err := s.store.GetQuiz(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err, "quiz")
		return
	}

	userID := sub.UserID
	if claims := auth.ClaimsFrom(r.Context()); claims != nil {
		userID = claims.Subject
	}
	result := quiz.Grade(userID, sub.Answers)

	attempt := &models.QuizAttempt{
		ID:          uuid.New().String(),
		QuizID:      quiz.ID,
		UserID:      userID,
		Answers:     sub.Answers,
		Percentage:  result.Percentage,
		Passed:      result.Passed,
		SubmittedAt: result.SubmittedAt,
	}
	if err := s.store.RecordQuizAttempt(r.Context(), attempt); err != nil {
		s.respondStorageError(w, err, "quiz attempt")
		return
	}
	s.publish(r.Context(), events.TopicQuizCompleted, result)
	s.respondJSON(w, http.StatusOK, result)
}

func containsOption(options []string, answer string) bool {
	for _, option := range options {
		if option == answer {
			return true
		}
	}
	return false
}
