package server

import (
	"encoding/json"
	"net/http"

	"github.com/microlearning/microlearn/internal/models"
	"github.com/microlearning/microlearn/internal/transform"
)

// transformRequest is the payload for direct text transformation.
type transformRequest struct {
	Content        string `json:"content" validate:"required"`
	TargetDuration int    `json:"target_duration" validate:"omitempty,min=1,max=30"`
}

// transformResponse bundles the segmentation result with document-level
// keywords and a short summary.
type transformResponse struct {
	*models.TransformResult
	Keywords []string `json:"keywords"`
	Summary  string   `json:"summary"`
}

// quizGenerateRequest is the payload for heuristic quiz generation.
type quizGenerateRequest struct {
	Content      string `json:"content" validate:"required"`
	NumQuestions int    `json:"num_questions" validate:"omitempty,min=1,max=20"`
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	duration := req.TargetDuration
	if duration == 0 {
		duration = s.config.Transform.DefaultDurationMinutes
	}

	result, err := transform.Segment(req.Content, duration)
	if err != nil {
		s.respondTransformError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, transformResponse{
		TransformResult: result,
		Keywords:        transform.ExtractKeywords(req.Content, transform.DocumentKeywordCount),
		Summary:         transform.Summarize(req.Content, transform.DefaultSummarySentences),
	})
}

func (s *Server) handleTransformQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := req.NumQuestions
	if n == 0 {
		n = s.config.Transform.DefaultQuizQuestions
	}

	questions := transform.GenerateQuiz(req.Content, n)
	if questions == nil {
		questions = []models.QuizQuestion{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"questions": questions,
		"count":     len(questions),
	})
}
