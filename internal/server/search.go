package server

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/microlearning/microlearn/internal/models"
	"github.com/microlearning/microlearn/internal/storage"
	"github.com/microlearning/microlearn/pkg/utils"
)

const snippetRunes = 200

// searchHit pairs an indexed lesson with its relevance score and a short
// content preview.
type searchHit struct {
	Lesson  *models.Lesson `json:"lesson"`
	Score   float64        `json:"score"`
	Snippet string         `json:"snippet"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = s.config.Search.DefaultLimit
	}
	if limit > s.config.Search.MaxLimit {
		limit = s.config.Search.MaxLimit
	}

	hits, err := s.index.Search(r.Context(), query, q.Get("course_id"), limit)
	if err != nil {
		s.logger.Error("lesson search failed", zap.String("query", query), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "search failed")
		return
	}

	results := make([]searchHit, 0, len(hits))
	for _, hit := range hits {
		lesson, err := s.store.GetLesson(r.Context(), hit.LessonID)
		if err != nil {
			// Index can lag behind deletes; skip hits with no backing record.
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			s.respondStorageError(w, err, "lesson")
			return
		}
		results = append(results, searchHit{
			Lesson:  lesson,
			Score:   hit.Score,
			Snippet: utils.Truncate(lesson.Content, snippetRunes),
		})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"total":   len(results),
		"results": results,
	})
}
