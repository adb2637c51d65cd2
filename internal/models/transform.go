// Package models defines core data structures for courses, lessons, quizzes, and users.
package models

// MicroLesson is a bounded-length chunk of source content sized to a target
// reading duration. Lessons are created in one pass over a document and are
// immutable afterward; persistence is the caller's responsibility.
type MicroLesson struct {
	Order            int      `json:"order"`
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	WordCount        int      `json:"word_count"`
	Keywords         []string `json:"keywords"`
	IsSummary        bool     `json:"is_summary,omitempty"`
}

// TransformResult is the output of segmenting a document into micro-lessons.
type TransformResult struct {
	Lessons              []MicroLesson `json:"micro_lessons"`
	TotalLessons         int           `json:"total_lessons"`
	TotalDurationMinutes int           `json:"total_duration_minutes"`
	TotalWords           int           `json:"total_words"`
}

// QuizQuestion is a single multiple-choice question. CorrectAnswer must equal
// one of Options.
type QuizQuestion struct {
	Text          string   `json:"text" validate:"required,min=10"`
	Options       []string `json:"options" validate:"required,min=2,max=5,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Points        int      `json:"points" validate:"min=1,max=10"`
	Explanation   string   `json:"explanation,omitempty"`
}
