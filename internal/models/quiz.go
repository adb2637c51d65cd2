package models

import "time"

// Quiz is a persisted set of questions attached to a course.
type Quiz struct {
	ID            string         `json:"id" bson:"_id"`
	CourseID      string         `json:"course_id" bson:"course_id"`
	Title         string         `json:"title" bson:"title"`
	Description   string         `json:"description,omitempty" bson:"description,omitempty"`
	Questions     []QuizQuestion `json:"questions" bson:"questions"`
	PassingScore  int            `json:"passing_score" bson:"passing_score"`
	AttemptsCount int            `json:"attempts_count" bson:"attempts_count"`
	AverageScore  float64        `json:"average_score" bson:"average_score"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" bson:"updated_at"`
}

// QuizCreate is the payload for creating a quiz.
type QuizCreate struct {
	CourseID     string         `json:"course_id" validate:"required"`
	Title        string         `json:"title" validate:"required,min=1,max=200"`
	Description  string         `json:"description"`
	Questions    []QuizQuestion `json:"questions" validate:"required,min=1,dive"`
	PassingScore int            `json:"passing_score" validate:"min=0,max=100"`
}

// QuizSubmission is one user's set of answers, positionally matched to the
// quiz's questions. UserID is optional; the authenticated token subject takes
// precedence when present.
type QuizSubmission struct {
	UserID  string   `json:"user_id" validate:"omitempty"`
	Answers []string `json:"answers" validate:"required,min=1"`
}

// QuizResult is the graded outcome of a submission.
type QuizResult struct {
	QuizID         string    `json:"quiz_id"`
	UserID         string    `json:"user_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalPoints    int       `json:"total_points"`
	EarnedPoints   int       `json:"earned_points"`
	Percentage     float64   `json:"percentage"`
	Passed         bool      `json:"passed"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// QuizAttempt is a persisted record of a graded submission.
type QuizAttempt struct {
	ID          string    `json:"id" bson:"_id"`
	QuizID      string    `json:"quiz_id" bson:"quiz_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Answers     []string  `json:"answers" bson:"answers"`
	Percentage  float64   `json:"percentage" bson:"percentage"`
	Passed      bool      `json:"passed" bson:"passed"`
	SubmittedAt time.Time `json:"submitted_at" bson:"submitted_at"`
}

// Grade scores answers against the quiz's questions. Answers beyond the
// question count are ignored; missing answers count as wrong.
func (q *Quiz) Grade(userID string, answers []string) *QuizResult {
	result := &QuizResult{
		QuizID:         q.ID,
		UserID:         userID,
		TotalQuestions: len(q.Questions),
		SubmittedAt:    time.Now().UTC(),
	}
	for i, question := range q.Questions {
		result.TotalPoints += question.Points
		if i < len(answers) && answers[i] == question.CorrectAnswer {
			result.CorrectAnswers++
			result.EarnedPoints += question.Points
		}
	}
	if result.TotalPoints > 0 {
		result.Percentage = float64(result.EarnedPoints) / float64(result.TotalPoints) * 100
	}
	result.Passed = result.Percentage >= float64(q.PassingScore)
	return result
}
