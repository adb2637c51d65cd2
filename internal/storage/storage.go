// Package storage defines the persistence interface for courses, lessons, and quizzes.
package storage

import (
	"context"
	"errors"

	"github.com/microlearning/microlearn/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines course, lesson, and quiz persistence operations. The
// backend is selected once at startup; callers never branch on the driver.
type Storage interface {
	// Course operations
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id string) error
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error)

	// Lesson operations
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	BatchCreateLessons(ctx context.Context, lessons []*models.Lesson) error
	GetLesson(ctx context.Context, id string) (*models.Lesson, error)
	ListLessonsByCourse(ctx context.Context, courseID string) ([]*models.Lesson, error)
	DeleteLesson(ctx context.Context, id string) error
	IncrementLessonViews(ctx context.Context, id string) error

	// Quiz operations
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
	ListQuizzesByCourse(ctx context.Context, courseID string) ([]*models.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	// RecordQuizAttempt persists the attempt and folds its percentage into
	// the quiz's attempts_count and average_score.
	RecordQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error

	// Stats
	CountCourses(ctx context.Context) (int64, error)
	CountLessons(ctx context.Context) (int64, error)
	CountQuizzes(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
