package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/microlearning/microlearn/internal/models"
)

// MemoryStorage implements Storage with in-process maps. It backs tests and
// environments without a database; contents are lost on shutdown.
type MemoryStorage struct {
	mu       sync.RWMutex
	courses  map[string]*models.Course
	lessons  map[string]*models.Lesson
	quizzes  map[string]*models.Quiz
	attempts map[string]*models.QuizAttempt
}

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		courses:  make(map[string]*models.Course),
		lessons:  make(map[string]*models.Lesson),
		quizzes:  make(map[string]*models.Quiz),
		attempts: make(map[string]*models.QuizAttempt),
	}
}

// CreateCourse inserts a course.
func (s *MemoryStorage) CreateCourse(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.courses[course.ID]; exists {
		return fmt.Errorf("course %s already exists", course.ID)
	}
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	c := *course
	s.courses[course.ID] = &c
	return nil
}

// GetCourse returns a course by ID.
func (s *MemoryStorage) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	c := *course
	return &c, nil
}

// UpdateCourse updates an existing course.
func (s *MemoryStorage) UpdateCourse(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.courses[course.ID]
	if !ok {
		return fmt.Errorf("course %s: %w", course.ID, ErrNotFound)
	}
	course.CreatedAt = existing.CreatedAt
	course.LessonCount = existing.LessonCount
	course.QuizCount = existing.QuizCount
	course.UpdatedAt = time.Now()
	c := *course
	s.courses[course.ID] = &c
	return nil
}

// DeleteCourse removes a course and its lessons and quizzes.
func (s *MemoryStorage) DeleteCourse(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[id]; !ok {
		return fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	delete(s.courses, id)
	for lid, lesson := range s.lessons {
		if lesson.CourseID == id {
			delete(s.lessons, lid)
		}
	}
	for qid, quiz := range s.quizzes {
		if quiz.CourseID == id {
			delete(s.quizzes, qid)
		}
	}
	return nil
}

// ListCourses returns courses matching the filter, newest first.
func (s *MemoryStorage) ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var courses []*models.Course
	for _, course := range s.courses {
		if filter.TeacherID != "" && course.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Subject != "" && course.Subject != filter.Subject {
			continue
		}
		c := *course
		courses = append(courses, &c)
	}
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
	return paginate(courses, filter.Offset, filter.Limit), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// CreateLesson inserts a lesson and bumps the course's lesson count.
func (s *MemoryStorage) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return s.BatchCreateLessons(ctx, []*models.Lesson{lesson})
}

// BatchCreateLessons inserts lessons and adjusts course lesson counts.
func (s *MemoryStorage) BatchCreateLessons(ctx context.Context, lessons []*models.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, lesson := range lessons {
		lesson.CreatedAt = now
		lesson.UpdatedAt = now
		l := *lesson
		s.lessons[lesson.ID] = &l
		if course, ok := s.courses[lesson.CourseID]; ok {
			course.LessonCount++
			course.UpdatedAt = now
		}
	}
	return nil
}

// GetLesson returns a lesson by ID.
func (s *MemoryStorage) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lesson, ok := s.lessons[id]
	if !ok {
		return nil, fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	l := *lesson
	return &l, nil
}

// ListLessonsByCourse returns all lessons for a course in lesson order.
func (s *MemoryStorage) ListLessonsByCourse(ctx context.Context, courseID string) ([]*models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var lessons []*models.Lesson
	for _, lesson := range s.lessons {
		if lesson.CourseID == courseID {
			l := *lesson
			lessons = append(lessons, &l)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].Order < lessons[j].Order
	})
	return lessons, nil
}

// DeleteLesson removes a lesson and decrements its course's lesson count.
func (s *MemoryStorage) DeleteLesson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lesson, ok := s.lessons[id]
	if !ok {
		return fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	delete(s.lessons, id)
	if course, ok := s.courses[lesson.CourseID]; ok && course.LessonCount > 0 {
		course.LessonCount--
	}
	return nil
}

// IncrementLessonViews bumps the view counter for a lesson.
func (s *MemoryStorage) IncrementLessonViews(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lesson, ok := s.lessons[id]
	if !ok {
		return fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	lesson.Views++
	return nil
}

// CreateQuiz inserts a quiz and bumps the course's quiz count.
func (s *MemoryStorage) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	q := *quiz
	s.quizzes[quiz.ID] = &q
	if course, ok := s.courses[quiz.CourseID]; ok {
		course.QuizCount++
		course.UpdatedAt = now
	}
	return nil
}

// GetQuiz returns a quiz by ID.
func (s *MemoryStorage) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	q := *quiz
	return &q, nil
}

// ListQuizzesByCourse returns all quizzes for a course, newest first.
func (s *MemoryStorage) ListQuizzesByCourse(ctx context.Context, courseID string) ([]*models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var quizzes []*models.Quiz
	for _, quiz := range s.quizzes {
		if quiz.CourseID == courseID {
			q := *quiz
			quizzes = append(quizzes, &q)
		}
	}
	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
	})
	return quizzes, nil
}

// DeleteQuiz removes a quiz and decrements its course's quiz count.
func (s *MemoryStorage) DeleteQuiz(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	delete(s.quizzes, id)
	if course, ok := s.courses[quiz.CourseID]; ok && course.QuizCount > 0 {
		course.QuizCount--
	}
	return nil
}

// RecordQuizAttempt persists an attempt and folds it into the quiz's running
// attempt count and average score.
func (s *MemoryStorage) RecordQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[attempt.QuizID]
	if !ok {
		return fmt.Errorf("quiz %s: %w", attempt.QuizID, ErrNotFound)
	}
	a := *attempt
	s.attempts[attempt.ID] = &a
	count := float64(quiz.AttemptsCount)
	quiz.AverageScore = (quiz.AverageScore*count + attempt.Percentage) / (count + 1)
	quiz.AttemptsCount++
	return nil
}

// CountCourses returns the total number of courses.
func (s *MemoryStorage) CountCourses(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.courses)), nil
}

// CountLessons returns the total number of lessons.
func (s *MemoryStorage) CountLessons(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.lessons)), nil
}

// CountQuizzes returns the total number of quizzes.
func (s *MemoryStorage) CountQuizzes(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.quizzes)), nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStorage) Close() error {
	return nil
}
