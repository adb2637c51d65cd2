package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/microlearning/microlearn/internal/models"
)

func openBackends(t *testing.T) map[string]Storage {
	t.Helper()
	sqlite, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Storage{
		"sqlite": sqlite,
		"memory": NewMemoryStorage(),
	}
}

func TestStorage_CourseCRUD(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			course := &models.Course{
				ID:        "c1",
				Title:     "Intro to Go",
				TeacherID: "t1",
				Subject:   "programming",
				Tags:      []string{"go", "basics"},
				Status:    models.CourseDraft,
			}
			if err := store.CreateCourse(ctx, course); err != nil {
				t.Fatal(err)
			}
			if course.CreatedAt.IsZero() {
				t.Error("CreatedAt should be set")
			}

			got, err := store.GetCourse(ctx, "c1")
			if err != nil {
				t.Fatal(err)
			}
			if got.Title != "Intro to Go" || got.Subject != "programming" {
				t.Errorf("got %+v", got)
			}
			if len(got.Tags) != 2 {
				t.Errorf("tags: got %v", got.Tags)
			}

			got.Title = "Intro to Go, revised"
			got.Status = models.CoursePublished
			if err := store.UpdateCourse(ctx, got); err != nil {
				t.Fatal(err)
			}
			got, _ = store.GetCourse(ctx, "c1")
			if got.Title != "Intro to Go, revised" || got.Status != models.CoursePublished {
				t.Errorf("after update: %+v", got)
			}

			list, err := store.ListCourses(ctx, models.CourseFilter{TeacherID: "t1", Limit: 10})
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 1 {
				t.Errorf("expected 1 course, got %d", len(list))
			}
			list, _ = store.ListCourses(ctx, models.CourseFilter{TeacherID: "other", Limit: 10})
			if len(list) != 0 {
				t.Errorf("expected no courses for other teacher, got %d", len(list))
			}

			if err := store.DeleteCourse(ctx, "c1"); err != nil {
				t.Fatal(err)
			}
			if _, err := store.GetCourse(ctx, "c1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestStorage_LessonsAndCounts(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			course := &models.Course{ID: "c1", Title: "T", TeacherID: "t1", Subject: "s", Status: models.CourseDraft}
			if err := store.CreateCourse(ctx, course); err != nil {
				t.Fatal(err)
			}

			lessons := []*models.Lesson{
				{ID: "l2", CourseID: "c1", Title: "Second", Content: "b", DurationMinutes: 5, Order: 2},
				{ID: "l1", CourseID: "c1", Title: "First", Content: "a", DurationMinutes: 5, Order: 1},
			}
			if err := store.BatchCreateLessons(ctx, lessons); err != nil {
				t.Fatal(err)
			}

			list, err := store.ListLessonsByCourse(ctx, "c1")
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 2 || list[0].ID != "l1" || list[1].ID != "l2" {
				t.Errorf("lessons out of order: %+v", list)
			}

			got, _ := store.GetCourse(ctx, "c1")
			if got.LessonCount != 2 {
				t.Errorf("lesson_count = %d, want 2", got.LessonCount)
			}

			if err := store.IncrementLessonViews(ctx, "l1"); err != nil {
				t.Fatal(err)
			}
			lesson, _ := store.GetLesson(ctx, "l1")
			if lesson.Views != 1 {
				t.Errorf("views = %d, want 1", lesson.Views)
			}

			if err := store.DeleteLesson(ctx, "l2"); err != nil {
				t.Fatal(err)
			}
			got, _ = store.GetCourse(ctx, "c1")
			if got.LessonCount != 1 {
				t.Errorf("lesson_count after delete = %d, want 1", got.LessonCount)
			}

			n, err := store.CountLessons(ctx)
			if err != nil || n != 1 {
				t.Errorf("CountLessons: %v, %d", err, n)
			}
			n, _ = store.CountCourses(ctx)
			if n != 1 {
				t.Errorf("CountCourses = %d, want 1", n)
			}
		})
	}
}

func TestStorage_QuizAttempts(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			course := &models.Course{ID: "c1", Title: "T", TeacherID: "t1", Subject: "s", Status: models.CourseDraft}
			if err := store.CreateCourse(ctx, course); err != nil {
				t.Fatal(err)
			}
			quiz := &models.Quiz{
				ID:       "q1",
				CourseID: "c1",
				Title:    "Checkpoint",
				Questions: []models.QuizQuestion{
					{Text: "Question 1: what is it", Options: []string{"a", "b"}, CorrectAnswer: "a", Points: 1},
				},
				PassingScore: 60,
			}
			if err := store.CreateQuiz(ctx, quiz); err != nil {
				t.Fatal(err)
			}

			got, err := store.GetQuiz(ctx, "q1")
			if err != nil {
				t.Fatal(err)
			}
			if len(got.Questions) != 1 || got.Questions[0].CorrectAnswer != "a" {
				t.Errorf("questions round-trip: %+v", got.Questions)
			}

			course, _ = store.GetCourse(ctx, "c1")
			if course.QuizCount != 1 {
				t.Errorf("quiz_count = %d, want 1", course.QuizCount)
			}

			attempts := []*models.QuizAttempt{
				{ID: "a1", QuizID: "q1", UserID: "u1", Answers: []string{"a"}, Percentage: 100, Passed: true},
				{ID: "a2", QuizID: "q1", UserID: "u2", Answers: []string{"b"}, Percentage: 0, Passed: false},
			}
			for _, a := range attempts {
				if err := store.RecordQuizAttempt(ctx, a); err != nil {
					t.Fatal(err)
				}
			}
			got, _ = store.GetQuiz(ctx, "q1")
			if got.AttemptsCount != 2 {
				t.Errorf("attempts_count = %d, want 2", got.AttemptsCount)
			}
			if got.AverageScore != 50 {
				t.Errorf("average_score = %f, want 50", got.AverageScore)
			}

			if err := store.DeleteQuiz(ctx, "q1"); err != nil {
				t.Fatal(err)
			}
			if _, err := store.GetQuiz(ctx, "q1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestStorage_NotFound(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.GetCourse(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetCourse: %v", err)
			}
			if _, err := store.GetLesson(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetLesson: %v", err)
			}
			if err := store.IncrementLessonViews(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("IncrementLessonViews: %v", err)
			}
			if err := store.DeleteCourse(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("DeleteCourse: %v", err)
			}
		})
	}
}

func TestStorage_ListCoursesNegativeOffset(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			course := &models.Course{
				ID:        "c-neg",
				Title:     "Paging",
				TeacherID: "t1",
				Subject:   "programming",
				Status:    models.CourseDraft,
			}
			if err := store.CreateCourse(ctx, course); err != nil {
				t.Fatal(err)
			}
			list, err := store.ListCourses(ctx, models.CourseFilter{Offset: -1, Limit: 10})
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 1 {
				t.Errorf("expected 1 course with negative offset, got %d", len(list))
			}
		})
	}
}
