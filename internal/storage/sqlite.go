package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/microlearning/microlearn/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		teacher_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		tags TEXT,
		status TEXT NOT NULL,
		lesson_count INTEGER NOT NULL DEFAULT 0,
		quiz_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_courses_teacher ON courses(teacher_id);
	CREATE INDEX IF NOT EXISTS idx_courses_subject ON courses(subject);

	CREATE TABLE IF NOT EXISTS lessons (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		lesson_order INTEGER NOT NULL,
		tags TEXT,
		views INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_lessons_course ON lessons(course_id, lesson_order);

	CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		questions TEXT NOT NULL,
		passing_score INTEGER NOT NULL,
		attempts_count INTEGER NOT NULL DEFAULT 0,
		average_score REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_quizzes_course ON quizzes(course_id);

	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id TEXT PRIMARY KEY,
		quiz_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		answers TEXT NOT NULL,
		percentage REAL NOT NULL,
		passed INTEGER NOT NULL,
		submitted_at TIMESTAMP NOT NULL,
		FOREIGN KEY (quiz_id) REFERENCES quizzes(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_quiz ON quiz_attempts(quiz_id);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateCourse inserts a course.
func (s *SQLiteStorage) CreateCourse(ctx context.Context, course *models.Course) error {
	tagsJSON, err := json.Marshal(course.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO courses (id, title, description, teacher_id, subject, tags, status, lesson_count, quiz_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		course.ID, course.Title, course.Description, course.TeacherID, course.Subject,
		string(tagsJSON), string(course.Status), course.LessonCount, course.QuizCount,
		course.CreatedAt, course.UpdatedAt,
	)
	return err
}

func scanCourse(row interface{ Scan(...interface{}) error }) (*models.Course, error) {
	var course models.Course
	var tagsJSON, status string
	err := row.Scan(&course.ID, &course.Title, &course.Description, &course.TeacherID,
		&course.Subject, &tagsJSON, &status, &course.LessonCount, &course.QuizCount,
		&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return nil, err
	}
	course.Status = models.CourseStatus(status)
	if tagsJSON != "" {
		_ = json.Unmarshal([]byte(tagsJSON), &course.Tags)
	}
	return &course, nil
}

const courseColumns = `id, title, description, teacher_id, subject, tags, status, lesson_count, quiz_count, created_at, updated_at`

// GetCourse returns a course by ID.
func (s *SQLiteStorage) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := scanCourse(s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return course, nil
}

// UpdateCourse updates an existing course.
func (s *SQLiteStorage) UpdateCourse(ctx context.Context, course *models.Course) error {
	tagsJSON, err := json.Marshal(course.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	course.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE courses SET title = ?, description = ?, tags = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		course.Title, course.Description, string(tagsJSON), string(course.Status),
		course.UpdatedAt, course.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("course %s: %w", course.ID, ErrNotFound)
	}
	return nil
}

// DeleteCourse removes a course and its lessons and quizzes.
func (s *SQLiteStorage) DeleteCourse(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE course_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE course_id = ?`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// ListCourses returns courses matching the filter, newest first.
func (s *SQLiteStorage) ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE 1=1`
	var args []interface{}
	if filter.TeacherID != "" {
		query += ` AND teacher_id = ?`
		args = append(args, filter.TeacherID)
	}
	if filter.Subject != "" {
		query += ` AND subject = ?`
		args = append(args, filter.Subject)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// CreateLesson inserts a lesson and bumps the course's lesson count.
func (s *SQLiteStorage) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return s.BatchCreateLessons(ctx, []*models.Lesson{lesson})
}

// BatchCreateLessons inserts lessons in a transaction and adjusts course
// lesson counts once.
func (s *SQLiteStorage) BatchCreateLessons(ctx context.Context, lessons []*models.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lessons (id, course_id, title, content, duration_minutes, lesson_order, tags, views, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	perCourse := make(map[string]int)
	for _, lesson := range lessons {
		tagsJSON, err := json.Marshal(lesson.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}
		lesson.CreatedAt = now
		lesson.UpdatedAt = now
		if _, err := stmt.ExecContext(ctx, lesson.ID, lesson.CourseID, lesson.Title,
			lesson.Content, lesson.DurationMinutes, lesson.Order, string(tagsJSON),
			lesson.Views, lesson.CreatedAt, lesson.UpdatedAt); err != nil {
			return err
		}
		perCourse[lesson.CourseID]++
	}
	for courseID, n := range perCourse {
		if _, err := tx.ExecContext(ctx,
			`UPDATE courses SET lesson_count = lesson_count + ?, updated_at = ? WHERE id = ?`,
			n, now, courseID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const lessonColumns = `id, course_id, title, content, duration_minutes, lesson_order, tags, views, created_at, updated_at`

func scanLesson(row interface{ Scan(...interface{}) error }) (*models.Lesson, error) {
	var lesson models.Lesson
	var tagsJSON string
	err := row.Scan(&lesson.ID, &lesson.CourseID, &lesson.Title, &lesson.Content,
		&lesson.DurationMinutes, &lesson.Order, &tagsJSON, &lesson.Views,
		&lesson.CreatedAt, &lesson.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tagsJSON != "" {
		_ = json.Unmarshal([]byte(tagsJSON), &lesson.Tags)
	}
	return &lesson, nil
}

// GetLesson returns a lesson by ID.
func (s *SQLiteStorage) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := scanLesson(s.db.QueryRowContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// ListLessonsByCourse returns all lessons for a course in lesson order.
func (s *SQLiteStorage) ListLessonsByCourse(ctx context.Context, courseID string) ([]*models.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE course_id = ? ORDER BY lesson_order`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []*models.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

// DeleteLesson removes a lesson and decrements its course's lesson count.
func (s *SQLiteStorage) DeleteLesson(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var courseID string
	err = tx.QueryRowContext(ctx, `SELECT course_id FROM lessons WHERE id = ?`, id).Scan(&courseID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE courses SET lesson_count = lesson_count - 1 WHERE id = ? AND lesson_count > 0`,
		courseID); err != nil {
		return err
	}
	return tx.Commit()
}

// IncrementLessonViews bumps the view counter for a lesson.
func (s *SQLiteStorage) IncrementLessonViews(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE lessons SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateQuiz inserts a quiz and bumps the course's quiz count.
func (s *SQLiteStorage) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	questionsJSON, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	now := time.Now()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quizzes (id, course_id, title, description, questions, passing_score, attempts_count, average_score, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quiz.ID, quiz.CourseID, quiz.Title, quiz.Description, string(questionsJSON),
		quiz.PassingScore, quiz.AttemptsCount, quiz.AverageScore, quiz.CreatedAt, quiz.UpdatedAt,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE courses SET quiz_count = quiz_count + 1, updated_at = ? WHERE id = ?`,
		now, quiz.CourseID); err != nil {
		return err
	}
	return tx.Commit()
}

const quizColumns = `id, course_id, title, description, questions, passing_score, attempts_count, average_score, created_at, updated_at`

func scanQuiz(row interface{ Scan(...interface{}) error }) (*models.Quiz, error) {
	var quiz models.Quiz
	var questionsJSON string
	err := row.Scan(&quiz.ID, &quiz.CourseID, &quiz.Title, &quiz.Description,
		&questionsJSON, &quiz.PassingScore, &quiz.AttemptsCount, &quiz.AverageScore,
		&quiz.CreatedAt, &quiz.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if questionsJSON != "" {
		if err := json.Unmarshal([]byte(questionsJSON), &quiz.Questions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
		}
	}
	return &quiz, nil
}

// GetQuiz returns a quiz by ID.
func (s *SQLiteStorage) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := scanQuiz(s.db.QueryRowContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// ListQuizzesByCourse returns all quizzes for a course, newest first.
func (s *SQLiteStorage) ListQuizzesByCourse(ctx context.Context, courseID string) ([]*models.Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE course_id = ? ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []*models.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

// DeleteQuiz removes a quiz and decrements its course's quiz count.
func (s *SQLiteStorage) DeleteQuiz(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var courseID string
	err = tx.QueryRowContext(ctx, `SELECT course_id FROM quizzes WHERE id = ?`, id).Scan(&courseID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE courses SET quiz_count = quiz_count - 1 WHERE id = ? AND quiz_count > 0`,
		courseID); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordQuizAttempt persists an attempt and folds it into the quiz's running
// attempt count and average score.
func (s *SQLiteStorage) RecordQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	answersJSON, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int64
	var avg float64
	err = tx.QueryRowContext(ctx,
		`SELECT attempts_count, average_score FROM quizzes WHERE id = ?`,
		attempt.QuizID).Scan(&count, &avg)
	if err == sql.ErrNoRows {
		return fmt.Errorf("quiz %s: %w", attempt.QuizID, ErrNotFound)
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quiz_attempts (id, quiz_id, user_id, answers, percentage, passed, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID, attempt.QuizID, attempt.UserID, string(answersJSON),
		attempt.Percentage, attempt.Passed, attempt.SubmittedAt,
	); err != nil {
		return err
	}

	newAvg := (avg*float64(count) + attempt.Percentage) / float64(count+1)
	if _, err := tx.ExecContext(ctx,
		`UPDATE quizzes SET attempts_count = ?, average_score = ? WHERE id = ?`,
		count+1, newAvg, attempt.QuizID); err != nil {
		return err
	}
	return tx.Commit()
}

// CountCourses returns the total number of courses.
func (s *SQLiteStorage) CountCourses(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count)
	return count, err
}

// CountLessons returns the total number of lessons.
func (s *SQLiteStorage) CountLessons(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lessons`).Scan(&count)
	return count, err
}

// CountQuizzes returns the total number of quizzes.
func (s *SQLiteStorage) CountQuizzes(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes`).Scan(&count)
	return count, err
}

// Ping verifies the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
