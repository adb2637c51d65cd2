package models

import "time"

// CourseStatus is the publication state of a course.
type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

// Valid reports whether s is a known course status.
func (s CourseStatus) Valid() bool {
	switch s {
	case CourseDraft, CoursePublished, CourseArchived:
		return true
	}
	return false
}

// Course groups lessons and quizzes under a teacher and subject.
type Course struct {
	ID          string       `json:"id" bson:"_id"`
	Title       string       `json:"title" bson:"title"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	TeacherID   string       `json:"teacher_id" bson:"teacher_id"`
	Subject     string       `json:"subject" bson:"subject"`
	Tags        []string     `json:"tags" bson:"tags"`
	Status      CourseStatus `json:"status" bson:"status"`
	LessonCount int          `json:"lesson_count" bson:"lesson_count"`
	QuizCount   int          `json:"quiz_count" bson:"quiz_count"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

// CourseCreate is the payload for creating a course.
type CourseCreate struct {
	Title       string       `json:"title" validate:"required,min=1,max=200"`
	Description string       `json:"description" validate:"max=1000"`
	TeacherID   string       `json:"teacher_id" validate:"required"`
	Subject     string       `json:"subject" validate:"required"`
	Tags        []string     `json:"tags"`
	Status      CourseStatus `json:"status"`
}

// CourseUpdate carries optional fields for a partial course update.
// Nil fields are left unchanged.
type CourseUpdate struct {
	Title       *string       `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status      *CourseStatus `json:"status,omitempty"`
	Tags        *[]string     `json:"tags,omitempty"`
}

// CourseFilter selects courses in list queries.
type CourseFilter struct {
	TeacherID string
	Subject   string
	Offset    int
	Limit     int
}
