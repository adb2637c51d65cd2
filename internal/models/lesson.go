package models

import "time"

// Lesson is a persisted micro-lesson attached to a course.
type Lesson struct {
	ID              string    `json:"id" bson:"_id"`
	CourseID        string    `json:"course_id" bson:"course_id"`
	Title           string    `json:"title" bson:"title"`
	Content         string    `json:"content" bson:"content"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes"`
	Order           int       `json:"order" bson:"order"`
	Tags            []string  `json:"tags" bson:"tags"`
	Views           int       `json:"views" bson:"views"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// LessonCreate is the payload for creating a lesson.
type LessonCreate struct {
	CourseID        string   `json:"course_id" validate:"required"`
	Title           string   `json:"title" validate:"required,min=1,max=200"`
	Content         string   `json:"content" validate:"required"`
	DurationMinutes int      `json:"duration_minutes" validate:"min=1,max=60"`
	Order           int      `json:"order" validate:"min=1"`
	Tags            []string `json:"tags"`
}
