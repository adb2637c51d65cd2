// Package events publishes domain events to the platform's pub/sub broker.
package events

import "context"

// Topics emitted by the content service.
const (
	TopicCourseCreated = "course.created"
	TopicLessonCreated = "lesson.created"
	TopicQuizCompleted = "quiz.completed"
)

// Publisher delivers domain events. Publication is best-effort; callers log
// failures but never fail the originating request.
type Publisher interface {
	Publish(ctx context.Context, topic string, event interface{}) error
}

// NopPublisher discards all events. Used when event publication is disabled.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(ctx context.Context, topic string, event interface{}) error {
	return nil
}
