package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/microlearning/microlearn/internal/models"
)

// MongoStorage implements Storage using MongoDB. Record IDs are UUID strings
// stored as _id.
type MongoStorage struct {
	client   *mongo.Client
	courses  *mongo.Collection
	lessons  *mongo.Collection
	quizzes  *mongo.Collection
	attempts *mongo.Collection
}

// NewMongoStorage connects to MongoDB at uri and initializes collections and
// indexes in the named database.
func NewMongoStorage(uri, database string) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	db := client.Database(database)
	s := &MongoStorage{
		client:   client,
		courses:  db.Collection("courses"),
		lessons:  db.Collection("lessons"),
		quizzes:  db.Collection("quizzes"),
		attempts: db.Collection("quiz_attempts"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStorage) ensureIndexes(ctx context.Context) error {
	_, err := s.courses.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "teacher_id", Value: 1}}},
		{Keys: bson.D{{Key: "subject", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = s.lessons.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "course_id", Value: 1}, {Key: "order", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = s.quizzes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "course_id", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = s.attempts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "quiz_id", Value: 1}},
	})
	return err
}

// CreateCourse inserts a course.
func (s *MongoStorage) CreateCourse(ctx context.Context, course *models.Course) error {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	_, err := s.courses.InsertOne(ctx, course)
	return err
}

// GetCourse returns a course by ID.
func (s *MongoStorage) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := s.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// UpdateCourse updates an existing course.
func (s *MongoStorage) UpdateCourse(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now()
	result, err := s.courses.UpdateOne(ctx, bson.M{"_id": course.ID}, bson.M{"$set": bson.M{
		"title":       course.Title,
		"description": course.Description,
		"tags":        course.Tags,
		"status":      course.Status,
		"updated_at":  course.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("course %s: %w", course.ID, ErrNotFound)
	}
	return nil
}

// DeleteCourse removes a course and its lessons and quizzes.
func (s *MongoStorage) DeleteCourse(ctx context.Context, id string) error {
	result, err := s.courses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	if _, err := s.lessons.DeleteMany(ctx, bson.M{"course_id": id}); err != nil {
		return err
	}
	_, err = s.quizzes.DeleteMany(ctx, bson.M{"course_id": id})
	return err
}

// ListCourses returns courses matching the filter, newest first.
func (s *MongoStorage) ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	query := bson.M{}
	if filter.TeacherID != "" {
		query["teacher_id"] = filter.TeacherID
	}
	if filter.Subject != "" {
		query["subject"] = filter.Subject
	}
	skip := filter.Offset
	if skip < 0 {
		skip = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(skip))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cursor, err := s.courses.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []*models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// CreateLesson inserts a lesson and bumps the course's lesson count.
func (s *MongoStorage) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return s.BatchCreateLessons(ctx, []*models.Lesson{lesson})
}

// BatchCreateLessons inserts lessons and adjusts course lesson counts.
func (s *MongoStorage) BatchCreateLessons(ctx context.Context, lessons []*models.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, 0, len(lessons))
	perCourse := make(map[string]int)
	for _, lesson := range lessons {
		lesson.CreatedAt = now
		lesson.UpdatedAt = now
		docs = append(docs, lesson)
		perCourse[lesson.CourseID]++
	}
	if _, err := s.lessons.InsertMany(ctx, docs); err != nil {
		return err
	}
	for courseID, n := range perCourse {
		if _, err := s.courses.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{
			"$inc": bson.M{"lesson_count": n},
			"$set": bson.M{"updated_at": now},
		}); err != nil {
			return err
		}
	}
	return nil
}

// GetLesson returns a lesson by ID.
func (s *MongoStorage) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.lessons.FindOne(ctx, bson.M{"_id": id}).Decode(&lesson)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListLessonsByCourse returns all lessons for a course in lesson order.
func (s *MongoStorage) ListLessonsByCourse(ctx context.Context, courseID string) ([]*models.Lesson, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := s.lessons.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lessons []*models.Lesson
	if err := cursor.All(ctx, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// DeleteLesson removes a lesson and decrements its course's lesson count.
func (s *MongoStorage) DeleteLesson(ctx context.Context, id string) error {
	var lesson models.Lesson
	err := s.lessons.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&lesson)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	_, err = s.courses.UpdateOne(ctx,
		bson.M{"_id": lesson.CourseID, "lesson_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"lesson_count": -1}})
	return err
}

// IncrementLessonViews bumps the view counter for a lesson.
func (s *MongoStorage) IncrementLessonViews(ctx context.Context, id string) error {
	result, err := s.lessons.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateQuiz inserts a quiz and bumps the course's quiz count.
func (s *MongoStorage) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	now := time.Now()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	if _, err := s.quizzes.InsertOne(ctx, quiz); err != nil {
		return err
	}
	_, err := s.courses.UpdateOne(ctx, bson.M{"_id": quiz.CourseID}, bson.M{
		"$inc": bson.M{"quiz_count": 1},
		"$set": bson.M{"updated_at": now},
	})
	return err
}

// GetQuiz returns a quiz by ID.
func (s *MongoStorage) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.quizzes.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// ListQuizzesByCourse returns all quizzes for a course, newest first.
func (s *MongoStorage) ListQuizzesByCourse(ctx context.Context, courseID string) ([]*models.Quiz, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.quizzes.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var quizzes []*models.Quiz
	if err := cursor.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// DeleteQuiz removes a quiz and decrements its course's quiz count.
func (s *MongoStorage) DeleteQuiz(ctx context.Context, id string) error {
	var quiz models.Quiz
	err := s.quizzes.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&quiz)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	_, err = s.courses.UpdateOne(ctx,
		bson.M{"_id": quiz.CourseID, "quiz_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"quiz_count": -1}})
	return err
}

// RecordQuizAttempt persists an attempt and folds it into the quiz's running
// attempt count and average score.
func (s *MongoStorage) RecordQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	var quiz models.Quiz
	err := s.quizzes.FindOne(ctx, bson.M{"_id": attempt.QuizID}).Decode(&quiz)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("quiz %s: %w", attempt.QuizID, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if _, err := s.attempts.InsertOne(ctx, attempt); err != nil {
		return err
	}
	count := float64(quiz.AttemptsCount)
	newAvg := (quiz.AverageScore*count + attempt.Percentage) / (count + 1)
	_, err = s.quizzes.UpdateOne(ctx, bson.M{"_id": attempt.QuizID}, bson.M{"$set": bson.M{
		"attempts_count": quiz.AttemptsCount + 1,
		"average_score":  newAvg,
	}})
	return err
}

// CountCourses returns the total number of courses.
func (s *MongoStorage) CountCourses(ctx context.Context) (int64, error) {
	return s.courses.CountDocuments(ctx, bson.M{})
}

// CountLessons returns the total number of lessons.
func (s *MongoStorage) CountLessons(ctx context.Context) (int64, error) {
	return s.lessons.CountDocuments(ctx, bson.M{})
}

// CountQuizzes returns the total number of quizzes.
func (s *MongoStorage) CountQuizzes(ctx context.Context) (int64, error) {
	return s.quizzes.CountDocuments(ctx, bson.M{})
}

// Ping verifies the MongoDB connection.
func (s *MongoStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *MongoStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
