package events

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDaprPublisher_Publish(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewDaprPublisher(srv.URL, "pubsub")
	event := map[string]string{"course_id": "c1"}
	if err := p.Publish(context.Background(), TopicCourseCreated, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if gotPath != "/v1.0/publish/pubsub/course.created" {
		t.Errorf("path = %s", gotPath)
	}
	var decoded map[string]string
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("body: %v", err)
	}
	if decoded["course_id"] != "c1" {
		t.Errorf("body = %s", gotBody)
	}
}

func TestDaprPublisher_SidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewDaprPublisher(srv.URL, "pubsub")
	if err := p.Publish(context.Background(), TopicQuizCompleted, nil); err == nil {
		t.Error("expected error on sidecar failure")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), TopicLessonCreated, nil); err != nil {
		t.Errorf("NopPublisher should never fail: %v", err)
	}
}
