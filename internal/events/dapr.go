package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DaprPublisher publishes events through a Dapr sidecar's pub/sub HTTP API.
type DaprPublisher struct {
	baseURL string
	pubsub  string
	client  *http.Client
}

// NewDaprPublisher returns a publisher posting to the sidecar at baseURL
// using the named pub/sub component.
func NewDaprPublisher(baseURL, pubsub string) *DaprPublisher {
	return &DaprPublisher{
		baseURL: baseURL,
		pubsub:  pubsub,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish posts the event as JSON to the sidecar.
func (p *DaprPublisher) Publish(ctx context.Context, topic string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	url := fmt.Sprintf("%s/v1.0/publish/%s/%s", p.baseURL, p.pubsub, topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("publish %s: sidecar returned %d", topic, resp.StatusCode)
	}
	return nil
}
