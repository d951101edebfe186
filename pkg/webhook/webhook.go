// Package webhook posts session lifecycle events to external HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gertd/wild"
)

var ErrTopicNotAllowed = errors.New("event topic not allowed")

// HTTPClient represents an interface for the Webhook to send events with.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// EventLog is the payload that is sent to the Webhook.URL.
type EventLog struct {
	Topics     []string  `json:"topics"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Webhook sends an EventLog via POST request to a specified URL.
// AllowedTopics filters which events are dispatched; entries may contain
// wildcards, e.g. "session.*".
type Webhook struct {
	ID            string
	HTTPClient    HTTPClient
	URL           string
	AllowedTopics []string
}

func (webhook Webhook) hasTopic(e EventLog) bool {
	for _, allowed := range webhook.AllowedTopics {
		for _, topic := range e.Topics {
			if wild.Match(allowed, topic, true) {
				return true
			}
		}
	}
	return false
}

// DispatchEvent marshals the EventLog into JSON and sends it in a POST
// request to the Webhook.URL. Events without an allowed topic are rejected
// with ErrTopicNotAllowed.
func (webhook Webhook) DispatchEvent(ctx context.Context, e EventLog) error {
	if !webhook.hasTopic(e) {
		return ErrTopicNotAllowed
	}

	bb, err := json.Marshal(e)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(bb))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := webhook.HTTPClient.Do(request)
	if err != nil {
		return err
	}
	// The response does not matter, but an unclosed body keeps the
	// underlying connection from being reused.
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	return nil
}
