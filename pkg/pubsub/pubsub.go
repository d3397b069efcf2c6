package pubsub

import (
	"context"
	"encoding/json"
)

// TopicReports carries report run progress
const TopicReports = "reports"

// Event types published on TopicReports
const (
	EventRunStarted  = "run_started"
	EventReport      = "report"
	EventRunComplete = "run_complete"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "reports")
	Type    string          `json:"type"`    // Event type (e.g., "run_started", "report")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// RunStatus describes a report run as a whole
type RunStatus struct {
	RunID   string `json:"run_id"`
	Reason  string `json:"reason"`
	Reports int    `json:"reports"`          // Planned reports for run_started, produced for run_complete
	Failed  int    `json:"failed,omitempty"` // Only set on run_complete
}

// ReportStatus describes one finished (patient, radius) report
type ReportStatus struct {
	RunID   string `json:"run_id"`
	Patient string `json:"patient"`
	Dilate  int    `json:"dilate"`
	Path    string `json:"path,omitempty"`
	Outcome string `json:"outcome,omitempty"` // written or skipped
	Error   string `json:"error,omitempty"`
}
