// Package history optionally persists check verdicts so repeated runs can be
// inspected later. Backends follow the collector pattern: a Recorder
// interface with SQLite, PostgreSQL and no-op implementations behind a
// factory, wrapped in a buffered writer.
package history

import (
	"context"
	"time"
)

// CheckRecord is one persisted check verdict.
type CheckRecord struct {
	URL         string
	Context     string
	RequestType string
	Matched     bool
	Filter      string
	FilterList  string
	CheckedAt   time.Time
}

// Summary aggregates the recorded history.
type Summary struct {
	TotalChecks int64 `json:"totalChecks"`
	Matched     int64 `json:"matched"`
	Errors      int64 `json:"errors"`
}

// Recorder defines the interface for persisting check history
type Recorder interface {
	// RecordCheck persists one check verdict
	RecordCheck(ctx context.Context, record CheckRecord) error

	// RecordEngineError persists a per-request engine failure
	RecordEngineError(ctx context.Context, url, contextURL, requestType, message string) error

	// Summary returns aggregate counts over the recorded history
	Summary(ctx context.Context) (*Summary, error)

	// Close flushes and cleans up resources
	Close() error
}
