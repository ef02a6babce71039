package history

import (
	"context"
)

// DummyRecorder is a no-op implementation of Recorder
// It does nothing and is used when history recording is disabled
type DummyRecorder struct{}

// NewDummyRecorder creates a new dummy recorder
func NewDummyRecorder() *DummyRecorder {
	return &DummyRecorder{}
}

// RecordCheck persists a check verdict (no-op)
func (d *DummyRecorder) RecordCheck(ctx context.Context, record CheckRecord) error {
	return nil
}

// RecordEngineError persists an engine failure (no-op)
func (d *DummyRecorder) RecordEngineError(ctx context.Context, url, contextURL, requestType, message string) error {
	return nil
}

// Summary returns empty aggregate counts
func (d *DummyRecorder) Summary(ctx context.Context) (*Summary, error) {
	return &Summary{}, nil
}

// Close cleans up resources (no-op)
func (d *DummyRecorder) Close() error {
	return nil
}
