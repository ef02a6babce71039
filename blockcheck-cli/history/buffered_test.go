package history

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRecorder captures writes for assertions
type memoryRecorder struct {
	mu     sync.Mutex
	checks []CheckRecord
	errors []string
	closed bool
}

func (m *memoryRecorder) RecordCheck(ctx context.Context, record CheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, record)
	return nil
}

func (m *memoryRecorder) RecordEngineError(ctx context.Context, url, contextURL, requestType, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, message)
	return nil
}

func (m *memoryRecorder) Summary(ctx context.Context) (*Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary := &Summary{
		TotalChecks: int64(len(m.checks)),
		Errors:      int64(len(m.errors)),
	}
	for _, check := range m.checks {
		if check.Matched {
			summary.Matched++
		}
	}
	return summary, nil
}

func (m *memoryRecorder) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func TestBufferedRecorder_FlushesOnClose(t *testing.T) {
	underlying := &memoryRecorder{}
	buffered := NewBufferedRecorder(underlying, time.Hour)

	ctx := context.Background()
	require.NoError(t, buffered.RecordCheck(ctx, CheckRecord{URL: "http://a.example/", Matched: true, CheckedAt: time.Now()}))
	require.NoError(t, buffered.RecordCheck(ctx, CheckRecord{URL: "http://b.example/", CheckedAt: time.Now()}))
	require.NoError(t, buffered.RecordEngineError(ctx, "http://c.example/", "http://d.example/", "script", "boom"))

	// Nothing flushed yet with an hour-long interval
	underlying.mu.Lock()
	pending := len(underlying.checks)
	underlying.mu.Unlock()
	assert.Equal(t, 0, pending)

	require.NoError(t, buffered.Close())

	assert.Len(t, underlying.checks, 2)
	assert.Len(t, underlying.errors, 1)
	assert.True(t, underlying.closed)
}

func TestBufferedRecorder_SummaryFlushesFirst(t *testing.T) {
	underlying := &memoryRecorder{}
	buffered := NewBufferedRecorder(underlying, time.Hour)
	defer func() { _ = buffered.Close() }()

	ctx := context.Background()
	require.NoError(t, buffered.RecordCheck(ctx, CheckRecord{URL: "http://a.example/", Matched: true, CheckedAt: time.Now()}))

	summary, err := buffered.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalChecks)
	assert.Equal(t, int64(1), summary.Matched)
}

func TestBufferedRecorder_CloseIsIdempotent(t *testing.T) {
	buffered := NewBufferedRecorder(&memoryRecorder{}, time.Second)
	require.NoError(t, buffered.Close())
	require.NoError(t, buffered.Close())
}

func TestFactory_DisabledReturnsDummy(t *testing.T) {
	factory := NewRecorderFactory()

	recorder, err := factory.CreateRecorder(&Config{Enabled: false})
	require.NoError(t, err)
	_, isDummy := recorder.(*DummyRecorder)
	assert.True(t, isDummy)
}

func TestFactory_SQLiteBackend(t *testing.T) {
	factory := NewRecorderFactory()

	recorder, err := factory.CreateRecorder(&Config{
		Enabled:       true,
		Backend:       "sqlite",
		SQLitePath:    filepath.Join(t.TempDir(), "history.db"),
		FlushInterval: 1,
	})
	require.NoError(t, err)
	defer func() { _ = recorder.Close() }()

	_, isBuffered := recorder.(*BufferedRecorder)
	assert.True(t, isBuffered)
}

func TestFactory_UnsupportedBackend(t *testing.T) {
	factory := NewRecorderFactory()

	_, err := factory.CreateRecorder(&Config{Enabled: true, Backend: "redis"})
	assert.Error(t, err)
}

func TestFactory_PostgresRequiresDSN(t *testing.T) {
	factory := NewRecorderFactory()

	_, err := factory.CreateRecorder(&Config{Enabled: true, Backend: "postgres"})
	assert.Error(t, err)
}
