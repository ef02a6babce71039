package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	recorder, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = recorder.Close() })
	return recorder
}

func TestSQLiteRecorder_RecordAndSummarize(t *testing.T) {
	recorder := newTestSQLiteRecorder(t)
	ctx := context.Background()

	require.NoError(t, recorder.RecordCheck(ctx, CheckRecord{
		URL:         "http://ads.example.org/banner.png",
		Context:     "http://example.org/",
		RequestType: "image",
		Matched:     true,
		Filter:      "||ads.example.org^",
		FilterList:  "test-list",
		CheckedAt:   time.Now(),
	}))
	require.NoError(t, recorder.RecordCheck(ctx, CheckRecord{
		URL:         "http://cdn.example.org/app.js",
		Context:     "http://example.org/",
		RequestType: "script",
		Matched:     false,
		CheckedAt:   time.Now(),
	}))
	require.NoError(t, recorder.RecordEngineError(ctx,
		"not-a-url", "http://example.org/", "script", "invalid request url"))

	summary, err := recorder.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalChecks)
	assert.Equal(t, int64(1), summary.Matched)
	assert.Equal(t, int64(1), summary.Errors)
}

func TestSQLiteRecorder_EmptySummary(t *testing.T) {
	recorder := newTestSQLiteRecorder(t)

	summary, err := recorder.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalChecks)
	assert.Equal(t, int64(0), summary.Matched)
	assert.Equal(t, int64(0), summary.Errors)
}
