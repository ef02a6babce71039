package history

import (
	"context"
	"sync"
	"time"

	"github.com/codefionn/blockcheck/blockcheck-cli/logger"
)

type engineErrorData struct {
	url         string
	contextURL  string
	requestType string
	message     string
}

// BufferedRecorder wraps another Recorder and batches writes, flushing on an
// interval and on Close. Summary flushes pending entries first so the counts
// include everything recorded so far.
type BufferedRecorder struct {
	underlying Recorder
	interval   time.Duration

	mu      sync.Mutex
	checks  []CheckRecord
	errors  []engineErrorData
	stopped bool

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewBufferedRecorder creates a buffered recorder with the given flush interval
func NewBufferedRecorder(underlying Recorder, interval time.Duration) *BufferedRecorder {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	b := &BufferedRecorder{
		underlying: underlying,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}

	b.wg.Add(1)
	go b.flushLoop()

	return b
}

func (b *BufferedRecorder) flushLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.flush()
		case <-b.stopChan:
			b.flush()
			return
		}
	}
}

// flush writes all pending entries to the underlying recorder
func (b *BufferedRecorder) flush() {
	b.mu.Lock()
	checks := b.checks
	errors := b.errors
	b.checks = nil
	b.errors = nil
	b.mu.Unlock()

	if len(checks) == 0 && len(errors) == 0 {
		return
	}

	ctx := context.Background()
	for _, record := range checks {
		if err := b.underlying.RecordCheck(ctx, record); err != nil {
			logger.Warn("Failed to flush check record: %v", err)
		}
	}
	for _, e := range errors {
		if err := b.underlying.RecordEngineError(ctx, e.url, e.contextURL, e.requestType, e.message); err != nil {
			logger.Warn("Failed to flush engine error record: %v", err)
		}
	}
}

// RecordCheck buffers one check verdict
func (b *BufferedRecorder) RecordCheck(ctx context.Context, record CheckRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checks = append(b.checks, record)
	return nil
}

// RecordEngineError buffers a per-request engine failure
func (b *BufferedRecorder) RecordEngineError(ctx context.Context, url, contextURL, requestType, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = append(b.errors, engineErrorData{
		url:         url,
		contextURL:  contextURL,
		requestType: requestType,
		message:     message,
	})
	return nil
}

// Summary flushes pending entries and delegates to the underlying recorder
func (b *BufferedRecorder) Summary(ctx context.Context) (*Summary, error) {
	b.flush()
	return b.underlying.Summary(ctx)
}

// Close stops the flush loop, flushes remaining entries and closes the
// underlying recorder
func (b *BufferedRecorder) Close() error {
	b.mu.Lock()
	alreadyStopped := b.stopped
	b.stopped = true
	b.mu.Unlock()

	if !alreadyStopped {
		close(b.stopChan)
		b.wg.Wait()
	}

	return b.underlying.Close()
}
