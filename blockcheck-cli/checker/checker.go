// Package checker drives request checking: it consumes request descriptions
// (a single one from flags, or a newline-delimited JSON stream), queries the
// matching engine and reports verdicts in input order.
package checker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/codefionn/blockcheck/blockcheck-cli/engine"
	"github.com/codefionn/blockcheck/blockcheck-cli/history"
	"github.com/codefionn/blockcheck/blockcheck-cli/hostlist"
	"github.com/codefionn/blockcheck/blockcheck-cli/logger"
)

// Request describes one network request to check. All three fields must be
// present and non-empty.
type Request struct {
	URL     string `json:"url"`
	Context string `json:"context"`
	Type    string `json:"type"`
}

// Runner checks requests against the compiled rule set and writes verdicts
// to out, one line per request. Per-request engine errors are logged, flip
// the error flag consulted by ExitCode, and never stop a batch.
type Runner struct {
	engine   *engine.Engine
	hosts    *hostlist.Matcher
	recorder history.Recorder
	out      io.Writer
	verbose  bool
	anyError bool
}

// NewRunner creates a runner. hosts may be nil when no host lists are loaded.
func NewRunner(eng *engine.Engine, hosts *hostlist.Matcher, recorder history.Recorder, out io.Writer, verbose bool) *Runner {
	if recorder == nil {
		recorder = history.NewDummyRecorder()
	}
	return &Runner{
		engine:   eng,
		hosts:    hosts,
		recorder: recorder,
		out:      out,
		verbose:  verbose,
	}
}

// CheckSingle checks the one request described on the command line.
func (r *Runner) CheckSingle(ctx context.Context, req Request) {
	r.checkOne(ctx, req)
}

// RunBatch consumes newline-delimited JSON request descriptions from input
// and checks them strictly in order. A line that cannot be parsed or is
// missing a required field is a contract violation: the batch aborts with a
// fatal error and later lines are never processed. Verdicts already written
// stand.
func (r *Runner) RunBatch(ctx context.Context, input io.Reader) error {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			return NewCheckError(ErrCodeMalformedInput,
				fmt.Sprintf("line %d is not a valid JSON request: %s", lineNo, line), err)
		}

		if missing := missingFields(req); len(missing) > 0 {
			return NewCheckError(ErrCodeMissingField,
				fmt.Sprintf("line %d is missing required field(s) %s: %s",
					lineNo, strings.Join(missing, ", "), line), nil)
		}

		r.checkOne(ctx, req)
	}

	if err := scanner.Err(); err != nil {
		return NewCheckError(ErrCodeInputReadFailed, "failed to read requests input", err)
	}
	return nil
}

// ExitCode is 0 when the run completed without per-request errors, 1 otherwise.
func (r *Runner) ExitCode() int {
	if r.anyError {
		return 1
	}
	return 0
}

// checkOne normalizes the request type, consults the host lists and then the
// engine, and emits one verdict line. Engine failures are per-request errors.
func (r *Runner) checkOne(ctx context.Context, req Request) {
	normalized := engine.NormalizeRequestType(req.Type)

	var result *engine.CheckResult
	if domain, source, ok := r.hosts.Match(req.URL); ok {
		result = &engine.CheckResult{
			URL:         req.URL,
			RequestType: normalized,
			Matched:     true,
			Filter:      domain,
			FilterList:  "hosts:" + source,
		}
	} else {
		var err error
		result, err = r.engine.Check(req.URL, req.Context, normalized)
		if err != nil {
			r.anyError = true
			checkErr := NewCheckError(ErrCodeEngineQueryFailed,
				fmt.Sprintf("check failed for url=%q context=%q type=%q", req.URL, req.Context, req.Type), err)
			logger.Error("%v", checkErr)
			if recErr := r.recorder.RecordEngineError(ctx, req.URL, req.Context, normalized, err.Error()); recErr != nil {
				logger.Warn("Failed to record engine error: %v", recErr)
			}
			return
		}
	}

	r.emit(result)

	record := history.CheckRecord{
		URL:         req.URL,
		Context:     req.Context,
		RequestType: normalized,
		Matched:     result.Matched,
		Filter:      result.Filter,
		FilterList:  result.FilterList,
		CheckedAt:   time.Now(),
	}
	if err := r.recorder.RecordCheck(ctx, record); err != nil {
		logger.Warn("Failed to record check: %v", err)
	}
}

// emit writes one verdict line: the bare boolean by default, the full
// structured result in verbose mode.
func (r *Runner) emit(result *engine.CheckResult) {
	if r.verbose {
		data, err := json.Marshal(result)
		if err != nil {
			r.anyError = true
			logger.Error("Failed to serialize result for %q: %v", result.URL, err)
			return
		}
		fmt.Fprintln(r.out, string(data))
		return
	}
	fmt.Fprintln(r.out, result.Matched)
}

func missingFields(req Request) []string {
	var missing []string
	if req.URL == "" {
		missing = append(missing, "url")
	}
	if req.Context == "" {
		missing = append(missing, "context")
	}
	if req.Type == "" {
		missing = append(missing, "type")
	}
	return missing
}
