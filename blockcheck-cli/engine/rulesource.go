package engine

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/codefionn/blockcheck/blockcheck-cli/logger"
)

//go:embed lists/ads.txt
var bundledAdsList string

//go:embed lists/trackers.txt
var bundledTrackersList string

// RuleSource is one filter-rule text blob, loaded fully before any query.
type RuleSource struct {
	ID   int
	Name string
	Text string
}

// DefaultRuleSources returns the two bundled filter lists used when no
// --rules paths are supplied.
func DefaultRuleSources() []RuleSource {
	return []RuleSource{
		{ID: 1, Name: "bundled:ads", Text: bundledAdsList},
		{ID: 2, Name: "bundled:trackers", Text: bundledTrackersList},
	}
}

// LoadRuleSources reads the given filter-list files. Files are read
// concurrently; the returned slice preserves the argument order, the order
// between sources is irrelevant for the union rule set anyway.
func LoadRuleSources(paths []string) ([]RuleSource, error) {
	sources := make([]RuleSource, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()

			cleanPath := filepath.Clean(path)
			data, err := os.ReadFile(cleanPath)
			if err != nil {
				errs[i] = fmt.Errorf("failed to read rule source %q: %w", path, err)
				return
			}
			sources[i] = RuleSource{
				ID:   i + 1,
				Name: path,
				Text: string(data),
			}
			logger.Debug("Loaded rule source %q (%d bytes)", path, len(data))
		}(i, path)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return sources, nil
}
