// Package engine wraps the urlfilter matching engine behind the small
// surface blockcheck needs: build an immutable rule set once, answer
// single-request match queries, and normalize request-type tokens.
package engine

import (
	"fmt"
	"net/url"

	"github.com/AdguardTeam/urlfilter"
	"github.com/AdguardTeam/urlfilter/filterlist"
	"github.com/AdguardTeam/urlfilter/rules"

	"github.com/codefionn/blockcheck/blockcheck-cli/logger"
)

// Engine holds the compiled rule set. It is immutable after New and safe
// for sequential reuse across queries.
type Engine struct {
	inner       *urlfilter.Engine
	storage     *filterlist.RuleStorage
	sourceNames map[int]string
}

// CheckResult is the verdict for a single request. The boolean Matched field
// is the default output; the remaining fields are the verbose diagnostics.
type CheckResult struct {
	URL         string `json:"url"`
	RequestType string `json:"requestType"`
	ThirdParty  bool   `json:"thirdParty"`
	Matched     bool   `json:"matched"`
	Filter      string `json:"filter,omitempty"`
	FilterList  string `json:"filterList,omitempty"`
	Whitelist   bool   `json:"whitelist,omitempty"`
}

// New compiles the given rule sources into a matching engine.
func New(sources []RuleSource) (*Engine, error) {
	lists := make([]filterlist.RuleList, 0, len(sources))
	names := make(map[int]string, len(sources))
	for _, src := range sources {
		lists = append(lists, &filterlist.StringRuleList{
			ID:             src.ID,
			RulesText:      src.Text,
			IgnoreCosmetic: true,
		})
		names[src.ID] = src.Name
	}

	storage, err := filterlist.NewRuleStorage(lists)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule storage: %w", err)
	}

	eng := urlfilter.NewEngine(storage)
	logger.Debug("Compiled %d rule sources into matching engine", len(sources))

	return &Engine{
		inner:       eng,
		storage:     storage,
		sourceNames: names,
	}, nil
}

// Check queries the engine for a single request. The request type must
// already be normalized to the filter-list vocabulary. The engine derives
// third-party status from the request and context URLs itself.
//
// Errors from Check are per-request conditions: they must be reported but
// never abort a batch.
func (e *Engine) Check(requestURL, contextURL, normalizedType string) (result *CheckResult, err error) {
	if err := validateRequestURL(requestURL); err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", requestURL, err)
	}
	if err := validateRequestURL(contextURL); err != nil {
		return nil, fmt.Errorf("invalid context url %q: %w", contextURL, err)
	}

	// The engine panics on inputs it considers impossible; fold that into
	// the per-request error path instead of crashing the run.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("engine query failed: %v", r)
		}
	}()

	req := rules.NewRequest(requestURL, contextURL, engineRequestType(normalizedType))
	matchRes := e.inner.MatchRequest(req)

	result = &CheckResult{
		URL:         requestURL,
		RequestType: normalizedType,
		ThirdParty:  req.ThirdParty,
	}

	rule := matchRes.GetBasicResult()
	if rule == nil {
		return result, nil
	}

	result.Filter = rule.Text()
	result.FilterList = e.sourceNames[rule.GetFilterListID()]
	result.Whitelist = rule.Whitelist
	result.Matched = !rule.Whitelist
	return result, nil
}

// Close releases the rule storage.
func (e *Engine) Close() error {
	if e.storage != nil {
		return e.storage.Close()
	}
	return nil
}

// validateRequestURL rejects URLs the engine cannot derive a hostname from.
func validateRequestURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url must be absolute with scheme and host")
	}
	return nil
}
