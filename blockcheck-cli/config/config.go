// Package config resolves blockcheck's runtime configuration from defaults,
// BLOCKCHECK_* environment variables, an optional JSON or HCL config file,
// and finally command-line flags (applied by the caller, highest priority).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codefionn/blockcheck/blockcheck-cli/checker"
	"github.com/codefionn/blockcheck/blockcheck-cli/logger"
)

// Mode is the invocation mode selected by request-flag validation.
type Mode int

const (
	// ModeSingle checks the one request described by --url/--context/--type.
	ModeSingle Mode = iota
	// ModeBatch checks newline-delimited JSON requests from --requests.
	ModeBatch
)

// HistoryConfig controls the optional check-history recorder.
type HistoryConfig struct {
	Enabled       bool   // Whether history recording is enabled
	Backend       string // "sqlite", "postgres" or "dummy"
	SQLitePath    string // Database file for the sqlite backend
	PostgresDSN   string // Connection string for the postgres backend
	FlushInterval int    // Seconds between buffered flushes
}

// Config represents the resolved configuration for one blockcheck run.
type Config struct {
	RequestURL     string   // --url (single-request mode)
	RequestContext string   // --context (single-request mode)
	RequestType    string   // --type (single-request mode)
	RequestsPath   string   // --requests; "-" means standard input
	RuleFiles      []string // --rules; empty means the two bundled lists
	HostFiles      []string // --hosts; plain domain blocklists
	Verbose        bool     // Emit full structured results
	LogLevel       string   // Logger level name
	History        HistoryConfig
}

// LoadConfig loads configuration from the specified file path. An empty path
// loads defaults plus environment variables only.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		LogLevel: "WARN",
		History: HistoryConfig{
			Backend:       "sqlite",
			SQLitePath:    "blockcheck_history.db",
			FlushInterval: 5,
		},
	}

	loadConfigFromEnv(cfg)

	if configPath != "" {
		var err error

		ext := filepath.Ext(configPath)
		switch strings.ToLower(ext) {
		case ".json":
			err = loadJSONConfig(configPath, cfg)
		case ".hcl":
			err = loadHCLConfig(configPath, cfg)
		default:
			return nil, checker.NewCheckError(checker.ErrCodeUnsupportedConfig,
				fmt.Sprintf("unsupported config file format: %s", ext), nil)
		}

		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Mode validates the request-selection flags and determines the invocation
// mode. This runs once, before any engine construction or query.
func (c *Config) Mode() (Mode, error) {
	supplied := 0
	for _, v := range []string{c.RequestURL, c.RequestContext, c.RequestType} {
		if v != "" {
			supplied++
		}
	}

	switch {
	case supplied == 3:
		// Single-request mode wins; a requests source is ignored.
		return ModeSingle, nil
	case supplied == 0 && c.RequestsPath != "":
		return ModeBatch, nil
	case supplied == 0:
		return 0, checker.NewCheckError(checker.ErrCodeNoInputMethod,
			"either --url/--context/--type or --requests must be supplied", nil)
	default:
		return 0, checker.NewCheckError(checker.ErrCodeIncompleteRequestFlags,
			"--url, --context and --type must be supplied together", nil)
	}
}

func loadJSONConfig(configPath string, cfg *Config) error {
	cleanPath := filepath.Clean(configPath)
	if !filepath.IsAbs(cleanPath) {
		absPath, err := filepath.Abs(cleanPath)
		if err != nil {
			return fmt.Errorf("invalid config file path: %w", err)
		}
		cleanPath = absPath
	}
	file, err := os.Open(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.Error("Error closing config file: %v", closeErr)
		}
	}()

	// Decode into a map first to handle the hyphenated keys
	var data map[string]any
	err = json.NewDecoder(file).Decode(&data)
	if err != nil {
		return fmt.Errorf("failed to decode JSON config: %w", err)
	}

	return applyConfigMap(data, cfg)
}

// applyConfigMap maps decoded config keys onto the Config struct. Shared by
// the JSON and HCL loaders.
func applyConfigMap(data map[string]any, cfg *Config) error {
	if val, exists := data["rules"]; exists {
		list, err := parseStringList(val)
		if err != nil {
			return fmt.Errorf("rules must be an array of strings: %w", err)
		}
		cfg.RuleFiles = list
	}

	if val, exists := data["hosts"]; exists {
		list, err := parseStringList(val)
		if err != nil {
			return fmt.Errorf("hosts must be an array of strings: %w", err)
		}
		cfg.HostFiles = list
	}

	if val, exists := data["verbose"]; exists {
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("verbose must be a boolean")
		}
		cfg.Verbose = b
	}

	if val, exists := data["log-level"]; exists {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("log-level must be a string")
		}
		cfg.LogLevel = s
	}

	if val, exists := data["history"]; exists {
		historyMap, ok := val.(map[string]any)
		if !ok {
			return fmt.Errorf("history must be an object")
		}
		if err := applyHistoryMap(historyMap, &cfg.History); err != nil {
			return err
		}
	}

	return nil
}

func applyHistoryMap(data map[string]any, cfg *HistoryConfig) error {
	if val, exists := data["enabled"]; exists {
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("history enabled must be a boolean")
		}
		cfg.Enabled = b
	}

	if val, exists := data["backend"]; exists {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("history backend must be a string")
		}
		cfg.Backend = s
	}

	if val, exists := data["sqlite-path"]; exists {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("history sqlite-path must be a string")
		}
		cfg.SQLitePath = s
	}

	if val, exists := data["postgres-dsn"]; exists {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("history postgres-dsn must be a string")
		}
		cfg.PostgresDSN = s
	}

	if val, exists := data["flush-interval"]; exists {
		switch n := val.(type) {
		case float64:
			cfg.FlushInterval = int(n)
		case int:
			cfg.FlushInterval = n
		default:
			return fmt.Errorf("history flush-interval must be a number")
		}
	}

	return nil
}

func parseStringList(val any) ([]string, error) {
	raw, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array, got %T", val)
	}
	list := make([]string, 0, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, not a string", i, item)
		}
		list = append(list, s)
	}
	return list, nil
}

func loadConfigFromEnv(cfg *Config) {
	if rules := os.Getenv("BLOCKCHECK_RULES"); rules != "" {
		cfg.RuleFiles = splitPathList(rules)
	}

	if hosts := os.Getenv("BLOCKCHECK_HOSTS"); hosts != "" {
		cfg.HostFiles = splitPathList(hosts)
	}

	if level := os.Getenv("BLOCKCHECK_LOGLEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if verboseStr := os.Getenv("BLOCKCHECK_VERBOSE"); verboseStr != "" {
		if verbose, err := strconv.ParseBool(verboseStr); err == nil {
			cfg.Verbose = verbose
		} else {
			fmt.Fprintf(os.Stderr, "Warning: Invalid format for BLOCKCHECK_VERBOSE: %s\n", verboseStr)
		}
	}

	if enabledStr := os.Getenv("BLOCKCHECK_HISTORY_ENABLED"); enabledStr != "" {
		if enabled, err := strconv.ParseBool(enabledStr); err == nil {
			cfg.History.Enabled = enabled
		} else {
			fmt.Fprintf(os.Stderr, "Warning: Invalid format for BLOCKCHECK_HISTORY_ENABLED: %s\n", enabledStr)
		}
	}

	if backend := os.Getenv("BLOCKCHECK_HISTORY_BACKEND"); backend != "" {
		cfg.History.Backend = backend
	}

	if path := os.Getenv("BLOCKCHECK_HISTORY_SQLITEPATH"); path != "" {
		cfg.History.SQLitePath = path
	}

	if dsn := os.Getenv("BLOCKCHECK_HISTORY_POSTGRESDSN"); dsn != "" {
		cfg.History.PostgresDSN = dsn
	}
}

func splitPathList(raw string) []string {
	parts := strings.Split(raw, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
