package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/codefionn/blockcheck/blockcheck-cli/checker"
	"github.com/codefionn/blockcheck/blockcheck-cli/config"
	"github.com/codefionn/blockcheck/blockcheck-cli/engine"
	"github.com/codefionn/blockcheck/blockcheck-cli/history"
	"github.com/codefionn/blockcheck/blockcheck-cli/hostlist"
	"github.com/codefionn/blockcheck/blockcheck-cli/logger"
)

var version string

// pathListFlag collects repeatable path flags
type pathListFlag []string

func (p *pathListFlag) String() string {
	return strings.Join(*p, ",")
}

func (p *pathListFlag) Set(value string) error {
	*p = append(*p, value)
	return nil
}

func main() {
	cfg, mode := parseFlagsAndConfig()
	os.Exit(run(cfg, mode))
}

// parseFlagsAndConfig handles CLI flags, environment, logging, and config
// loading, and validates the invocation mode before anything else runs.
func parseFlagsAndConfig() (*config.Config, config.Mode) {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	versionShortFlag := flag.Bool("v", false, "Print version and exit (shorthand)")
	urlFlag := flag.String("url", "", "URL of the request to check (single-request mode)")
	contextFlag := flag.String("context", "", "URL of the page initiating the request (single-request mode)")
	typeFlag := flag.String("type", "", "Request type token, filter-list or platform vocabulary (single-request mode)")
	requestsFlag := flag.String("requests", "", "Path to newline-delimited JSON requests, or - for stdin (batch mode)")
	var rulesFlag pathListFlag
	flag.Var(&rulesFlag, "rules", "Path to a filter-rule list file (repeatable; default: two bundled lists)")
	var hostsFlag pathListFlag
	flag.Var(&hostsFlag, "hosts", "Path to a plain domain blocklist file (repeatable)")
	verboseFlag := flag.Bool("verbose", false, "Emit the full structured result instead of the boolean verdict")
	configPathPtr := flag.String("config", "", "Path to configuration file (supports .json and .hcl formats)")
	envfile := flag.String("envfile", "", "Path to env file to load environment variables")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	historySummary := flag.Bool("history-summary", false, "Print aggregate counts from the check history and exit")
	flag.Parse()

	if *versionFlag || *versionShortFlag {
		if version == "" {
			version = "dev"
		}
		fmt.Println("blockcheck version:", version)
		os.Exit(0)
	}

	if *envfile != "" {
		if err := loadEnvFile(*envfile); err != nil {
			logger.Fatal("Failed to load envfile: %v", err)
		}
		logger.Info("Loaded environment variables from %s", *envfile)
	}

	cfg, err := config.LoadConfig(*configPathPtr)
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	// Flags override config file and environment
	if *urlFlag != "" {
		cfg.RequestURL = *urlFlag
	}
	if *contextFlag != "" {
		cfg.RequestContext = *contextFlag
	}
	if *typeFlag != "" {
		cfg.RequestType = *typeFlag
	}
	if *requestsFlag != "" {
		cfg.RequestsPath = *requestsFlag
	}
	if len(rulesFlag) > 0 {
		cfg.RuleFiles = rulesFlag
	}
	if len(hostsFlag) > 0 {
		cfg.HostFiles = hostsFlag
	}
	if *verboseFlag {
		cfg.Verbose = true
	}

	logger.SetLevel(logger.GetLevelFromString(cfg.LogLevel))
	if *debugMode {
		logger.SetLevel(logger.DEBUG)
		logger.Debug("Debug logging enabled")
	}

	if *historySummary {
		printHistorySummary(cfg)
		os.Exit(0)
	}

	mode, err := cfg.Mode()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	logger.Debug("Invocation mode: %d, rule files: %d, host lists: %d",
		mode, len(cfg.RuleFiles), len(cfg.HostFiles))

	return cfg, mode
}

// run loads the rule sources, builds the engine and checks either the single
// flag-described request or the whole batch stream.
func run(cfg *config.Config, mode config.Mode) int {
	ctx := context.Background()

	var sources []engine.RuleSource
	if len(cfg.RuleFiles) == 0 {
		sources = engine.DefaultRuleSources()
		logger.Debug("No rule files supplied, using the bundled lists")
	} else {
		var err error
		sources, err = engine.LoadRuleSources(cfg.RuleFiles)
		if err != nil {
			logger.Error("%v", checker.NewCheckError(checker.ErrCodeRuleSourceLoadFailed,
				"failed to load rule sources", err))
			return 1
		}
	}

	eng, err := engine.New(sources)
	if err != nil {
		logger.Error("%v", checker.NewCheckError(checker.ErrCodeEngineInitFailed,
			"failed to build matching engine", err))
		return 1
	}
	defer func() {
		if closeErr := eng.Close(); closeErr != nil {
			logger.Warn("Error closing engine: %v", closeErr)
		}
	}()

	hosts, err := hostlist.New(cfg.HostFiles)
	if err != nil {
		logger.Error("%v", checker.NewCheckError(checker.ErrCodeHostListLoadFailed,
			"failed to load host lists", err))
		return 1
	}

	recorder, err := history.NewRecorderFactory().CreateRecorder(historyConfig(cfg))
	if err != nil {
		logger.Error("%v", checker.NewCheckError(checker.ErrCodeHistoryInitFailed,
			"failed to initialize check history", err))
		return 1
	}
	defer func() {
		if closeErr := recorder.Close(); closeErr != nil {
			logger.Warn("Error closing history recorder: %v", closeErr)
		}
	}()

	runner := checker.NewRunner(eng, hosts, recorder, os.Stdout, cfg.Verbose)

	switch mode {
	case config.ModeSingle:
		runner.CheckSingle(ctx, checker.Request{
			URL:     cfg.RequestURL,
			Context: cfg.RequestContext,
			Type:    cfg.RequestType,
		})
	case config.ModeBatch:
		input, closeInput, err := openRequests(cfg.RequestsPath)
		if err != nil {
			logger.Error("%v", checker.NewCheckError(checker.ErrCodeRequestsOpenFailed,
				"failed to open requests input", err))
			return 1
		}
		defer closeInput()

		if err := runner.RunBatch(ctx, input); err != nil {
			logger.Error("%v", err)
			return 1
		}
	}

	return runner.ExitCode()
}

// openRequests opens the batch input; "-" denotes standard input.
func openRequests(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}

	cleanPath := filepath.Clean(path)
	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, nil, err
	}
	closeFile := func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.Error("Error closing requests file: %v", closeErr)
		}
	}
	return file, closeFile, nil
}

// historyConfig maps the resolved configuration onto the recorder factory's
// own config type.
func historyConfig(cfg *config.Config) *history.Config {
	return &history.Config{
		Enabled:       cfg.History.Enabled,
		Backend:       cfg.History.Backend,
		SQLitePath:    cfg.History.SQLitePath,
		PostgresDSN:   cfg.History.PostgresDSN,
		FlushInterval: cfg.History.FlushInterval,
	}
}

// printHistorySummary prints the aggregate counts recorded so far as JSON.
func printHistorySummary(cfg *config.Config) {
	if !cfg.History.Enabled {
		logger.Fatal("Check history is not enabled; set history.enabled in the config file or BLOCKCHECK_HISTORY_ENABLED")
	}

	recorder, err := history.NewRecorderFactory().CreateRecorder(historyConfig(cfg))
	if err != nil {
		logger.Fatal("Failed to open check history: %v", err)
	}
	defer func() {
		if closeErr := recorder.Close(); closeErr != nil {
			logger.Warn("Error closing history recorder: %v", closeErr)
		}
	}()

	summary, err := recorder.Summary(context.Background())
	if err != nil {
		logger.Fatal("Failed to query check history: %v", err)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		logger.Fatal("Failed to serialize history summary: %v", err)
	}
	fmt.Println(string(data))
}

// loadEnvFile reads a .env-style file and sets environment variables
func loadEnvFile(path string) error {
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		absPath, err := filepath.Abs(cleanPath)
		if err != nil {
			return fmt.Errorf("invalid file path: %w", err)
		}
		cleanPath = absPath
	}
	f, err := os.Open(cleanPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Error("Error closing env file: %v", closeErr)
		}
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if setErr := os.Setenv(key, val); setErr != nil {
			return setErr
		}
	}
	return scanner.Err()
}
