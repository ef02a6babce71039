package history

import (
	"fmt"
	"time"
)

// Config controls which recorder backend the factory creates.
type Config struct {
	Enabled       bool
	Backend       string // "sqlite", "postgres" or "dummy"
	SQLitePath    string
	PostgresDSN   string
	FlushInterval int // seconds between buffered flushes
}

// RecorderFactory creates history recorders based on configuration
type RecorderFactory struct{}

// NewRecorderFactory creates a new recorder factory
func NewRecorderFactory() *RecorderFactory {
	return &RecorderFactory{}
}

// CreateRecorder creates a history recorder based on the provided configuration
func (f *RecorderFactory) CreateRecorder(cfg *Config) (Recorder, error) {
	if !cfg.Enabled {
		return NewDummyRecorder(), nil
	}

	var recorder Recorder
	var err error

	switch cfg.Backend {
	case "sqlite", "":
		sqlitePath := cfg.SQLitePath
		if sqlitePath == "" {
			sqlitePath = "blockcheck_history.db"
		}
		recorder, err = NewSQLiteRecorder(sqlitePath)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres-dsn is required for postgres backend")
		}
		recorder, err = NewPostgreSQLRecorder(cfg.PostgresDSN)
	case "dummy":
		recorder = NewDummyRecorder()
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", cfg.Backend)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s recorder: %w", cfg.Backend, err)
	}

	flushInterval := time.Duration(cfg.FlushInterval) * time.Second
	return NewBufferedRecorder(recorder, flushInterval), nil
}
