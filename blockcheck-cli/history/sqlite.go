package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codefionn/blockcheck/blockcheck-cli/logger"
)

// SQLiteRecorder implements Recorder using SQLite as the backend
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder creates a new SQLite-based history recorder
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	recorder := &SQLiteRecorder{db: db}
	if err := recorder.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("Initialized history recorder sqlite")

	return recorder, nil
}

// initSchema creates the necessary tables if they don't exist
func (s *SQLiteRecorder) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		context TEXT NOT NULL,
		request_type TEXT NOT NULL,
		matched INTEGER NOT NULL,
		filter TEXT,
		filter_list TEXT,
		checked_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
	CREATE INDEX IF NOT EXISTS idx_checks_url ON checks(url);

	CREATE TABLE IF NOT EXISTS engine_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		context TEXT NOT NULL,
		request_type TEXT NOT NULL,
		message TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	return nil
}

// RecordCheck persists one check verdict
func (s *SQLiteRecorder) RecordCheck(ctx context.Context, record CheckRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checks (url, context, request_type, matched, filter, filter_list, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.URL, record.Context, record.RequestType, record.Matched,
		record.Filter, record.FilterList, record.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to record check: %w", err)
	}
	return nil
}

// RecordEngineError persists a per-request engine failure
func (s *SQLiteRecorder) RecordEngineError(ctx context.Context, url, contextURL, requestType, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO engine_errors (url, context, request_type, message, occurred_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		url, contextURL, requestType, message)
	if err != nil {
		return fmt.Errorf("failed to record engine error: %w", err)
	}
	return nil
}

// Summary returns aggregate counts over the recorded history
func (s *SQLiteRecorder) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(matched), 0) FROM checks`).
		Scan(&summary.TotalChecks, &summary.Matched)
	if err != nil {
		return nil, fmt.Errorf("failed to query check summary: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM engine_errors`).
		Scan(&summary.Errors)
	if err != nil {
		return nil, fmt.Errorf("failed to query error summary: %w", err)
	}

	return summary, nil
}

// Close closes the underlying database
func (s *SQLiteRecorder) Close() error {
	return s.db.Close()
}
