package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/codefionn/blockcheck/blockcheck-cli/logger"
)

// PostgreSQLRecorder implements Recorder using PostgreSQL
type PostgreSQLRecorder struct {
	db *sql.DB
}

// NewPostgreSQLRecorder creates a new PostgreSQL-based history recorder
func NewPostgreSQLRecorder(connectionString string) (*PostgreSQLRecorder, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	recorder := &PostgreSQLRecorder{db: db}
	if err := recorder.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("Initialized history recorder postgresql")

	return recorder, nil
}

// initSchema creates the necessary tables if they don't exist
func (p *PostgreSQLRecorder) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checks (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL,
		context TEXT NOT NULL,
		request_type TEXT NOT NULL,
		matched BOOLEAN NOT NULL,
		filter TEXT,
		filter_list TEXT,
		checked_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
	CREATE INDEX IF NOT EXISTS idx_checks_url ON checks(url);

	CREATE TABLE IF NOT EXISTS engine_errors (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL,
		context TEXT NOT NULL,
		request_type TEXT NOT NULL,
		message TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	return nil
}

// RecordCheck persists one check verdict
func (p *PostgreSQLRecorder) RecordCheck(ctx context.Context, record CheckRecord) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO checks (url, context, request_type, matched, filter, filter_list, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.URL, record.Context, record.RequestType, record.Matched,
		record.Filter, record.FilterList, record.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to record check: %w", err)
	}
	return nil
}

// RecordEngineError persists a per-request engine failure
func (p *PostgreSQLRecorder) RecordEngineError(ctx context.Context, url, contextURL, requestType, message string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO engine_errors (url, context, request_type, message)
		VALUES ($1, $2, $3, $4)`,
		url, contextURL, requestType, message)
	if err != nil {
		return fmt.Errorf("failed to record engine error: %w", err)
	}
	return nil
}

// Summary returns aggregate counts over the recorded history
func (p *PostgreSQLRecorder) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN matched THEN 1 ELSE 0 END), 0) FROM checks`).
		Scan(&summary.TotalChecks, &summary.Matched)
	if err != nil {
		return nil, fmt.Errorf("failed to query check summary: %w", err)
	}

	err = p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM engine_errors`).
		Scan(&summary.Errors)
	if err != nil {
		return nil, fmt.Errorf("failed to query error summary: %w", err)
	}

	return summary, nil
}

// Close closes the underlying database
func (p *PostgreSQLRecorder) Close() error {
	return p.db.Close()
}
