// Package history provides a SQLite-backed log of pipeline runs. Each
// processed promo — successful or not — leaves one row, so operators can
// review what the system did across restarts without querying MongoDB.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Outcome classifies a pipeline run.
type Outcome string

const (
	// OutcomeSuccess means the promo was fully processed and stored.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure means a pipeline stage failed and nothing was stored.
	OutcomeFailure Outcome = "failure"
)

// Run is one recorded pipeline execution.
type Run struct {
	// PromoID is the hex ID of the stored record. Empty on failure.
	PromoID string
	// Headline is the extracted headline, when extraction succeeded.
	Headline string
	// Outcome classifies the run.
	Outcome Outcome
	// Detail holds the failure message on failed runs.
	Detail string
	// Duration is how long the run took.
	Duration time.Duration
	// CreatedAt is when the run was recorded.
	CreatedAt time.Time
}

// RunStore persists and retrieves pipeline run records. Implementations must
// be safe for concurrent use.
type RunStore interface {
	// Append persists a single run record.
	Append(ctx context.Context, run *Run) error
	// Recent returns the most recent n runs, newest-first.
	Recent(ctx context.Context, n int) ([]Run, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a RunStore backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultDBPath returns the default path for the run history database.
// It resolves to ~/.promoforge/history.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("history: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".promoforge")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("history: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    promo_id    TEXT    NOT NULL DEFAULT '',
    headline    TEXT    NOT NULL DEFAULT '',
    outcome     TEXT    NOT NULL CHECK(outcome IN ('success','failure')),
    detail      TEXT    NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL,
    created_at  INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_runs_created
    ON runs (created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Append persists a single run record.
func (s *SQLiteStore) Append(ctx context.Context, run *Run) error {
	const q = `INSERT INTO runs (promo_id, headline, outcome, detail, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		run.PromoID, run.Headline, string(run.Outcome), run.Detail,
		run.Duration.Milliseconds(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// Recent returns the most recent n runs, newest-first.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Run, error) {
	const q = `
SELECT promo_id, headline, outcome, detail, duration_ms, created_at
FROM   runs
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var outcome string
		var durMS, ts int64
		if err := rows.Scan(&r.PromoID, &r.Headline, &outcome, &r.Detail, &durMS, &ts); err != nil {
			return nil, fmt.Errorf("history: recent scan: %w", err)
		}
		r.Outcome = Outcome(outcome)
		r.Duration = time.Duration(durMS) * time.Millisecond
		r.CreatedAt = time.Unix(ts, 0)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: recent rows: %w", err)
	}
	return runs, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("history: close: %w", err)
	}
	return nil
}
