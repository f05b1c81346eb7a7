// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records compression runs in a SQLite database and
// exports them as YAML or JSON.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdftools/pkg/types"
)

const (
	dbFile = "history.db"

	// DefaultListLimit bounds List when no limit is given.
	DefaultListLimit = 20
)

// Store manages the run history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens or creates cfg.Dir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("history directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createSchema creates the runs table. Start times are stored as Unix
// nanoseconds so ordering is exact within a second.
func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			file TEXT NOT NULL,
			strategy TEXT NOT NULL,
			mode TEXT NOT NULL,
			requested INTEGER NOT NULL,
			percentage INTEGER NOT NULL,
			tier TEXT,
			original_size INTEGER NOT NULL,
			predicted_size INTEGER NOT NULL,
			result_size INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			started_ns INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_ns ON runs(started_ns)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run, assigning an ID and start time when they are unset.
func (s *Store) Record(ctx context.Context, run *types.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now()
	}
	if run.Status == "" {
		run.Status = types.RunSucceeded
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, file, strategy, mode, requested, percentage, tier,
			original_size, predicted_size, result_size, attempts, status, error,
			started_ns, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.File, string(run.Strategy), string(run.Mode), run.Requested,
		run.Percentage, string(run.Tier), run.OriginalSize, run.PredictedSize,
		run.ResultSize, run.Attempts, string(run.Status), run.Error,
		run.StartedAt.UnixNano(), int64(run.Duration),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of runs; <= 0 uses DefaultListLimit.
	Limit int
	// Status, when set, selects only runs that ended that way.
	Status types.RunStatus
}

// List returns runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.Run, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.query(ctx, opts.Status, limit)
}

// All returns every run, oldest first.
func (s *Store) All(ctx context.Context) ([]types.Run, error) {
	runs, err := s.query(ctx, "", -1)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs, nil
}

func (s *Store) query(ctx context.Context, status types.RunStatus, limit int) ([]types.Run, error) {
	q := `SELECT id, file, strategy, mode, requested, percentage, tier,
			original_size, predicted_size, result_size, attempts, status, error,
			started_ns, duration_ns
		FROM runs`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, string(status))
	}
	q += ` ORDER BY started_ns DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var (
			r                           types.Run
			strategy, mode, tier, state string
			errMsg                      sql.NullString
			started, duration           int64
		)
		if err := rows.Scan(&r.ID, &r.File, &strategy, &mode, &r.Requested,
			&r.Percentage, &tier, &r.OriginalSize, &r.PredictedSize,
			&r.ResultSize, &r.Attempts, &state, &errMsg, &started, &duration); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Strategy = types.Strategy(strategy)
		r.Mode = types.RequestMode(mode)
		r.Tier = types.Tier(tier)
		r.Status = types.RunStatus(state)
		r.Error = errMsg.String
		r.Duration = time.Duration(duration)
		r.StartedAt = time.Unix(0, started).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Summary aggregates all recorded runs.
type Summary struct {
	Runs          int   `json:"runs" yaml:"runs"`
	Succeeded     int   `json:"succeeded" yaml:"succeeded"`
	Failed        int   `json:"failed" yaml:"failed"`
	OriginalBytes int64 `json:"original_bytes" yaml:"original_bytes"`
	ResultBytes   int64 `json:"result_bytes" yaml:"result_bytes"`
}

// Saved returns the bytes removed by successful runs.
func (s Summary) Saved() int64 {
	return s.OriginalBytes - s.ResultBytes
}

// Summarize computes totals over all runs. Byte totals count successful
// runs only.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*),
			coalesce(sum(status = ?), 0),
			coalesce(sum(status = ?), 0),
			coalesce(sum(CASE WHEN status = ? THEN original_size END), 0),
			coalesce(sum(CASE WHEN status = ? THEN result_size END), 0)
		FROM runs`,
		string(types.RunSucceeded), string(types.RunFailed),
		string(types.RunSucceeded), string(types.RunSucceeded),
	).Scan(&sum.Runs, &sum.Succeeded, &sum.Failed, &sum.OriginalBytes, &sum.ResultBytes)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing runs: %w", err)
	}
	return sum, nil
}
