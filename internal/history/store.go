// Package history persists verification runs in a local SQLite database so
// that flaky or regressing documentation commands can be spotted over time.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/paver/internal/models"
	"github.com/harrison/paver/internal/report"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape.
const schemaVersion = 1

// Run summarizes one recorded verification run.
type Run struct {
	ID                string        `json:"id"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration_ns"`
	DocumentsChecked  int           `json:"documents_checked"`
	DocumentsVerified int           `json:"documents_verified"`
	CommandsPassed    int           `json:"commands_passed"`
	CommandsFailed    int           `json:"commands_failed"`
	CommandsTimedOut  int           `json:"commands_timed_out"`
	Success           bool          `json:"success"`
}

// CommandRecord is one stored command outcome.
type CommandRecord struct {
	RunID    string         `json:"run_id"`
	Document string         `json:"document"`
	Position int            `json:"position"`
	Command  string         `json:"command"`
	Outcome  models.Outcome `json:"outcome"`
	ExitCode int            `json:"exit_code"`
	Duration time.Duration  `json:"duration_ns"`
}

// CommandStats aggregates the outcomes of one command across runs.
type CommandStats struct {
	Document string `json:"document"`
	Command  string `json:"command"`
	Runs     int    `json:"runs"`
	Passed   int    `json:"passed"`
	Failed   int    `json:"failed"`
	TimedOut int    `json:"timed_out"`
}

// Flaky reports whether the command has both passed and not passed.
func (c CommandStats) Flaky() bool {
	return c.Passed > 0 && c.Passed < c.Runs
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the database at dbPath.
// ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// initSchema applies schema.sql once per schema version.
func (s *Store) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var current int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= schemaVersion {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// Record stores a verification batch and returns the new run id.
func (s *Store) Record(ctx context.Context, batch report.BatchReport, startedAt time.Time, duration time.Duration) (string, error) {
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO verify_runs
		(id, started_at, duration_ms, documents_checked, documents_verified, commands_passed, commands_failed, commands_timed_out, success)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, startedAt.UTC(), duration.Milliseconds(),
		batch.DocumentsChecked, batch.DocumentsVerified,
		batch.CommandsPassed, batch.CommandsFailed, batch.CommandsTimedOut,
		batch.Success(false),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO command_results
		(run_id, document, position, command, outcome, exit_code, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare command insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range batch.Documents {
		if doc.Verification == nil {
			continue
		}
		for i, res := range doc.Verification.Commands {
			if _, err := stmt.ExecContext(ctx, id, doc.Path, i, res.Command, string(res.Outcome), res.ExitCode, res.Duration.Milliseconds()); err != nil {
				return "", fmt.Errorf("insert command result: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, duration_ms, documents_checked, documents_verified,
		commands_passed, commands_failed, commands_timed_out, success
		FROM verify_runs ORDER BY started_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &durationMs, &r.DocumentsChecked, &r.DocumentsVerified,
			&r.CommandsPassed, &r.CommandsFailed, &r.CommandsTimedOut, &r.Success); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunCommands returns the command outcomes of one run in execution order.
func (s *Store) RunCommands(ctx context.Context, runID string) ([]CommandRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, document, position, command, outcome, exit_code, duration_ms
		FROM command_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query command results: %w", err)
	}
	defer rows.Close()

	var out []CommandRecord
	for rows.Next() {
		var c CommandRecord
		var outcome string
		var durationMs int64
		if err := rows.Scan(&c.RunID, &c.Document, &c.Position, &c.Command, &outcome, &c.ExitCode, &durationMs); err != nil {
			return nil, fmt.Errorf("scan command result: %w", err)
		}
		c.Outcome = models.Outcome(outcome)
		c.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats aggregates outcomes per (document, command) over all recorded runs,
// flaky commands first.
func (s *Store) Stats(ctx context.Context) ([]CommandStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document, command, COUNT(*),
		SUM(CASE WHEN outcome = 'pass' THEN 1 ELSE 0 END),
		SUM(CASE WHEN outcome = 'fail' THEN 1 ELSE 0 END),
		SUM(CASE WHEN outcome = 'timeout' THEN 1 ELSE 0 END)
		FROM command_results
		GROUP BY document, command
		ORDER BY (SUM(CASE WHEN outcome = 'pass' THEN 1 ELSE 0 END) > 0
		          AND SUM(CASE WHEN outcome = 'pass' THEN 1 ELSE 0 END) < COUNT(*)) DESC,
		         document, command`)
	if err != nil {
		return nil, fmt.Errorf("query command stats: %w", err)
	}
	defer rows.Close()

	var out []CommandStats
	for rows.Next() {
		var c CommandStats
		if err := rows.Scan(&c.Document, &c.Command, &c.Runs, &c.Passed, &c.Failed, &c.TimedOut); err != nil {
			return nil, fmt.Errorf("scan command stats: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
