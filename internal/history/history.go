// Package history keeps a durable record of sync runs in SQLite so that
// "argus sync --history" can show what happened, when, and how long it took.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	syncpkg "github.com/riptano/argus/internal/sync"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id            TEXT PRIMARY KEY,
	connection    TEXT NOT NULL,
	project       TEXT NOT NULL,
	started_at    TEXT NOT NULL,
	duration_ms   INTEGER NOT NULL,
	updated_count INTEGER NOT NULL,
	removed_count INTEGER NOT NULL,
	error         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs (started_at DESC);
`

// Run is one recorded sync attempt.
type Run struct {
	ID           string
	Connection   string
	Project      string
	StartedAt    time.Time
	Duration     time.Duration
	UpdatedCount int
	RemovedCount int
	Error        string
}

// Store records and lists sync runs. It implements sync.Recorder.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the history database at the given path.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// SQLite doesn't handle multiple writers well
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one sync outcome. Satisfies sync.Recorder.
func (s *Store) Record(result *syncpkg.Result, syncErr error) error {
	errText := ""
	if syncErr != nil {
		errText = syncErr.Error()
	}

	_, err := s.db.Exec(
		`INSERT INTO sync_runs (id, connection, project, started_at, duration_ms, updated_count, removed_count, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		result.Connection,
		result.Project,
		time.Now().UTC().Format(time.RFC3339),
		result.Duration.Milliseconds(),
		len(result.UpdatedKeys),
		len(result.RemovedKeys),
		errText,
	)
	if err != nil {
		return fmt.Errorf("recording sync run: %w", err)
	}
	return nil
}

// Recent returns the newest runs, most recent first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, connection, project, started_at, duration_ms, updated_count, removed_count, error
		 FROM sync_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&run.ID, &run.Connection, &run.Project, &startedAt,
			&durationMS, &run.UpdatedCount, &run.RemovedCount, &run.Error); err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}

		run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt started_at %q: %w", startedAt, err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
