package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible build.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run is one reconciliation pass.
type Run struct {
	ID         string
	Trigger    string
	StartedAt  time.Time
	FinishedAt time.Time
	Moved      int
	Failures   int
	Error      string
}

// Placement is one episode file moved into the library.
type Placement struct {
	RunID      string
	Show       string
	Season     int
	Episode    int
	SourcePath string
	DestPath   string
	Renamed    bool
	PlacedAt   time.Time
}

// Store persists runs and placements in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return tx.Commit()
}

// BeginRun records the start of a pass.
func (s *Store) BeginRun(ctx context.Context, id, trigger string, started time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, started_at) VALUES (?, ?, ?)`,
		id, trigger, formatTime(started))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of a pass.
func (s *Store) FinishRun(ctx context.Context, id string, finished time.Time, moved, failures int, runErr error) error {
	var errText sql.NullString
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, moved = ?, failures = ?, error = ? WHERE id = ?`,
		formatTime(finished), moved, failures, errText, id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update run %s: no such run", id)
	}
	return nil
}

// RecordPlacement appends a moved episode to the ledger.
func (s *Store) RecordPlacement(ctx context.Context, p Placement) error {
	placed := p.PlacedAt
	if placed.IsZero() {
		placed = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO placements (run_id, show, season, episode, source_path, dest_path, renamed, placed_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RunID, p.Show, p.Season, p.Episode, p.SourcePath, p.DestPath, p.Renamed, formatTime(placed))
	if err != nil {
		return fmt.Errorf("insert placement: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, started_at, finished_at, moved, failures, error
         FROM runs ORDER BY started_at DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished sql.NullString
			errText  sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Trigger, &started, &finished, &run.Moved, &run.Failures, &errText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		run.Error = errText.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecentPlacements returns the newest placements first.
func (s *Store) RecentPlacements(ctx context.Context, limit int) ([]Placement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, show, season, episode, source_path, dest_path, renamed, placed_at
         FROM placements ORDER BY placed_at DESC, id DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var placements []Placement
	for rows.Next() {
		var (
			p      Placement
			placed string
		)
		if err := rows.Scan(&p.RunID, &p.Show, &p.Season, &p.Episode, &p.SourcePath, &p.DestPath, &p.Renamed, &placed); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		p.PlacedAt = parseTime(placed)
		placements = append(placements, p)
	}
	return placements, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 50
	}
	return limit
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
