package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite access to the run ledger.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage opens (or creates) the ledger at dbPath and migrates it.
func NewStorage(dbPath string) (*Storage, error) {
	return NewStorageWithLogger(dbPath, slog.Default())
}

// NewStorageWithLogger is NewStorage with an explicit logger for migration output.
func NewStorageWithLogger(dbPath string, logger *slog.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun inserts or replaces a run record
func (s *Storage) SaveRun(run *RunRecord) error {
	if run == nil || run.ID == "" {
		return errors.New("run record requires an ID")
	}

	policy := run.PolicyJSON
	if policy == "" {
		policy = "{}"
	}

	query := `
	INSERT OR REPLACE INTO reconcile_runs
	(id, started_at, duration_ms, primary_file, secondary_file,
	 primary_rows, secondary_rows, total, matched, mismatched, incomplete,
	 policy_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.ID,
		run.StartedAt.UTC(),
		run.DurationMS,
		run.PrimaryFile,
		run.SecondaryFile,
		run.PrimaryRows,
		run.SecondaryRows,
		run.Total,
		run.Matched,
		run.Mismatched,
		run.Incomplete,
		policy,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

const runColumns = `id, started_at, duration_ms, primary_file, secondary_file,
	primary_rows, secondary_rows, total, matched, mismatched, incomplete, policy_json`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var r RunRecord
	err := row.Scan(
		&r.ID,
		&r.StartedAt,
		&r.DurationMS,
		&r.PrimaryFile,
		&r.SecondaryFile,
		&r.PrimaryRows,
		&r.SecondaryRows,
		&r.Total,
		&r.Matched,
		&r.Mismatched,
		&r.Incomplete,
		&r.PolicyJSON,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(id string) (*RunRecord, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM reconcile_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first
func (s *Storage) ListRuns(limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(`SELECT `+runColumns+` FROM reconcile_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*RunRecord, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SchemaVersion reports the applied migration version.
func (s *Storage) SchemaVersion(ctx context.Context) (int64, error) {
	return schemaVersion(ctx, s.db)
}

// Ping checks the ledger database is reachable, bounded by a short timeout.
func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}
