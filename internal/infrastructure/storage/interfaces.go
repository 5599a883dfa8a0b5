package storage

import (
	"context"
	"errors"
)

// ErrRunNotFound is returned when a run ID is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 50

// Repository defines the run ledger.
// This interface allows swapping implementations (SQLite, in-memory)
// and makes testing with mocks straightforward.
type Repository interface {
	RunRepository
	Ping(ctx context.Context) error
	Close() error
}

// RunRepository records completed reconciliation runs
type RunRepository interface {
	// SaveRun inserts or replaces a run record
	SaveRun(run *RunRecord) error

	// GetRun retrieves a run by ID. Returns ErrRunNotFound if absent.
	GetRun(id string) (*RunRecord, error)

	// ListRuns returns the most recent runs, newest first
	ListRuns(limit int) ([]*RunRecord, error)
}
