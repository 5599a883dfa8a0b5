// Package service holds the application layer shared by the CLI and the
// HTTP API: loading both attendance files, running the reconciliation,
// keeping the current run, and recording each run in the ledger.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/canary-hr/attendance-reconciler/internal/adapters/sheets"
	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/reconciler"
	"github.com/canary-hr/attendance-reconciler/internal/domain/report"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/storage"
)

var (
	// ErrNoRun is returned by views of the current run before any run succeeded.
	ErrNoRun = errors.New("no reconciliation run yet")
	// ErrLedgerDisabled is returned by ledger queries when no store is configured.
	ErrLedgerDisabled = errors.New("run ledger is disabled")
)

// Source is one uploaded or opened attendance file.
type Source struct {
	Name   string
	Reader io.Reader
}

// RunRequest holds parameters for one reconciliation.
type RunRequest struct {
	Primary   Source
	Secondary Source
	Policy    reconciler.Policy
}

// LoadError reports which file failed to load.
type LoadError struct {
	Role attendance.Role
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s file %q: %v", e.Role, e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RunSnapshot is a completed run plus its bookkeeping. It is immutable once
// returned.
type RunSnapshot struct {
	ID            string          `json:"id"`
	StartedAt     time.Time       `json:"started_at"`
	Duration      time.Duration   `json:"duration"`
	PrimaryFile   string          `json:"primary_file"`
	SecondaryFile string          `json:"secondary_file"`
	Counts        report.Counts   `json:"counts"`
	Run           *reconciler.Run `json:"-"`
}

// ReconcileService manages reconciliation runs.
type ReconcileService struct {
	storage storage.Repository
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	current *RunSnapshot
}

// NewReconcileService creates a new service. store may be nil, which
// disables the run ledger.
func NewReconcileService(store storage.Repository, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		storage: store,
		logger:  logger,
		now:     time.Now,
	}
}

// Load reads one attendance file into raw rows.
func (s *ReconcileService) Load(ctx context.Context, role attendance.Role, src Source, opts sheets.Options) ([]attendance.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Reader == nil {
		return nil, &LoadError{Role: role, Name: src.Name, Err: errors.New("no file provided")}
	}

	table, err := sheets.Read(src.Reader, src.Name, opts)
	if err != nil {
		return nil, &LoadError{Role: role, Name: src.Name, Err: err}
	}

	s.logger.Debug("loaded attendance file",
		"role", role.String(),
		"file", src.Name,
		"rows", len(table.Rows),
		"headerless", table.Headerless,
	)

	return table.Rows, nil
}

// Run loads both files concurrently, reconciles them and makes the result
// the current run. On any error the previous current run is kept.
func (s *ReconcileService) Run(ctx context.Context, req RunRequest) (*RunSnapshot, error) {
	if err := req.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	started := s.now()
	opts := sheets.Options{StrictHeaders: req.Policy.StrictHeaders}

	var primaryRows, secondaryRows []attendance.RawRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.Load(gctx, attendance.Primary, req.Primary, opts)
		primaryRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.Load(gctx, attendance.Secondary, req.Secondary, opts)
		secondaryRows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("reconciliation aborted", "error", err)
		return nil, err
	}

	run := reconciler.Reconcile(primaryRows, secondaryRows, req.Policy)

	snap := &RunSnapshot{
		ID:            uuid.NewString(),
		StartedAt:     started,
		Duration:      s.now().Sub(started),
		PrimaryFile:   req.Primary.Name,
		SecondaryFile: req.Secondary.Name,
		Counts:        report.Count(run.Results, req.Policy.IncompleteBucket),
		Run:           run,
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	s.logger.Info("reconciliation completed",
		"run_id", snap.ID,
		"primary_rows", run.PrimaryCount,
		"secondary_rows", run.SecondaryCount,
		"total", snap.Counts.Total,
		"matched", snap.Counts.Matched,
		"mismatched", snap.Counts.Mismatched,
		"incomplete", snap.Counts.Incomplete,
		"duration", snap.Duration,
	)

	s.record(snap)

	return snap, nil
}

// record writes the ledger entry. A ledger failure does not fail the run.
func (s *ReconcileService) record(snap *RunSnapshot) {
	if s.storage == nil {
		return
	}

	policyJSON, err := json.Marshal(snap.Run.Policy)
	if err != nil {
		policyJSON = []byte("{}")
	}

	rec := &storage.RunRecord{
		ID:            snap.ID,
		StartedAt:     snap.StartedAt,
		DurationMS:    snap.Duration.Milliseconds(),
		PrimaryFile:   snap.PrimaryFile,
		SecondaryFile: snap.SecondaryFile,
		PrimaryRows:   snap.Run.PrimaryCount,
		SecondaryRows: snap.Run.SecondaryCount,
		Total:         snap.Counts.Total,
		Matched:       snap.Counts.Matched,
		Mismatched:    snap.Counts.Mismatched,
		Incomplete:    snap.Counts.Incomplete,
		PolicyJSON:    string(policyJSON),
	}

	if err := s.storage.SaveRun(rec); err != nil {
		s.logger.Error("failed to record run", "run_id", snap.ID, "error", err)
	}
}

// Current returns the most recent successful run.
func (s *ReconcileService) Current() (*RunSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoRun
	}
	return s.current, nil
}

// Results returns the current run and its results filtered by kind and
// search text. Counts on the snapshot cover the whole run.
func (s *ReconcileService) Results(kind report.Kind, q string) (*RunSnapshot, []reconciler.Result, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, nil, err
	}

	filtered := report.Filter(snap.Run.Results, kind, q, snap.Run.Policy.IncompleteBucket)
	return snap, filtered, nil
}

// Export writes the current run's full report as a workbook.
func (s *ReconcileService) Export(w io.Writer) error {
	snap, err := s.Current()
	if err != nil {
		return err
	}
	return sheets.WriteReport(w, snap.Run.Results)
}

// PingLedger checks the run ledger is reachable.
func (s *ReconcileService) PingLedger(ctx context.Context) error {
	if s.storage == nil {
		return ErrLedgerDisabled
	}
	if err := s.storage.Ping(ctx); err != nil {
		return fmt.Errorf("ping ledger: %w", err)
	}
	return nil
}

// History lists recent ledger entries, newest first.
func (s *ReconcileService) History(limit int) ([]*storage.RunRecord, error) {
	if s.storage == nil {
		return nil, ErrLedgerDisabled
	}
	return s.storage.ListRuns(limit)
}

// GetRun looks up one ledger entry.
func (s *ReconcileService) GetRun(id string) (*storage.RunRecord, error) {
	if s.storage == nil {
		return nil, ErrLedgerDisabled
	}
	return s.storage.GetRun(id)
}
