package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/canary-hr/attendance-reconciler/internal/adapters/sheets"
	"github.com/canary-hr/attendance-reconciler/internal/application/service"
	"github.com/canary-hr/attendance-reconciler/internal/domain/report"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/config"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/logging"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/storage"
)

// RunReconcile reconciles the two files named in flags, prints the summary
// and selected rows to stdout, and saves the report workbook.
func RunReconcile(ctx context.Context, cfg *config.Config, flags *ReconcileFlags, stdout io.Writer) error {
	policy := flags.ApplyTo(cfg.Reconcile.Policy())
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}

	kind, err := report.ParseKind(flags.Kind)
	if err != nil {
		return err
	}

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, logging.SystemReconcile)

	var store storage.Repository
	if !flags.NoLedger && cfg.Storage.DatabasePath != "" {
		s, err := storage.NewStorageWithLogger(cfg.Storage.DatabasePath, logger.With("system", logging.SystemStorage))
		if err != nil {
			return fmt.Errorf("failed to open run ledger: %w", err)
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	primary, err := os.Open(flags.Primary)
	if err != nil {
		return err
	}
	defer func() { _ = primary.Close() }()

	secondary, err := os.Open(flags.Secondary)
	if err != nil {
		return err
	}
	defer func() { _ = secondary.Close() }()

	PrintHeader(stdout, filepath.Base(flags.Primary), filepath.Base(flags.Secondary))
	PrintConfiguration(stdout, policy)

	svc := service.NewReconcileService(store, logger)
	snap, err := svc.Run(ctx, service.RunRequest{
		Primary:   service.Source{Name: filepath.Base(flags.Primary), Reader: primary},
		Secondary: service.Source{Name: filepath.Base(flags.Secondary), Reader: secondary},
		Policy:    policy,
	})
	if err != nil {
		return err
	}

	_, rows, err := svc.Results(kind, flags.Query)
	if err != nil {
		return err
	}
	PrintResults(stdout, rows)
	PrintSummary(stdout, snap)

	out := flags.Out
	if out == "" {
		out = cfg.Export.FileName
	}
	if err := sheets.SaveReport(out, snap.Run.Results); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	logger.Info("report saved", slog.String("path", out))
	fmt.Fprintf(stdout, "\nReport written to %s\n", out)

	return nil
}
