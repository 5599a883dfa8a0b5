package cli

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/canary-hr/attendance-reconciler/internal/api"
	"github.com/canary-hr/attendance-reconciler/internal/application/service"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/config"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/logging"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/storage"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int
	Config  string
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = config api.port)")
	flag.StringVar(&flags.Config, "config", "config.yaml", "Config file")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// APIConfig builds the server config from application config.
func APIConfig(cfg *config.Config, flags *ServeFlags) api.Config {
	apiCfg := api.DefaultConfig()
	apiCfg.Port = cfg.API.Port
	if flags != nil && flags.Port > 0 {
		apiCfg.Port = flags.Port
	}
	if len(cfg.API.AllowedOrigins) > 0 {
		apiCfg.AllowedOrigins = cfg.API.AllowedOrigins
	}
	if cfg.API.MaxUploadMB > 0 {
		apiCfg.MaxUploadBytes = int64(cfg.API.MaxUploadMB) << 20
	}
	apiCfg.ExportFileName = cfg.Export.FileName
	apiCfg.DefaultPolicy = cfg.Reconcile.Policy()
	return apiCfg
}

// RunServe runs the API server.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	// Set up logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, logging.SystemAPI)

	// Initialize the run ledger
	var store storage.Repository
	if cfg.Storage.DatabasePath != "" {
		s, err := storage.NewStorageWithLogger(cfg.Storage.DatabasePath, logger.With("system", logging.SystemStorage))
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	svc := service.NewReconcileService(store, logger.With("system", logging.SystemReconcile))

	// Create and start server
	server := api.NewServer(APIConfig(cfg, flags), svc, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
