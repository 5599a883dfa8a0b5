package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/canary-hr/attendance-reconciler/internal/cli"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/config"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	flags := cli.ParseServeFlags()

	cfg := config.LoadOrEnv_WithPath(flags.Config)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
