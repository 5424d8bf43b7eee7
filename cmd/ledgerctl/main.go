// Package main is the tradebook admin CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tradebook/internal/app"
	"tradebook/internal/config"
	"tradebook/pkg/logger"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Administrative commands for the tradebook ledger",
	Long: `ledgerctl runs maintenance tasks against the tradebook storage:
schema migrations, demo data, stock reconciliation and API tokens.

Configuration is read from the environment and an optional .env file,
the same way the server reads it.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: configuration, a logger and open storage.
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	storage *app.Storage
}

func openEnv(ctx context.Context) (context.Context, *env, error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: true})
	if err != nil {
		return ctx, nil, fmt.Errorf("init logger: %w", err)
	}
	ctx = logger.WithLogger(ctx, log)

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return ctx, nil, err
	}
	return ctx, &env{cfg: cfg, log: log, storage: storage}, nil
}

func (e *env) Close() {
	e.storage.Close()
	_ = e.log.Sync()
}
