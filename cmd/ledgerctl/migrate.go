package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tradebook/internal/config"
	"tradebook/internal/infrastructure/storage/postgres/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Example: `  # Apply everything pending
  ledgerctl migrate

  # Only list what would run
  ledgerctl migrate --status`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("status", false, "List pending migrations without applying them")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx, e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.StorageDriver != config.DriverPostgres {
		return errors.New("migrate requires STORAGE_DRIVER=postgres")
	}

	migrator, err := migrations.NewFromPool(e.storage.Pool)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	statusOnly, _ := cmd.Flags().GetBool("status")
	if statusOnly {
		pending, err := migrator.Pending(ctx)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		}
		for _, name := range pending {
			fmt.Fprintf(cmd.OutOrStdout(), "pending  %s\n", name)
		}
		return nil
	}

	versions, err := migrator.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, v := range versions {
		fmt.Fprintf(cmd.OutOrStdout(), "applied  %s\n", v)
	}
	e.log.Infow("migrations complete", "applied", len(versions))
	return nil
}
