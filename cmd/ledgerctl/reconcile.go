package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"tradebook/internal/app"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Check item stock against the movement register",
	Long: `Reconcile compares every item's stored stock with its opening stock plus
the sum of its stock movements, and lists invoices whose stock effects
were never applied. The report is printed as JSON.

The command exits non-zero when any discrepancy is found.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx, e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	svc := app.NewServices(e.storage, e.cfg, nil)
	report, err := svc.Stock.Reconcile(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if !report.Clean() {
		return errors.New("stock register is inconsistent")
	}
	return nil
}
