package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tradebook/internal/app"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo parties and items",
	Long: `Seed inserts a small set of customers, suppliers and stock items so a
fresh database can be explored through the API. It does not check for
existing rows, so running it twice creates duplicates.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type seedItem struct {
	name, unit     string
	purchase, sale string
	stock          string
}

var (
	seedParties = []struct {
		name, mobile string
		kind         party.Type
		opening      string
	}{
		{"Sharma General Store", "9810000001", party.TypeCustomer, "0"},
		{"Verma Kirana", "9810000002", party.TypeCustomer, "1250.50"},
		{"Gupta Wholesale", "9810000003", party.TypeSupplier, "8000"},
		{"Metro Distributors", "9810000004", party.TypeSupplier, "0"},
	}

	seedItems = []seedItem{
		{"Basmati Rice 5kg", "bag", "410", "495", "40"},
		{"Sunflower Oil 1L", "btl", "118", "145", "120"},
		{"Toor Dal", "kg", "96", "120", "75.5"},
		{"Bath Soap", "pcs", "22", "30", "200"},
	}
)

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx, e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	svc := app.NewServices(e.storage, e.cfg, nil)

	for _, sp := range seedParties {
		p := party.NewParty(sp.name, sp.mobile, sp.kind, types.MustMoney(sp.opening))
		if err := svc.Parties.Create(ctx, p); err != nil {
			return fmt.Errorf("seed party %q: %w", sp.name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "party  %s  %s\n", p.ID, p.Name)
	}

	for _, si := range seedItems {
		it := item.NewItem(si.name, si.unit, types.MustQuantity(si.stock))
		it.PurchaseRate = types.MustMoney(si.purchase)
		it.SaleRate = types.MustMoney(si.sale)
		if err := svc.Items.Create(ctx, it); err != nil {
			return fmt.Errorf("seed item %q: %w", si.name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "item   %s  %s\n", it.ID, it.Name)
	}

	e.log.Infow("seed complete", "parties", len(seedParties), "items", len(seedItems))
	return nil
}
