package memory

import (
	"context"
	"slices"

	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/reports"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	store *Store
}

var _ reports.Repository = (*ReportRepo)(nil)

// Reports returns the report aggregates repository.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{store: s} }

func (r *ReportRepo) PartyTotals(ctx context.Context) ([]reports.PartyTotals, error) {
	var out []reports.PartyTotals
	err := r.store.read(ctx, "report.party_totals", func(st *state) error {
		index := make(map[id.ID]int)
		row := func(partyID id.ID) *reports.PartyTotals {
			i, ok := index[partyID]
			if !ok {
				i = len(out)
				index[partyID] = i
				out = append(out, reports.PartyTotals{
					PartyID:         partyID,
					CreditSales:     types.Zero(),
					CreditPurchases: types.Zero(),
					Payments:        types.Zero(),
				})
			}
			return &out[i]
		}

		for _, inv := range st.invoices {
			if !inv.IsCredit() {
				continue
			}
			t := row(inv.PartyID)
			if inv.Type == invoice.TypeSales {
				t.CreditSales = t.CreditSales.Add(inv.GrandTotal)
			} else {
				t.CreditPurchases = t.CreditPurchases.Add(inv.GrandTotal)
			}
		}
		for _, p := range st.payments {
			t := row(p.PartyID)
			t.Payments = t.Payments.Add(p.Amount)
		}
		return nil
	})
	return out, err
}

func (r *ReportRepo) InvoiceTotals(ctx context.Context) (reports.InvoiceTotals, error) {
	totals := reports.InvoiceTotals{Sales: types.Zero(), Purchases: types.Zero()}
	err := r.store.read(ctx, "report.invoice_totals", func(st *state) error {
		for _, inv := range st.invoices {
			if inv.Type == invoice.TypeSales {
				totals.Sales = totals.Sales.Add(inv.GrandTotal)
			} else {
				totals.Purchases = totals.Purchases.Add(inv.GrandTotal)
			}
		}
		return nil
	})
	return totals, err
}

func (r *ReportRepo) CountLowStock(ctx context.Context, threshold types.Quantity) (int, error) {
	var n int
	err := r.store.read(ctx, "report.low_stock", func(st *state) error {
		for _, it := range st.items {
			if it.Stock < threshold {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ReportRepo) RecentInvoices(ctx context.Context, limit int) ([]reports.RecentInvoice, error) {
	var out []reports.RecentInvoice
	err := r.store.read(ctx, "report.recent", func(st *state) error {
		recent := slices.Clone(st.invoices)
		slices.Reverse(recent)
		for _, inv := range recent[:min(limit, len(recent))] {
			out = append(out, reports.RecentInvoice{
				ID:         inv.ID,
				InvoiceNo:  inv.InvoiceNo,
				PartyName:  inv.PartyName,
				Type:       inv.Type,
				GrandTotal: inv.GrandTotal,
				Date:       inv.Date,
			})
		}
		return nil
	})
	return out, err
}
