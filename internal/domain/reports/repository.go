package reports

import (
	"context"

	"tradebook/internal/core/types"
)

// Repository provides the aggregates reports cannot get from document repositories.
type Repository interface {
	// PartyTotals sums credit-mode invoices by direction and all payments, per party.
	// Parties without documents may be omitted.
	PartyTotals(ctx context.Context) ([]PartyTotals, error)

	// InvoiceTotals sums grand totals of all invoices by direction.
	InvoiceTotals(ctx context.Context) (InvoiceTotals, error)

	// CountLowStock counts items whose stock is below threshold.
	CountLowStock(ctx context.Context, threshold types.Quantity) (int, error)

	// RecentInvoices returns the most recently created invoices.
	RecentInvoices(ctx context.Context, limit int) ([]RecentInvoice, error)
}
