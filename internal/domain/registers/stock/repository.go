package stock

import (
	"context"

	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
)

// Repository defines operations for the stock register.
type Repository interface {
	// AddStock atomically adds delta to the item's stock at the storage layer.
	// found is false when the item does not exist; nothing is written then.
	AddStock(ctx context.Context, itemID id.ID, delta types.Quantity) (itemName string, found bool, err error)

	// CreateMovements batch inserts movements.
	CreateMovements(ctx context.Context, movements []Movement) error

	// ListMovements returns movements newest first.
	ListMovements(ctx context.Context, filter MovementFilter) (domain.ListResult[Movement], error)

	// ListItemStock returns every item ordered by name.
	ListItemStock(ctx context.Context) ([]ItemStock, error)

	// ListItemBalances returns every item with the sum of its movements.
	ListItemBalances(ctx context.Context) ([]ItemBalance, error)

	// ListUnappliedReferences returns numbers of invoices that have lines
	// referencing existing items but no movement at all.
	ListUnappliedReferences(ctx context.Context) ([]string, error)
}
