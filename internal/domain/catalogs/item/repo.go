package item

import (
	"context"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	Create(ctx context.Context, it *Item) error

	// GetByID returns a NotFound AppError when the item does not exist.
	GetByID(ctx context.Context, id id.ID) (*Item, error)

	// Update writes master data only; the stock column is never touched.
	Update(ctx context.Context, it *Item) error

	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error)
}
