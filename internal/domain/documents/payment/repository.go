package payment

import (
	"context"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// ListFilter narrows payment lists.
type ListFilter struct {
	domain.ListFilter
	PartyID *id.ID
}

// Repository defines persistence for payments. Payments are append-only.
type Repository interface {
	Create(ctx context.Context, p *Payment) error

	// GetByID returns a NotFound AppError when the payment does not exist.
	GetByID(ctx context.Context, id id.ID) (*Payment, error)

	// List returns payments newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error)

	// ListByParty returns a party's payments, date ascending, ties in creation order.
	ListByParty(ctx context.Context, partyID id.ID, dates domain.DateRange) ([]*Payment, error)
}
