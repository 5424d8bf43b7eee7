package invoice

import (
	"context"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// ListFilter narrows invoice lists.
type ListFilter struct {
	domain.ListFilter
	PartyID *id.ID
	Type    *Type
	Dates   domain.DateRange
}

// Repository defines persistence for invoices. Invoices are append-only: there
// is no update or delete.
type Repository interface {
	// Create inserts the header and all lines.
	Create(ctx context.Context, inv *Invoice) error

	// GetByID returns the invoice with lines, or a NotFound AppError.
	GetByID(ctx context.Context, id id.ID) (*Invoice, error)

	// List returns invoices with lines, newest first (date, then creation).
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)

	// ListByParty returns a party's invoices in document order: date
	// ascending, ties in creation order. Lines are not loaded.
	ListByParty(ctx context.Context, partyID id.ID, dates domain.DateRange) ([]*Invoice, error)
}
