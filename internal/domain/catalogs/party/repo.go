package party

import (
	"context"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// ListFilter narrows party lists.
type ListFilter struct {
	domain.ListFilter
	Type *Type
}

// Repository defines the interface for Party persistence.
// Every method returns a StorageUnavailable AppError on driver failure.
type Repository interface {
	Create(ctx context.Context, p *Party) error

	// GetByID returns a NotFound AppError when the party does not exist.
	GetByID(ctx context.Context, id id.ID) (*Party, error)

	// GetByIDForShare is GetByID that keeps the row from being updated
	// until the surrounding transaction ends.
	GetByIDForShare(ctx context.Context, id id.ID) (*Party, error)

	// GetByIDForUpdate is GetByID that locks the row for writing until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id id.ID) (*Party, error)

	// Update writes p if its Version still matches, then bumps it.
	Update(ctx context.Context, p *Party) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Party], error)

	// ListAll returns every party ordered by name.
	ListAll(ctx context.Context) ([]*Party, error)

	// HasActivity reports whether any invoice or payment references the party.
	HasActivity(ctx context.Context, id id.ID) (bool, error)
}
