package entity

import (
	"context"
	"time"

	"tradebook/internal/core/id"
)

// Validatable is implemented by entities that check their own invariants
// without storage access.
type Validatable interface {
	// Validate returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains the fields every persisted record carries.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:        id.New(),
		CreatedAt: time.Now().UTC(),
	}
}

// BaseCatalog extends BaseEntity with versioning for editable master data.
type BaseCatalog struct {
	BaseEntity

	// Version for optimistic locking (incremented on each update)
	Version   int       `db:"version" json:"version"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseCatalog creates a new BaseCatalog with generated ID.
func NewBaseCatalog() BaseCatalog {
	b := NewBaseEntity()
	return BaseCatalog{
		BaseEntity: b,
		Version:    1,
		UpdatedAt:  b.CreatedAt,
	}
}

// Versioned is implemented by every catalog through the embedded BaseCatalog.
type Versioned interface {
	Versioning() *BaseCatalog
}

// Versioning exposes the version fields to storage code.
func (b *BaseCatalog) Versioning() *BaseCatalog {
	return b
}

// Touch updates the timestamp and increments version.
func (b *BaseCatalog) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}
