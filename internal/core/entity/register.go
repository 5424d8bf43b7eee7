package entity

import (
	"time"

	"tradebook/internal/core/id"
)

// MovementBase contains common fields for register movements.
// Movements are append-only.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	LineID id.ID `db:"line_id" json:"id"`

	// ReferenceID is the human-readable number of the document that caused the movement
	ReferenceID string `db:"reference_id" json:"referenceId"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"timestamp"`
}

// NewMovementBase creates a movement base with generated LineID.
func NewMovementBase(referenceID string) MovementBase {
	return MovementBase{
		LineID:      id.New(),
		ReferenceID: referenceID,
		CreatedAt:   time.Now().UTC(),
	}
}
