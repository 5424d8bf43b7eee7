package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
// Implementations live in the storage layer and must take part in the
// transaction carried by ctx, so a rolled back document releases its number.
type Generator interface {
	// GetNextNumber generates the next document number.
	// Pattern: PREFIX-YEAR-XXXXX (e.g., INV-2026-00001)
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber stores value as the last issued counter (data migrations, seeding).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
