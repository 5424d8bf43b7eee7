// Package tx defines the transaction boundary used by domain services.
// The implementations live in infrastructure/storage.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, every write made through ctx is rolled back.
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with snapshot reads for reports.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn against one consistent snapshot.
	// A concurrently committed invoice is either fully visible or not at all.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
