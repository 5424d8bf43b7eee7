package memory

import (
	"context"
	"time"

	"tradebook/internal/core/numerator"
)

// Numerator implements numerator.Generator. Every strategy behaves as strict:
// counters live in the store state and roll back with the transaction.
type Numerator struct {
	store *Store
}

var _ numerator.Generator = (*Numerator)(nil)

// Numerator returns the document number generator.
func (s *Store) Numerator() *Numerator { return &Numerator{store: s} }

func (n *Numerator) GetNextNumber(ctx context.Context, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
	var next int64
	err := n.store.write(ctx, "numerator.next", func(st *state) error {
		key := cfg.Key(period)
		st.sequences[key]++
		next = st.sequences[key]
		return nil
	})
	if err != nil {
		return "", err
	}
	return cfg.Format(period, next), nil
}

func (n *Numerator) SetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time, value int64) error {
	return n.store.write(ctx, "numerator.set", func(st *state) error {
		st.sequences[cfg.Key(period)] = value
		return nil
	})
}
