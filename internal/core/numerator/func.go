package numerator

import (
	"context"
	"errors"
	"time"
)

// ErrFixedCounter is returned by GeneratorFunc.SetNextNumber.
var ErrFixedCounter = errors.New("numerator: counter cannot be set on a GeneratorFunc")

// GeneratorFunc adapts a plain function to Generator. Tests use it to inject
// numbering failures or fixed numbers.
type GeneratorFunc func(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

// GetNextNumber calls f.
func (f GeneratorFunc) GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	return f(ctx, cfg, opts, period)
}

// SetNextNumber always fails; a function has no counter to move.
func (f GeneratorFunc) SetNextNumber(context.Context, Config, time.Time, int64) error {
	return ErrFixedCounter
}

var _ Generator = GeneratorFunc(nil)
