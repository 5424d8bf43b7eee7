package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigFormat(t *testing.T) {
	period := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		cfg     Config
		num     int64
		wantKey string
		want    string
	}{
		{"default", DefaultConfig("INV"), 7, "INV_2026", "INV-2026-00007"},
		{"monthly", Config{Prefix: "PAY", IncludeYear: true, ResetPeriod: "month"}, 12, "PAY_2026_03", "PAY-2026-00012"},
		{"never", Config{Prefix: "ADJ", PadWidth: 3, ResetPeriod: "never"}, 5, "ADJ", "ADJ-005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, tt.cfg.Key(period))
			assert.Equal(t, tt.want, tt.cfg.Format(period, tt.num))
		})
	}
}

func TestGeneratorFunc(t *testing.T) {
	var gen Generator = GeneratorFunc(func(_ context.Context, cfg Config, _ *Options, period time.Time) (string, error) {
		return cfg.Format(period, 42), nil
	})

	period := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	got, err := gen.GetNextNumber(context.Background(), DefaultConfig("INV"), nil, period)
	assert.NoError(t, err)
	assert.Equal(t, "INV-2026-00042", got)
	assert.ErrorIs(t, gen.SetNextNumber(context.Background(), DefaultConfig("INV"), period, 1), ErrFixedCounter)
}
