package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "tradebook/internal/core/context"
)

func TestFromContextAddsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithLogger(context.Background(), NewFromCore(core))
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext(trace.SpanContext{}, "t-1", "r-1"))
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "clerk-7"})

	Info(ctx, "invoice created", "invoice_no", "INV-2026-00001")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "invoice created", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "clerk-7", fields["user_id"])
	assert.Equal(t, "INV-2026-00001", fields["invoice_no"])
}

func TestLevelsAndComponent(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := NewFromCore(core).WithComponent("worker")
	ctx := WithLogger(context.Background(), log)

	Debug(ctx, "dropped")
	Info(ctx, "dropped")
	Warn(ctx, "kept")
	Error(ctx, "kept")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "worker", logs.All()[0].ContextMap()["component"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
}
