package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNewTraceContextPrefersValidSpan(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5, 6},
	})

	tc := NewTraceContext(sc, "client-trace", "req-1")
	assert.Equal(t, sc.TraceID().String(), tc.TraceID)
	assert.Equal(t, sc.SpanID().String(), tc.SpanID)
	assert.Equal(t, "req-1", tc.RequestID)
	assert.Contains(t, tc.LogFields(), "span_id")
}

func TestNewTraceContextFallbacks(t *testing.T) {
	tc := NewTraceContext(trace.SpanContext{}, "client-trace", "")
	assert.Equal(t, "client-trace", tc.TraceID)
	assert.Empty(t, tc.SpanID)
	assert.NotEmpty(t, tc.RequestID)
	assert.NotContains(t, tc.LogFields(), "span_id")

	generated := NewTraceContext(trace.SpanContext{}, "", "req")
	assert.Len(t, generated.TraceID, 36)
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetUser(ctx))
	assert.Empty(t, GetUserID(ctx))

	ctx = WithUser(ctx, &UserContext{UserID: "u-1", Roles: []string{"clerk"}})
	u := GetUser(ctx)
	require.NotNil(t, u)
	assert.Equal(t, "u-1", GetUserID(ctx))
	assert.True(t, u.HasRole("clerk"))
	assert.False(t, u.HasRole("admin"))
}
