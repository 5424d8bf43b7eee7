// Package context carries request-scoped values: trace ids and the caller.
package context

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceContext correlates log lines, response headers and spans of one request.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

// NewTraceContext builds ids for a request. The span context wins when it is
// valid (an SDK is installed). Otherwise traceID is used, or a random one.
// An empty requestID is generated as well.
func NewTraceContext(sc trace.SpanContext, traceID, requestID string) *TraceContext {
	t := &TraceContext{TraceID: traceID, RequestID: requestID}
	if sc.IsValid() {
		t.TraceID = sc.TraceID().String()
		t.SpanID = sc.SpanID().String()
	}
	if t.TraceID == "" {
		t.TraceID = uuid.NewString()
	}
	if t.RequestID == "" {
		t.RequestID = uuid.NewString()
	}
	return t
}

// LogFields returns the ids as zap-style key/value pairs.
func (t *TraceContext) LogFields() []any {
	fields := []any{"trace_id", t.TraceID, "request_id", t.RequestID}
	if t.SpanID != "" {
		fields = append(fields, "span_id", t.SpanID)
	}
	return fields
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, t *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, t)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}
