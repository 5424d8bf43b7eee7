package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/id"
	"tradebook/internal/infrastructure/metrics"
	"tradebook/internal/infrastructure/storage/postgres"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func outboxMessage() *postgres.OutboxMessage {
	return &postgres.OutboxMessage{
		ID:            id.New(),
		AggregateType: "invoice",
		AggregateID:   "inv-1",
		EventType:     "InvoiceCreated",
		Payload:       []byte(`{"invoice_no":"INV-2026-00001"}`),
		CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublisherHandle(t *testing.T) {
	w := &fakeWriter{}
	m := metrics.New()
	p := NewPublisher(w, m)

	msg := outboxMessage()
	require.NoError(t, p.Handle(context.Background(), msg))

	require.Len(t, w.written, 1)
	got := w.written[0]
	assert.Equal(t, "inv-1", string(got.Key))
	assert.JSONEq(t, `{"invoice_no":"INV-2026-00001"}`, string(got.Value))
	assert.Equal(t, "InvoiceCreated", header(got, HeaderEventType))
	assert.Equal(t, "invoice", header(got, HeaderAggregateType))
	assert.Equal(t, msg.ID.String(), header(got, HeaderMessageID))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxPublished.WithLabelValues("InvoiceCreated", "success")))
}

func TestPublisherHandleError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	m := metrics.New()
	p := NewPublisher(w, m)

	err := p.Handle(context.Background(), outboxMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxPublished.WithLabelValues("InvoiceCreated", "failure")))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewWriterDefaults(t *testing.T) {
	w := NewWriter(Config{Brokers: []string{"localhost:9092"}, Topic: "tradebook.events"})
	assert.Equal(t, "tradebook.events", w.Topic)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.False(t, w.Async)
}
