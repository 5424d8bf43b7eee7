package domain

import (
	"context"
)

// Domain event types written to the outbox.
const (
	EventInvoiceCreated  = "InvoiceCreated"
	EventPaymentRecorded = "PaymentRecorded"
	EventStockAdjusted   = "StockAdjusted"
)

// Event is a fact about a committed change, published for downstream consumers.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       any
}

// EventPublisher records events in the same transaction as the change they describe.
// ctx must carry the active transaction.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
