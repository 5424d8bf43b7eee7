package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// OutboxMessage is an event recorded in a transaction.
type OutboxMessage struct {
	ID            id.ID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       json.RawMessage
	CreatedAt     time.Time
}

// Outbox implements domain.EventPublisher. Messages roll back with the
// transaction that published them.
type Outbox struct {
	store *Store
}

var _ domain.EventPublisher = (*Outbox)(nil)

// Outbox returns the event outbox.
func (s *Store) Outbox() *Outbox { return &Outbox{store: s} }

func (o *Outbox) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.EventType, err)
	}
	return o.store.write(ctx, "outbox.publish", func(st *state) error {
		st.outbox = append(st.outbox, OutboxMessage{
			ID:            id.New(),
			AggregateType: event.AggregateType,
			AggregateID:   event.AggregateID,
			EventType:     event.EventType,
			Payload:       payload,
			CreatedAt:     time.Now().UTC(),
		})
		return nil
	})
}

// Events returns all published messages in publish order.
func (o *Outbox) Events() []OutboxMessage {
	var out []OutboxMessage
	_ = o.store.read(context.Background(), "outbox.list", func(st *state) error {
		out = append(out, st.outbox...)
		return nil
	})
	return out
}
