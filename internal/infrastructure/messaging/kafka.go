// Package messaging delivers outbox events to Kafka.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"tradebook/internal/infrastructure/metrics"
	"tradebook/internal/infrastructure/storage/postgres"
)

// Header keys attached to every published message.
const (
	HeaderEventType     = "event-type"
	HeaderAggregateType = "aggregate-type"
	HeaderMessageID     = "message-id"
	HeaderContentType   = "content-type"
)

// Config holds producer settings.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	RequiredAcks int
}

// MessageWriter is the subset of *kafka.Writer used by the publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements postgres.OutboxHandler on top of a Kafka writer.
type Publisher struct {
	writer  MessageWriter
	metrics *metrics.Metrics
}

var _ postgres.OutboxHandler = (*Publisher)(nil)

// NewWriter creates a synchronous writer so a message counts as published
// only after the broker acknowledged it.
func NewWriter(cfg Config) *kafka.Writer {
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = int(kafka.RequireAll)
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Async:        false,
	}
}

// NewPublisher wraps writer. m may be nil.
func NewPublisher(writer MessageWriter, m *metrics.Metrics) *Publisher {
	return &Publisher{writer: writer, metrics: m}
}

// Handle publishes one outbox message keyed by its aggregate id, so events of
// the same invoice or party land on one partition in order.
func (p *Publisher) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	start := time.Now()
	err := p.writer.WriteMessages(ctx, ToKafkaMessage(msg))
	if p.metrics != nil {
		p.metrics.RecordOutboxPublish(msg.EventType, err == nil, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("publish %s %s: %w", msg.EventType, msg.AggregateID, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// ToKafkaMessage maps an outbox row to a Kafka message.
func ToKafkaMessage(msg *postgres.OutboxMessage) kafka.Message {
	return kafka.Message{
		Key:   []byte(msg.AggregateID),
		Value: msg.Payload,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(msg.EventType)},
			{Key: HeaderAggregateType, Value: []byte(msg.AggregateType)},
			{Key: HeaderMessageID, Value: []byte(msg.ID.String())},
			{Key: HeaderContentType, Value: []byte("application/json")},
		},
		Time: msg.CreatedAt,
	}
}
