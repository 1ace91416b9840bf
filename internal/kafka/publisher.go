package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/segmentio/kafka-go"
)

// EventTypeHeader is the message header carrying the outbox event type.
const EventTypeHeader = "event_type"

// MessageWriter is the subset of *kafka.Writer used by Publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes outbox events to a Kafka topic, keyed by event ID.
type Publisher struct {
	writer MessageWriter
}

// NewPublisher creates a synchronous writer so a returned nil means the brokers acknowledged the message.
func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	})
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Publish writes one event.
func (p *Publisher) Publish(ctx context.Context, event *model.Event) error {
	if len(event.EventData) == 0 {
		return fmt.Errorf("event %s has no data", event.ID)
	}

	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID.String()),
		Value: event.EventData,
		Time:  ts,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(event.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
