// Package eventbus announces formation and team changes on Kafka.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"defense-planner/internal/logger"
	"defense-planner/internal/schema"
)

var eventSchema = schema.MustBuiltin("event")

// Publisher sends change events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventBus publishes to one Kafka topic. Writes are asynchronous; delivery
// failures are logged.
type EventBus struct {
	writer messageWriter
	topic  string
	log    logger.Log
}

func NewEventBus(brokers []string, topic string, log logger.Log) *EventBus {
	if topic == "" {
		topic = DefaultTopic
	}
	log = log.With(logger.String("topic", topic))
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Error("event delivery failed", logger.Int("messages", len(msgs)), logger.Error(err))
			}
		},
	}
	return &EventBus{writer: w, topic: topic, log: log}
}

func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	if event.EventID == "" || event.EventType == "" || event.Subject == "" {
		return fmt.Errorf("event missing required fields: event_id=%q, event_type=%q, subject=%q",
			event.EventID, event.EventType, event.Subject)
	}
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := eventSchema.ValidateBytes(msg); err != nil {
		return fmt.Errorf("event %s: %w", event.EventType, err)
	}
	return eb.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Subject),
		Value: msg,
	})
}

func (eb *EventBus) Close() error {
	if err := eb.writer.Close(); err != nil {
		return fmt.Errorf("close writer for topic %s: %w", eb.topic, err)
	}
	return nil
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// New returns a Kafka publisher, or Nop when brokers is empty.
func New(brokers []string, topic string, log logger.Log) Publisher {
	if len(brokers) == 0 {
		log.Info("no kafka brokers configured, change events disabled")
		return Nop{}
	}
	return NewEventBus(brokers, topic, log)
}
