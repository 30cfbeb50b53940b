package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher writes asynchronously; delivery failures are logged from
// the writer's completion callback and never reach the caller.
func NewKafkaPublisher(brokers []string, log *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Warn("kafka_delivery_error", "messages", len(msgs), "error", err)
			}
		},
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}
	if t, ok := eventType(event); ok {
		msg.Headers = []kafka.Header{{Key: "event_type", Value: []byte(t)}}
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func eventType(event any) (string, bool) {
	switch e := event.(type) {
	case UserEvent:
		return e.Type, true
	case ProductEvent:
		return e.Type, true
	case CartEvent:
		return e.Type, true
	}
	return "", false
}
