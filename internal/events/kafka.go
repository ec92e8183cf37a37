// internal/events/kafka.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"nutrition-log/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one synchronous message per logged meal, keyed by
// user id so a user's events stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  1,
			WriteTimeout: 5 * time.Second,
			Async:        false,
		},
	}
}

func (p *KafkaPublisher) PublishMealLogged(ctx context.Context, record models.MealRecord) error {
	payload, err := json.Marshal(NewMealLogged(record))
	if err != nil {
		return fmt.Errorf("failed to marshal meal_logged event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(record.UserID),
		Value: payload,
		Time:  record.LoggedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeLogged)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish meal_logged event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
