// Package events publishes semester lifecycle changes for downstream consumers such as the
// student notification feed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/noah-isme/campushub-api/pkg/config"
)

// Type names a lifecycle event.
type Type string

const (
	SemesterCreated Type = "semester.created"
	SemesterUpdated Type = "semester.updated"
	SemesterDeleted Type = "semester.deleted"
)

// Event is the JSON payload written to the topic.
type Event struct {
	Type           Type      `json:"type"`
	TenantID       string    `json:"tenant_id"`
	SemesterID     string    `json:"semester_id"`
	IntakeCourseID string    `json:"intake_course_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher delivers lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by intake course so a course's events stay ordered
// within one partition.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewPublisher returns a Kafka publisher, or a no-op publisher when no brokers are configured.
func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Brokers) == 0 {
		logger.Info("kafka disabled, semester events will not be published")
		return NopPublisher{}
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
		// Publish only enqueues; delivery results arrive in Completion.
		Async:      true,
		Completion: deliveryLogger(logger),
	}
	logger.Info("kafka publisher initialised", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return &KafkaPublisher{writer: writer, logger: logger}
}

func deliveryLogger(logger *zap.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err == nil {
			return
		}
		for _, msg := range msgs {
			logger.Warn("semester event delivery failed", zap.ByteString("key", msg.Key), zap.Error(err))
		}
	}
}

// Publish encodes and writes one event.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(event.TenantID + ":" + event.IntakeCourseID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", event.Type, err)
	}
	p.logger.Debug("semester event published", zap.String("type", string(event.Type)), zap.String("semester_id", event.SemesterID))
	return nil
}

// Close flushes pending deliveries and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
