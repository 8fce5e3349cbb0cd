// Package events publishes checkout lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/G77-BOT/aura-flow/internal/domain"
)

const (
	DefaultTopic          = "checkout-sessions"
	EventSessionCreated   = "checkout.session.created"
	defaultPublishTimeout = 2 * time.Second
)

// SessionCreatedEvent is the payload written for every created session.
type SessionCreatedEvent struct {
	EventID     string            `json:"event_id"`
	EventType   string            `json:"event_type"`
	SessionID   string            `json:"session_id"`
	AmountTotal int64             `json:"amount_total"`
	Currency    string            `json:"currency"`
	Items       []domain.LineItem `json:"items"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	now     func() time.Time
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
	}
	return &KafkaPublisher{writer: w, timeout: defaultPublishTimeout, now: time.Now}
}

func (p *KafkaPublisher) SessionCreated(ctx context.Context, session *domain.CheckoutSession) error {
	event := SessionCreatedEvent{
		EventID:     uuid.NewString(),
		EventType:   EventSessionCreated,
		SessionID:   session.ID,
		AmountTotal: session.AmountTotal,
		Currency:    session.Currency,
		Items:       session.LineItems,
		OccurredAt:  p.now().UTC(),
	}
	if event.AmountTotal == 0 {
		event.AmountTotal = domain.TotalAmount(session.LineItems)
	}
	if event.Currency == "" {
		event.Currency = domain.Currency
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", EventSessionCreated, err)
	}

	// detached from the request so a client disconnect does not drop the event
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(session.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventSessionCreated)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", EventSessionCreated, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events; used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) SessionCreated(context.Context, *domain.CheckoutSession) error { return nil }
