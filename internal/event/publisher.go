package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Event types published for downstream consumers.
const (
	TypeOrderCreated = "OrderCreated"
	TypeOrderPaid    = "OrderPaid"
)

// Envelope wraps every published event. Payload is event-type specific.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Payload      json.RawMessage `json:"payload"`
}

// OrderCreatedPayload describes a newly created order.
type OrderCreatedPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
	Total   float64   `json:"total"`
}

// OrderPaidPayload describes a successfully reconciled payment.
type OrderPaidPayload struct {
	OrderID   uuid.UUID `json:"order_id"`
	PaymentID string    `json:"payment_id"`
}

// Publisher emits order lifecycle events. Publishing is best effort and
// never fails the request that triggered it.
type Publisher interface {
	Publish(ctx context.Context, eventType string, orderID uuid.UUID, payload any)
	Close() error
}

// kafkaPublisher writes envelopes to a Kafka topic, keyed by order id so
// events for one order stay ordered within a partition.
type kafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher writing to the given topic.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) Publisher {
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, orderID uuid.UUID, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}

	value, err := json.Marshal(Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Payload:      raw,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event envelope")
		return
	}

	msg := kafka.Message{
		Key:   []byte(orderID.String()),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().
			Err(err).
			Str("event_type", eventType).
			Str("order_id", orderID.String()).
			Msg("failed to publish event")
		return
	}

	p.logger.Debug().
		Str("event_type", eventType).
		Str("order_id", orderID.String()).
		Msg("event published")
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// nopPublisher drops all events. Used when Kafka is disabled.
type nopPublisher struct{}

// NewNopPublisher creates a publisher that discards events.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, uuid.UUID, any) {}
func (nopPublisher) Close() error                                   { return nil }
