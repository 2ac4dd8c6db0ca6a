// Package event defines the domain event envelope published to Kafka.
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	OrderCreated       = "OrderCreated"
	OrderStatusChanged = "OrderStatusChanged"
	OrderCancelled     = "OrderCancelled"
	OrderItemCancelled = "OrderItemCancelled"
	OrderItemUpdated   = "OrderItemUpdated"

	PaymentInitiated = "PaymentInitiated"
	PaymentCompleted = "PaymentCompleted"
	PaymentFailed    = "PaymentFailed"
	PaymentRefunded  = "PaymentRefunded"
	PaymentCancelled = "PaymentCancelled"
)

type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// OrderPayload is the body of every Order* event.
type OrderPayload struct {
	ID     string             `json:"id"`
	UserID string             `json:"user_id"`
	Status string             `json:"status"`
	Items  []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type PaymentPayload struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Status  string `json:"status"`
	Amount  string `json:"amount"`
}

// Producer is the transport; *broker.KafkaProducer implements it.
type Producer interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// Publisher wraps payloads in an Envelope and sends them to one topic.
// A nil Publisher is valid and drops events.
type Publisher struct {
	producer Producer
	topic    string
	logger   logger.ZapLogger
}

func NewPublisher(producer Producer, topic string, log logger.ZapLogger) *Publisher {
	return &Publisher{producer: producer, topic: topic, logger: log}
}

// Publish is best effort: failures are logged, never returned.
func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload interface{}) {
	if p == nil || p.producer == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal event payload", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	env := Envelope{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   body,
		Timestamp: time.Now().UTC(),
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	if err := p.producer.Publish(ctx, p.topic, key, value); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", p.topic),
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
