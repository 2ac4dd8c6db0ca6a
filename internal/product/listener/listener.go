package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/event"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/product"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// StockListener keeps the catalog's derived views (list cache, search index)
// in step with stock movements announced on the orders topic.
type StockListener struct {
	consumer MessageReader
	uc       product.UseCase
	logger   logger.ZapLogger
}

func NewStockListener(consumer MessageReader, uc product.UseCase, logger logger.ZapLogger) *StockListener {
	return &StockListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("Starting catalog stock listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping catalog stock listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func movesStock(eventType string) bool {
	switch eventType {
	case event.OrderCreated, event.OrderCancelled, event.OrderItemCancelled, event.OrderItemUpdated:
		return true
	}
	return false
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var env event.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}
	if !movesStock(env.EventType) {
		return
	}

	var payload event.OrderPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		l.logger.Error("Failed to unmarshal order payload", zap.String("event_id", env.EventID), zap.Error(err))
		return
	}

	l.logger.Debug("Refreshing products for order event",
		zap.String("event_type", env.EventType),
		zap.String("order_id", payload.ID),
	)

	seen := make(map[string]struct{}, len(payload.Items))
	for _, item := range payload.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}

		if err := l.uc.RefreshProduct(ctx, item.ProductID); err != nil {
			l.logger.Error("Failed to refresh product",
				zap.String("order_id", payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}
