package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/loyalty"
	"github.com/fekuna/omnipos-commerce/internal/order"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/broker"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OrderListener struct {
	consumer MessageReader
	uc       loyalty.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewOrderListener(consumer MessageReader, uc loyalty.UseCase, logger logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("Starting loyalty order listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping loyalty order listener")
			return
		default:
			msg, err := l.consumer.FetchMessage(ctx)
			if err != nil {
				// Cancellation is the normal way out.
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				l.wait(ctx)
				continue
			}
			if !l.handle(ctx, msg) {
				return
			}
		}
	}
}

// handle retries a failed message until it is applied, then commits it.
// The offset stays uncommitted when ctx ends first, so the event is redelivered.
func (l *OrderListener) handle(ctx context.Context, msg kafka.Message) bool {
	for {
		err := l.processMessage(ctx, msg.Value)
		if err == nil {
			break
		}
		l.logger.Error("Failed to apply loyalty for order, retrying",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		if !l.wait(ctx) {
			return false
		}
	}

	if err := l.consumer.CommitMessages(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return false
		}
		l.logger.Error("Failed to commit kafka message", zap.Int64("offset", msg.Offset), zap.Error(err))
	}
	return true
}

func (l *OrderListener) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(l.backoff):
		return true
	}
}

// processMessage only returns errors worth retrying. Malformed and foreign
// events are logged and dropped.
func (l *OrderListener) processMessage(ctx context.Context, value []byte) error {
	var envelope broker.Event
	if err := json.Unmarshal(value, &envelope); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return nil
	}
	if envelope.EventType != order.EventCreated && envelope.EventType != order.EventStatusChanged {
		return nil
	}

	var event order.Event
	if err := json.Unmarshal(envelope.Payload, &event); err != nil {
		l.logger.Error("Failed to unmarshal order payload",
			zap.String("event_id", envelope.EventID),
			zap.Error(err),
		)
		return nil
	}

	l.logger.Debug("Processing order event",
		zap.String("event_type", envelope.EventType),
		zap.String("order_id", event.OrderID),
		zap.String("status", event.Status),
	)
	if err := l.uc.HandleOrderEvent(ctx, &event); err != nil {
		if permanent(err) {
			l.logger.Error("Dropping order event that cannot be applied",
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
			return nil
		}
		return fmt.Errorf("order %s: %w", event.OrderID, err)
	}
	return nil
}

func permanent(err error) bool {
	return apperror.KindOf(err) == apperror.KindInvalid || errors.Is(err, loyalty.ErrAccountNotFound)
}
