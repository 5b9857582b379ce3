package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"restaurant-pos/internal/models"

	"github.com/segmentio/kafka-go"
)

// ErrMalformedMessage marks a message that can never be handled
var ErrMalformedMessage = errors.New("malformed message")

// EventPublisher handles publishing ledger events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func saleKey(saleID int64) string {
	return fmt.Sprintf("sale-%d", saleID)
}

// PublishSaleCreated publishes SaleCreated event
func (ep *EventPublisher) PublishSaleCreated(ctx context.Context, event *models.SaleCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, saleKey(event.SaleID), event)
}

// PublishPaymentApplied publishes PaymentApplied event
func (ep *EventPublisher) PublishPaymentApplied(ctx context.Context, event *models.PaymentAppliedEvent) error {
	return ep.producer.PublishEvent(ctx, saleKey(event.SaleID), event)
}

// PublishSaleDeleted publishes SaleDeleted event
func (ep *EventPublisher) PublishSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error {
	return ep.producer.PublishEvent(ctx, saleKey(event.SaleID), event)
}

// EventHandler routes incoming ledger events to registered callbacks
type EventHandler struct {
	onSaleCreated    func(context.Context, *models.SaleCreatedEvent) error
	onPaymentApplied func(context.Context, *models.PaymentAppliedEvent) error
	onSaleDeleted    func(context.Context, *models.SaleDeletedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnSaleCreated registers a handler for SaleCreated events
func (eh *EventHandler) OnSaleCreated(handler func(context.Context, *models.SaleCreatedEvent) error) {
	eh.onSaleCreated = handler
}

// OnPaymentApplied registers a handler for PaymentApplied events
func (eh *EventHandler) OnPaymentApplied(handler func(context.Context, *models.PaymentAppliedEvent) error) {
	eh.onPaymentApplied = handler
}

// OnSaleDeleted registers a handler for SaleDeleted events
func (eh *EventHandler) OnSaleDeleted(handler func(context.Context, *models.SaleDeletedEvent) error) {
	eh.onSaleDeleted = handler
}

// HandleMessage routes messages to appropriate handlers, continuing the
// publisher's trace. Unknown event types are ignored.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	ctx = traceContext(ctx, msg.Headers)

	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("%w: base event: %v", ErrMalformedMessage, err)
	}

	switch baseEvent.EventType {
	case models.EventTypeSaleCreated:
		if eh.onSaleCreated != nil {
			var event models.SaleCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("%w: SaleCreated event: %v", ErrMalformedMessage, err)
			}
			return eh.onSaleCreated(ctx, &event)
		}

	case models.EventTypePaymentApplied:
		if eh.onPaymentApplied != nil {
			var event models.PaymentAppliedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("%w: PaymentApplied event: %v", ErrMalformedMessage, err)
			}
			return eh.onPaymentApplied(ctx, &event)
		}

	case models.EventTypeSaleDeleted:
		if eh.onSaleDeleted != nil {
			var event models.SaleDeletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("%w: SaleDeleted event: %v", ErrMalformedMessage, err)
			}
			return eh.onSaleDeleted(ctx, &event)
		}
	}

	return nil
}
