package worker

import (
	"context"
	"errors"
	"time"

	"restaurant-pos/internal/broker"
	"restaurant-pos/internal/service"
	"restaurant-pos/internal/util"

	"go.uber.org/zap"
)

const (
	retryInitialInterval = 500 * time.Millisecond
	retryMaxInterval     = 30 * time.Second
)

// MessageSource delivers messages to a handler until ctx is cancelled
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// DashboardWorker projects ledger events into the dashboard counters
type DashboardWorker struct {
	source       MessageSource
	eventHandler *broker.EventHandler
	logger       *zap.Logger

	retryInitial time.Duration
	retryMax     time.Duration
}

// NewDashboardWorker creates a new dashboard worker
func NewDashboardWorker(source MessageSource, projector *service.DashboardProjector) *DashboardWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnSaleCreated(projector.HandleSaleCreated)
	eventHandler.OnPaymentApplied(projector.HandlePaymentApplied)
	eventHandler.OnSaleDeleted(projector.HandleSaleDeleted)

	return &DashboardWorker{
		source:       source,
		eventHandler: eventHandler,
		logger:       util.WithComponent("dashboard-worker"),
		retryInitial: retryInitialInterval,
		retryMax:     retryMaxInterval,
	}
}

// Start consumes until ctx is cancelled. Cancellation is a clean stop. An
// event whose projection fails is retried until the counters accept it.
func (w *DashboardWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting dashboard worker...")

	handler := broker.WithRetry(w.eventHandler.HandleMessage, w.retryInitial, w.retryMax)
	err := w.source.StartConsuming(ctx, handler)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop stops the worker
func (w *DashboardWorker) Stop() error {
	w.logger.Info("Stopping dashboard worker...")
	return w.source.Close()
}
