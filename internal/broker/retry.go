package broker

import (
	"context"
	"errors"
	"time"

	"restaurant-pos/internal/util"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// WithRetry wraps handler so a failing message is retried with exponential
// backoff until it succeeds. ErrMalformedMessage is returned at once and
// cancelling ctx stops the retries.
func WithRetry(handler MessageHandler, initialInterval, maxInterval time.Duration) MessageHandler {
	logger := util.WithComponent("kafka-retry")

	return func(ctx context.Context, msg kafka.Message) error {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = initialInterval
		policy.MaxInterval = maxInterval
		policy.MaxElapsedTime = 0

		attempt := 0
		operation := func() error {
			attempt++
			err := handler(ctx, msg)
			if errors.Is(err, ErrMalformedMessage) {
				return backoff.Permanent(err)
			}
			return err
		}
		notify := func(err error, wait time.Duration) {
			logger.Warn("Retrying message",
				zap.Int64("offset", msg.Offset),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}

		return backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify)
	}
}
