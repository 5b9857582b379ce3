package service

import (
	"context"
	"fmt"
	"time"

	"restaurant-pos/internal/models"
	"restaurant-pos/internal/util"

	"go.uber.org/zap"
)

// DayStatsWriter applies deltas to the counters of one calendar day.
// Applying the same event id twice must be a no-op that returns false.
type DayStatsWriter interface {
	AdjustDayStats(ctx context.Context, eventID, day string, sales, revenue, collected int64) (bool, error)
}

// DashboardProjector keeps per-day counters in step with ledger events.
// Every delta is booked on the calendar day the sale was created, so a
// deleted sale takes its payments with it.
type DashboardProjector struct {
	stats  DayStatsWriter
	loc    *time.Location
	logger *zap.Logger
}

// NewDashboardProjector creates a projector booking days in loc
func NewDashboardProjector(stats DayStatsWriter, loc *time.Location) *DashboardProjector {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardProjector{
		stats:  stats,
		loc:    loc,
		logger: util.WithComponent("dashboard-projector"),
	}
}

// HandleSaleCreated books a new sale
func (p *DashboardProjector) HandleSaleCreated(ctx context.Context, event *models.SaleCreatedEvent) error {
	ctx, span := util.StartSpan(ctx, "DashboardProjector.HandleSaleCreated")
	defer span.End()

	return p.apply(ctx, event.BaseEvent, event.CreatedAt, 1, event.Total, event.Paid)
}

// HandlePaymentApplied books collected money
func (p *DashboardProjector) HandlePaymentApplied(ctx context.Context, event *models.PaymentAppliedEvent) error {
	ctx, span := util.StartSpan(ctx, "DashboardProjector.HandlePaymentApplied")
	defer span.End()

	return p.apply(ctx, event.BaseEvent, event.SaleCreatedAt, 0, 0, event.Amount)
}

// HandleSaleDeleted reverses everything booked for the sale
func (p *DashboardProjector) HandleSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error {
	ctx, span := util.StartSpan(ctx, "DashboardProjector.HandleSaleDeleted")
	defer span.End()

	p.logger.Info("Reversing deleted sale", zap.Int64("sale_id", event.SaleID))
	return p.apply(ctx, event.BaseEvent, event.CreatedAt, -1, -event.Total, -event.Paid)
}

func (p *DashboardProjector) apply(ctx context.Context, base models.BaseEvent, created time.Time, sales, revenue, collected int64) error {
	day := DayKey(created, p.loc)

	applied, err := p.stats.AdjustDayStats(ctx, base.EventID, day, sales, revenue, collected)
	if err != nil {
		util.WithTrace(ctx, p.logger).Warn("Day stats write failed",
			zap.String("event_id", base.EventID),
			zap.String("day", day),
			zap.Error(err))
		return fmt.Errorf("failed to adjust day stats: %w", err)
	}
	if !applied {
		p.logger.Info("Event already processed", zap.String("event_id", base.EventID))
		return nil
	}

	util.LedgerEventsProjected.WithLabelValues(base.EventType).Inc()
	p.logger.Debug("Event projected",
		zap.String("event_id", base.EventID),
		zap.String("event_type", base.EventType),
		zap.String("day", day))
	return nil
}
