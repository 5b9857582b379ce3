package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"restaurant-pos/internal/models"
	"restaurant-pos/internal/store"
	"restaurant-pos/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Outcome of a sale registration
type Outcome string

const (
	OutcomeCreated            Outcome = "CREATED"
	OutcomeCreatedWithWarning Outcome = "CREATED_WITH_WARNING"
)

// maxQuantity is the range of the sales.quantity column
const maxQuantity = math.MaxInt32

// publishTimeout bounds an event publish that outlives its request
const publishTimeout = 5 * time.Second

// WarningInitialPaymentFailed is reported when the sale row was written but
// the payment row for its initial payment was not.
const WarningInitialPaymentFailed = "sale created, payment record failed"

// CreateSaleRequest represents the request to register a sale
type CreateSaleRequest struct {
	DishID         int64  `json:"dish_id" binding:"required"`
	Quantity       int    `json:"quantity"`
	CustomerName   string `json:"customer_name"`
	InitialPayment int64  `json:"initial_payment"`
	Notes          string `json:"notes"`
	IdempotencyKey string `json:"-"`
}

// CreateSaleResult is the outcome of CreateSale
type CreateSaleResult struct {
	Sale    *models.Sale `json:"sale"`
	Outcome Outcome      `json:"outcome"`
	Warning string       `json:"warning,omitempty"`
}

// SaleList is a filtered history with its summary
type SaleList struct {
	Sales   []models.Sale      `json:"sales"`
	Summary models.SaleSummary `json:"summary"`
}

// Ledger registers sales and the payments applied against them
type Ledger struct {
	store     SaleStore
	publisher LedgerPublisher
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewLedger creates a ledger. Days are compared in loc.
func NewLedger(store SaleStore, publisher LedgerPublisher, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{
		store:     store,
		publisher: publisher,
		loc:       loc,
		logger:    util.WithComponent("ledger"),
		now:       time.Now,
	}
}

// Location returns the business time zone
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// CreateSale registers a sale of one dish, optionally with an initial payment
func (l *Ledger) CreateSale(ctx context.Context, req *CreateSaleRequest) (result *CreateSaleResult, err error) {
	ctx, span := util.StartSpan(ctx, "Ledger.CreateSale", attribute.Int64("dish.id", req.DishID))
	defer func() { util.EndSpan(span, err) }()

	customer := strings.TrimSpace(req.CustomerName)
	switch {
	case req.Quantity < 1 || req.Quantity > maxQuantity:
		return nil, l.rejectSale(fmt.Errorf("%w: got %d", ErrInvalidQuantity, req.Quantity))
	case customer == "":
		return nil, l.rejectSale(ErrMissingCustomer)
	case req.InitialPayment < 0:
		return nil, l.rejectSale(fmt.Errorf("%w: got %d", ErrInvalidPayment, req.InitialPayment))
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		existing, err := l.store.GetSaleByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
		if existing != nil {
			l.logger.Info("Sale already registered for idempotency key",
				zap.String("idempotency_key", key),
				zap.Int64("sale_id", existing.ID))
			return &CreateSaleResult{Sale: existing, Outcome: OutcomeCreated}, nil
		}
	} else {
		key = uuid.New().String()
	}

	dish, err := l.store.GetDishByID(ctx, req.DishID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, l.rejectSale(fmt.Errorf("%w: id %d", ErrDishNotFound, req.DishID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dish: %w", err)
	}
	if !dish.Active {
		return nil, l.rejectSale(fmt.Errorf("%w: %s", ErrDishInactive, dish.Name))
	}

	if dish.Price > 0 && int64(req.Quantity) > math.MaxInt64/dish.Price {
		return nil, l.rejectSale(fmt.Errorf("%w: %d x %d overflows the total", ErrInvalidQuantity, req.Quantity, dish.Price))
	}
	total := dish.Price * int64(req.Quantity)
	if req.InitialPayment > total {
		return nil, l.rejectSale(fmt.Errorf("%w: payment %d, total %d", ErrPaymentExceedsTotal, req.InitialPayment, total))
	}

	sale := &models.Sale{
		Product:        dish.Name,
		Price:          dish.Price,
		Quantity:       req.Quantity,
		Total:          total,
		Paid:           req.InitialPayment,
		Balance:        total - req.InitialPayment,
		CustomerName:   customer,
		Notes:          strings.TrimSpace(req.Notes),
		IdempotencyKey: key,
	}

	if err := l.store.CreateSale(ctx, sale); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// a concurrent request with the same key won the insert
			existing, getErr := l.store.GetSaleByIdempotencyKey(ctx, key)
			if getErr == nil && existing != nil {
				return &CreateSaleResult{Sale: existing, Outcome: OutcomeCreated}, nil
			}
		}
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	util.SalesCreatedTotal.Inc()
	util.SalesRevenueTotal.Add(float64(sale.Total))

	result = &CreateSaleResult{Sale: sale, Outcome: OutcomeCreated}

	if sale.Paid > 0 {
		payment := &models.Payment{SaleID: sale.ID, Amount: sale.Paid, Note: models.InitialPaymentNote}
		if err := l.store.CreatePayment(ctx, payment); err != nil {
			l.logger.Error("Failed to record initial payment",
				zap.Int64("sale_id", sale.ID),
				zap.Int64("amount", sale.Paid),
				zap.Error(err))
			util.LedgerWarningsTotal.WithLabelValues("initial_payment_failed").Inc()
			result.Outcome = OutcomeCreatedWithWarning
			result.Warning = WarningInitialPaymentFailed
		} else {
			util.PaymentsCollectedTotal.Add(float64(sale.Paid))
		}
	}

	l.logger.Info("Sale created",
		zap.Int64("sale_id", sale.ID),
		zap.String("product", sale.Product),
		zap.Int("quantity", sale.Quantity),
		zap.Int64("total", sale.Total),
		zap.Int64("paid", sale.Paid))

	l.publish(ctx, models.EventTypeSaleCreated, sale.ID, func(ctx context.Context, base models.BaseEvent) error {
		return l.publisher.PublishSaleCreated(ctx, &models.SaleCreatedEvent{
			BaseEvent:    base,
			SaleID:       sale.ID,
			Product:      sale.Product,
			Quantity:     sale.Quantity,
			Total:        sale.Total,
			Paid:         sale.Paid,
			CustomerName: sale.CustomerName,
			CreatedAt:    sale.CreatedAt,
		})
	})

	return result, nil
}

// ApplyPayment records an abono against a sale and returns the updated sale
func (l *Ledger) ApplyPayment(ctx context.Context, saleID, amount int64, note string) (sale *models.Sale, payment *models.Payment, err error) {
	ctx, span := util.StartSpan(ctx, "Ledger.ApplyPayment", attribute.Int64("sale.id", saleID))
	defer func() { util.EndSpan(span, err) }()

	start := l.now()
	defer func() {
		util.PaymentLatency.Observe(time.Since(start).Seconds())
	}()

	if amount <= 0 {
		return nil, nil, l.rejectPayment(fmt.Errorf("%w: got %d", ErrInvalidAmount, amount))
	}

	current, err := l.store.GetSaleByID(ctx, saleID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, l.rejectPayment(fmt.Errorf("%w: id %d", ErrSaleNotFound, saleID))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sale: %w", err)
	}
	if amount > current.Balance {
		return nil, nil, l.rejectPayment(fmt.Errorf("%w: balance is %d", ErrAmountExceedsBalance, current.Balance))
	}

	sale, payment, err = l.store.ApplyPaymentTx(ctx, saleID, amount, strings.TrimSpace(note))
	switch {
	case errors.Is(err, store.ErrInsufficientBalance):
		// another payment landed between the read and the row lock
		return nil, nil, l.rejectPayment(fmt.Errorf("%w: %v", ErrAmountExceedsBalance, err))
	case errors.Is(err, store.ErrNotFound):
		return nil, nil, l.rejectPayment(fmt.Errorf("%w: id %d", ErrSaleNotFound, saleID))
	case err != nil:
		return nil, nil, fmt.Errorf("failed to apply payment: %w", err)
	}

	util.PaymentsAppliedTotal.Inc()
	util.PaymentsCollectedTotal.Add(float64(amount))

	l.logger.Info("Payment applied",
		zap.Int64("sale_id", saleID),
		zap.Int64("payment_id", payment.ID),
		zap.Int64("amount", amount),
		zap.Int64("balance", sale.Balance),
		zap.String("status", string(sale.Status())))

	l.publish(ctx, models.EventTypePaymentApplied, saleID, func(ctx context.Context, base models.BaseEvent) error {
		return l.publisher.PublishPaymentApplied(ctx, &models.PaymentAppliedEvent{
			BaseEvent:     base,
			SaleID:        saleID,
			PaymentID:     payment.ID,
			Amount:        amount,
			Balance:       sale.Balance,
			SaleCreatedAt: sale.CreatedAt,
		})
	})

	return sale, payment, nil
}

// DeleteSale removes a sale together with its payments
func (l *Ledger) DeleteSale(ctx context.Context, id int64) (err error) {
	ctx, span := util.StartSpan(ctx, "Ledger.DeleteSale", attribute.Int64("sale.id", id))
	defer func() { util.EndSpan(span, err) }()

	sale, err := l.store.DeleteSale(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: id %d", ErrSaleNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	util.SalesDeletedTotal.Inc()
	l.logger.Info("Sale deleted", zap.Int64("sale_id", id), zap.Int64("total", sale.Total))
	l.publishDeleted(ctx, sale)
	return nil
}

// DeleteAllSales clears the ledger and returns how many sales were removed
func (l *Ledger) DeleteAllSales(ctx context.Context) (n int64, err error) {
	ctx, span := util.StartSpan(ctx, "Ledger.DeleteAllSales")
	defer func() { util.EndSpan(span, err) }()

	sales, err := l.store.DeleteAllSales(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sales: %w", err)
	}
	n = int64(len(sales))

	util.SalesDeletedTotal.Add(float64(n))
	l.logger.Warn("Ledger cleared", zap.Int64("sales_deleted", n))

	for i := range sales {
		l.publishDeleted(ctx, &sales[i])
	}
	return n, nil
}

// GetSale retrieves a sale by ID
func (l *Ledger) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "Ledger.GetSale", attribute.Int64("sale.id", id))
	defer span.End()

	sale, err := l.store.GetSaleByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrSaleNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return sale, nil
}

// ListPayments returns the payments of a sale, oldest first
func (l *Ledger) ListPayments(ctx context.Context, saleID int64) ([]models.Payment, error) {
	ctx, span := util.StartSpan(ctx, "Ledger.ListPayments", attribute.Int64("sale.id", saleID))
	defer span.End()

	if _, err := l.GetSale(ctx, saleID); err != nil {
		return nil, err
	}
	payments, err := l.store.ListPaymentsBySale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// ListSales returns the sales matching filter, newest first, together with
// the summary of that same set
func (l *Ledger) ListSales(ctx context.Context, filter models.SaleFilter) (*SaleList, error) {
	ctx, span := util.StartSpan(ctx, "Ledger.ListSales")
	defer span.End()

	list := &SaleList{Sales: []models.Sale{}}
	err := l.EachSale(ctx, filter, func(s *models.Sale) error {
		list.Sales = append(list.Sales, *s)
		list.Summary.Add(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Summarize aggregates the sales matching filter without keeping them
func (l *Ledger) Summarize(ctx context.Context, filter models.SaleFilter) (models.SaleSummary, error) {
	var sum models.SaleSummary
	err := l.EachSale(ctx, filter, func(s *models.Sale) error {
		sum.Add(s)
		return nil
	})
	return sum, err
}

// EachSale streams the sales matching filter, newest first. A day filter is
// evaluated in the business time zone.
func (l *Ledger) EachSale(ctx context.Context, filter models.SaleFilter, fn func(*models.Sale) error) error {
	if !filter.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, filter.Status)
	}
	if filter.Day != nil {
		day := filter.Day.In(l.loc)
		filter.Day = &day
	}

	err := l.store.EachSale(ctx, filter, func(s *models.Sale) error {
		if !filter.Matches(s) {
			return nil
		}
		return fn(s)
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return err
		}
		return fmt.Errorf("failed to list sales: %w", err)
	}
	return nil
}

// ParseDay parses a YYYY-MM-DD calendar day in loc
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day must be YYYY-MM-DD", ErrInvalidFilter)
	}
	return day, nil
}

func (l *Ledger) publishDeleted(ctx context.Context, sale *models.Sale) {
	l.publish(ctx, models.EventTypeSaleDeleted, sale.ID, func(ctx context.Context, base models.BaseEvent) error {
		return l.publisher.PublishSaleDeleted(ctx, &models.SaleDeletedEvent{
			BaseEvent: base,
			SaleID:    sale.ID,
			Total:     sale.Total,
			Paid:      sale.Paid,
			CreatedAt: sale.CreatedAt,
		})
	})
}

// publish sends an event after the ledger write has committed. Failures are
// logged only; the write is already durable. The publish is detached from
// the request's cancellation.
func (l *Ledger) publish(ctx context.Context, eventType string, saleID int64, send func(context.Context, models.BaseEvent) error) {
	if l.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	base := models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: l.now(),
	}
	if err := send(ctx, base); err != nil {
		util.WithTrace(ctx, l.logger).Error("Failed to publish ledger event",
			zap.String("event_type", eventType),
			zap.Int64("sale_id", saleID),
			zap.Error(err))
	}
}

func (l *Ledger) rejectSale(err error) error {
	util.SalesRejectedTotal.WithLabelValues(strings.ToLower(CodeOf(err))).Inc()
	return err
}

func (l *Ledger) rejectPayment(err error) error {
	util.PaymentsRejectedTotal.WithLabelValues(strings.ToLower(CodeOf(err))).Inc()
	return err
}
