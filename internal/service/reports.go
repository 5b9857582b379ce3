package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"restaurant-pos/internal/models"
	"restaurant-pos/internal/util"

	"go.uber.org/zap"
)

const maxReportDays = 366

// ReportService builds the sales reports and the dashboard
type ReportService struct {
	ledger *Ledger
	stats  DayStatsReader
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService creates a report service
func NewReportService(ledger *Ledger, stats DayStatsReader) *ReportService {
	return &ReportService{
		ledger: ledger,
		stats:  stats,
		logger: util.WithComponent("reports"),
		now:    time.Now,
	}
}

// SalesByDay returns one bucket per calendar day for the trailing days,
// oldest first, including days without sales
func (r *ReportService) SalesByDay(ctx context.Context, days int) (buckets []models.DayBucket, err error) {
	ctx, span := util.StartSpan(ctx, "ReportService.SalesByDay")
	defer func() { util.EndSpan(span, err) }()

	if days < 1 || days > maxReportDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidFilter, maxReportDays)
	}

	today := models.StartOfDay(r.now().In(r.ledger.Location()))
	from := today.AddDate(0, 0, -(days - 1))

	agg := NewDayAggregator(from, days)
	err = r.ledger.EachSale(ctx, models.SaleFilter{Since: &from}, func(s *models.Sale) error {
		agg.Add(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agg.Buckets(), nil
}

// TopProducts ranks products by revenue over the whole ledger. A limit of
// zero or less returns every product.
func (r *ReportService) TopProducts(ctx context.Context, limit int) (ranking []models.ProductBucket, err error) {
	ctx, span := util.StartSpan(ctx, "ReportService.TopProducts")
	defer func() { util.EndSpan(span, err) }()

	agg := NewProductAggregator()
	err = r.ledger.EachSale(ctx, models.SaleFilter{}, func(s *models.Sale) error {
		agg.Add(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agg.Top(limit), nil
}

// Dashboard returns the ledger totals and today's projected counters.
// Projection failures degrade to zero counters.
func (r *ReportService) Dashboard(ctx context.Context) (dash *models.Dashboard, err error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Dashboard")
	defer func() { util.EndSpan(span, err) }()

	totals, err := r.ledger.Summarize(ctx, models.SaleFilter{})
	if err != nil {
		return nil, err
	}

	day := DayKey(r.now(), r.ledger.Location())
	today := models.DayStats{Date: day}
	if r.stats != nil {
		stats, statsErr := r.stats.GetDayStats(ctx, day)
		if statsErr != nil {
			r.logger.Warn("Failed to read day stats", zap.String("day", day), zap.Error(statsErr))
		} else {
			today = stats
		}
	}

	return &models.Dashboard{Totals: totals, Today: today}, nil
}

// DayKey formats the calendar day of t in loc as YYYY-MM-DD
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// DayAggregator accumulates sales into consecutive calendar-day buckets
type DayAggregator struct {
	buckets []models.DayBucket
}

// NewDayAggregator creates days buckets starting at from's calendar day
func NewDayAggregator(from time.Time, days int) *DayAggregator {
	start := models.StartOfDay(from)
	buckets := make([]models.DayBucket, days)
	for i := range buckets {
		buckets[i].Date = start.AddDate(0, 0, i)
	}
	return &DayAggregator{buckets: buckets}
}

// Add counts s in the bucket of its calendar day; sales outside the window
// are ignored
func (a *DayAggregator) Add(s *models.Sale) {
	for i := range a.buckets {
		if models.SameDay(s.CreatedAt, a.buckets[i].Date) {
			a.buckets[i].Count++
			a.buckets[i].Revenue += s.Total
			return
		}
	}
}

// Buckets returns the buckets, oldest first
func (a *DayAggregator) Buckets() []models.DayBucket {
	return a.buckets
}

// ProductAggregator accumulates sales by product name
type ProductAggregator struct {
	byName map[string]*models.ProductBucket
}

func NewProductAggregator() *ProductAggregator {
	return &ProductAggregator{byName: make(map[string]*models.ProductBucket)}
}

// Add counts s under its product name
func (a *ProductAggregator) Add(s *models.Sale) {
	b, ok := a.byName[s.Product]
	if !ok {
		b = &models.ProductBucket{Product: s.Product}
		a.byName[s.Product] = b
	}
	b.Count++
	b.Quantity += s.Quantity
	b.Revenue += s.Total
}

// Top returns products by revenue, then quantity, then name, truncated to
// limit when limit > 0
func (a *ProductAggregator) Top(limit int) []models.ProductBucket {
	ranking := make([]models.ProductBucket, 0, len(a.byName))
	for _, b := range a.byName {
		ranking = append(ranking, *b)
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Revenue != ranking[j].Revenue {
			return ranking[i].Revenue > ranking[j].Revenue
		}
		if ranking[i].Quantity != ranking[j].Quantity {
			return ranking[i].Quantity > ranking[j].Quantity
		}
		return ranking[i].Product < ranking[j].Product
	})

	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}
