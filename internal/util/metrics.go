package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_created_total",
		Help: "Total number of sales registered",
	})

	SalesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_rejected_total",
		Help: "Total number of rejected sale registrations",
	}, []string{"reason"})

	SalesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_deleted_total",
		Help: "Total number of deleted sales",
	})

	SalesRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_revenue_total",
		Help: "Sum of sale totals registered, in currency units",
	})

	LedgerWarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_warnings_total",
		Help: "Operations that succeeded with a warning",
	}, []string{"reason"})

	PaymentsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_applied_total",
		Help: "Total number of payments (abonos) applied",
	})

	PaymentsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_rejected_total",
		Help: "Total number of rejected payments",
	}, []string{"reason"})

	PaymentsCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_collected_total",
		Help: "Sum of payment amounts collected, in currency units",
	})

	PaymentLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_apply_latency_seconds",
		Help:    "Latency of applying a payment against a sale",
		Buckets: prometheus.DefBuckets,
	})

	CatalogCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_results_total",
		Help: "Active dish cache lookups by result",
	}, []string{"result"})

	LedgerEventsProjected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_projected_total",
		Help: "Ledger events applied to the dashboard projection",
	}, []string{"event_type"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
