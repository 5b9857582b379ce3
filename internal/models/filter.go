package models

import "time"

// SaleFilter selects sales for history and reports. Zero-valued fields are
// ignored; the rest are combined with AND.
type SaleFilter struct {
	Status       SaleStatus
	CustomerName string
	Product      string
	// Day matches sales created on the same calendar day as Day, in Day's
	// location. Time of day is ignored.
	Day *time.Time
	// Since keeps sales created at or after the instant.
	Since *time.Time
}

// Matches reports whether s satisfies every field of the filter.
func (f SaleFilter) Matches(s *Sale) bool {
	if f.Status != "" && f.Status != SaleStatusAll && s.Status() != f.Status {
		return false
	}
	if f.CustomerName != "" && s.CustomerName != f.CustomerName {
		return false
	}
	if f.Product != "" && s.Product != f.Product {
		return false
	}
	if f.Day != nil && !SameDay(s.CreatedAt, *f.Day) {
		return false
	}
	if f.Since != nil && s.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// DayBounds returns the half-open interval [start, end) covering the
// filter's calendar day. ok is false when no day is set.
func (f SaleFilter) DayBounds() (start, end time.Time, ok bool) {
	if f.Day == nil {
		return time.Time{}, time.Time{}, false
	}
	start = StartOfDay(*f.Day)
	return start, start.AddDate(0, 0, 1), true
}

// SameDay compares the calendar dates of a and b in b's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SaleSummary aggregates a set of sales.
type SaleSummary struct {
	Count        int   `json:"count"`
	TotalAmount  int64 `json:"total"`
	TotalPaid    int64 `json:"paid"`
	TotalBalance int64 `json:"balance"`
}

// Add folds s into the summary.
func (sum *SaleSummary) Add(s *Sale) {
	sum.Count++
	sum.TotalAmount += s.Total
	sum.TotalPaid += s.Paid
	sum.TotalBalance += s.Balance
}

// InventoryFilter selects inventory items. Empty fields are ignored.
type InventoryFilter struct {
	Category string
	Status   StockStatus
}

// Matches reports whether item satisfies the filter.
func (f InventoryFilter) Matches(item *InventoryItem) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Status != "" && item.StockStatus() != f.Status {
		return false
	}
	return true
}
