package models

import "time"

// DayBucket aggregates the sales of one calendar day
type DayBucket struct {
	Date    time.Time `json:"date"`
	Count   int       `json:"count"`
	Revenue int64     `json:"revenue"`
}

// ProductBucket aggregates the sales of one product name
type ProductBucket struct {
	Product  string `json:"product"`
	Count    int    `json:"count"`
	Quantity int    `json:"quantity"`
	Revenue  int64  `json:"revenue"`
}

// DayStats holds the projected counters of one calendar day (YYYY-MM-DD)
type DayStats struct {
	Date      string `json:"date"`
	Sales     int64  `json:"sales"`
	Revenue   int64  `json:"revenue"`
	Collected int64  `json:"collected"`
}

// Dashboard is the home screen summary
type Dashboard struct {
	Totals SaleSummary `json:"totals"`
	Today  DayStats    `json:"today"`
}

// InventorySummary aggregates the inventory
type InventorySummary struct {
	Items      int   `json:"items"`
	LowStock   int   `json:"low_stock"`
	TotalValue int64 `json:"total_value"`
}
