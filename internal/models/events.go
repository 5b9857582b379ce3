package models

import "time"

// Event types
const (
	EventTypeSaleCreated    = "SALE_CREATED"
	EventTypePaymentApplied = "PAYMENT_APPLIED"
	EventTypeSaleDeleted    = "SALE_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleCreatedEvent published when a sale is registered
type SaleCreatedEvent struct {
	BaseEvent
	SaleID       int64     `json:"sale_id"`
	Product      string    `json:"product"`
	Quantity     int       `json:"quantity"`
	Total        int64     `json:"total"`
	Paid         int64     `json:"paid"`
	CustomerName string    `json:"customer_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// PaymentAppliedEvent published when an abono is recorded
type PaymentAppliedEvent struct {
	BaseEvent
	SaleID        int64     `json:"sale_id"`
	PaymentID     int64     `json:"payment_id"`
	Amount        int64     `json:"amount"`
	Balance       int64     `json:"balance"`
	SaleCreatedAt time.Time `json:"sale_created_at"`
}

// SaleDeletedEvent published when a sale and its payments are removed
type SaleDeletedEvent struct {
	BaseEvent
	SaleID    int64     `json:"sale_id"`
	Total     int64     `json:"total"`
	Paid      int64     `json:"paid"`
	CreatedAt time.Time `json:"created_at"`
}
