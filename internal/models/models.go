package models

import (
	"encoding/json"
	"time"
)

// Dish represents a sellable item in the catalog
type Dish struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Price       int64     `db:"price" json:"price"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Sale is a single-dish sale. Product and Price are copied from the dish
// when the sale is registered and never follow later catalog edits.
type Sale struct {
	ID             int64     `db:"id" json:"id"`
	Product        string    `db:"product" json:"product"`
	Price          int64     `db:"price" json:"price"`
	Quantity       int       `db:"quantity" json:"quantity"`
	Total          int64     `db:"total" json:"total"`
	Paid           int64     `db:"paid" json:"paid"`
	Balance        int64     `db:"balance" json:"balance"`
	CustomerName   string    `db:"customer_name" json:"customer_name"`
	Notes          string    `db:"notes" json:"notes,omitempty"`
	IdempotencyKey string    `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Status derives the payment status from the monetary fields.
// A zero balance wins, so a zero-total sale reports PAID.
func (s *Sale) Status() SaleStatus {
	switch {
	case s.Balance == 0:
		return SaleStatusPaid
	case s.Paid > 0:
		return SaleStatusPartial
	default:
		return SaleStatusPending
	}
}

// MarshalJSON adds the derived status to the serialized sale.
func (s Sale) MarshalJSON() ([]byte, error) {
	type sale Sale
	return json.Marshal(struct {
		sale
		Status SaleStatus `json:"status"`
	}{sale: sale(s), Status: s.Status()})
}

// Payment is an abono applied against a sale
type Payment struct {
	ID        int64     `db:"id" json:"id"`
	SaleID    int64     `db:"sale_id" json:"sale_id"`
	Amount    int64     `db:"amount" json:"amount"`
	Note      string    `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// InventoryItem represents an ingredient or supply tracked in stock
type InventoryItem struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Quantity    float64   `db:"quantity" json:"quantity"`
	Unit        string    `db:"unit" json:"unit"`
	MinStock    float64   `db:"min_stock" json:"min_stock"`
	CostPerUnit int64     `db:"cost_per_unit" json:"cost_per_unit"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StockStatus derives the stock level of the item.
func (i *InventoryItem) StockStatus() StockStatus {
	switch {
	case i.Quantity <= 0:
		return StockOutOfStock
	case i.Quantity <= i.MinStock:
		return StockLow
	default:
		return StockOK
	}
}

// MarshalJSON adds the derived stock status to the serialized item.
func (i InventoryItem) MarshalJSON() ([]byte, error) {
	type item InventoryItem
	return json.Marshal(struct {
		item
		Status StockStatus `json:"status"`
	}{item: item(i), Status: i.StockStatus()})
}

// Profile is an application user
type Profile struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsAdmin checks if the profile has the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// SaleStatus is the derived payment status of a sale
type SaleStatus string

// Sale statuses
const (
	SaleStatusPaid    SaleStatus = "PAID"
	SaleStatusPartial SaleStatus = "PARTIAL"
	SaleStatusPending SaleStatus = "PENDING"
	SaleStatusAll     SaleStatus = "ALL"
)

// Valid reports whether s is a status accepted by sale filters.
func (s SaleStatus) Valid() bool {
	switch s {
	case "", SaleStatusAll, SaleStatusPaid, SaleStatusPartial, SaleStatusPending:
		return true
	}
	return false
}

// StockStatus is the derived stock level of an inventory item
type StockStatus string

// Stock statuses
const (
	StockOK         StockStatus = "OK"
	StockLow        StockStatus = "LOW"
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
)

// Valid reports whether s names a stock status.
func (s StockStatus) Valid() bool {
	switch s {
	case StockOK, StockLow, StockOutOfStock:
		return true
	}
	return false
}

// Profile roles
const (
	RoleAdmin      = "admin"
	RoleVendedor   = "vendedor"
	RoleSupervisor = "supervisor"
)

// ValidRole reports whether role is one of the known profile roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleVendedor, RoleSupervisor:
		return true
	}
	return false
}

// InitialPaymentNote marks the payment row recorded together with a new sale.
const InitialPaymentNote = "initial payment"
