package service

import (
	"context"

	"restaurant-pos/internal/models"
)

// SaleStore is the persistence the ledger needs
type SaleStore interface {
	GetDishByID(ctx context.Context, id int64) (*models.Dish, error)
	CreateSale(ctx context.Context, sale *models.Sale) error
	GetSaleByID(ctx context.Context, id int64) (*models.Sale, error)
	GetSaleByIdempotencyKey(ctx context.Context, key string) (*models.Sale, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	ApplyPaymentTx(ctx context.Context, saleID, amount int64, note string) (*models.Sale, *models.Payment, error)
	DeleteSale(ctx context.Context, id int64) (*models.Sale, error)
	DeleteAllSales(ctx context.Context) ([]models.Sale, error)
	ListPaymentsBySale(ctx context.Context, saleID int64) ([]models.Payment, error)
	EachSale(ctx context.Context, filter models.SaleFilter, fn func(*models.Sale) error) error
}

// DishStore is the persistence of the catalog
type DishStore interface {
	GetDishByID(ctx context.Context, id int64) (*models.Dish, error)
	ListDishes(ctx context.Context, activeOnly bool) ([]models.Dish, error)
	CreateDish(ctx context.Context, dish *models.Dish) error
	UpdateDish(ctx context.Context, dish *models.Dish) error
	DeleteDish(ctx context.Context, id int64) error
}

// InventoryStore is the persistence of inventory items
type InventoryStore interface {
	ListInventory(ctx context.Context) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	DeleteInventoryItem(ctx context.Context, id int64) error
}

// ProfileStore is the persistence of user profiles
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	UpdateProfileAccess(ctx context.Context, id, role string, active bool) error
	DeleteProfile(ctx context.Context, id string) error
}

// LedgerPublisher announces ledger changes to other consumers
type LedgerPublisher interface {
	PublishSaleCreated(ctx context.Context, event *models.SaleCreatedEvent) error
	PublishPaymentApplied(ctx context.Context, event *models.PaymentAppliedEvent) error
	PublishSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error
}

// CatalogCache caches the public list of active dishes
type CatalogCache interface {
	GetActiveDishes(ctx context.Context) ([]models.Dish, bool, error)
	SetActiveDishes(ctx context.Context, dishes []models.Dish) error
	InvalidateActiveDishes(ctx context.Context) error
}

// DayStatsReader reads the projected counters of one calendar day
type DayStatsReader interface {
	GetDayStats(ctx context.Context, day string) (models.DayStats, error)
}
