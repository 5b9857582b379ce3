package api

import (
	"context"
	"time"

	"restaurant-pos/internal/models"
	"restaurant-pos/internal/service"
)

// Ledger is the sales ledger as used by the handlers
type Ledger interface {
	CreateSale(ctx context.Context, req *service.CreateSaleRequest) (*service.CreateSaleResult, error)
	ApplyPayment(ctx context.Context, saleID, amount int64, note string) (*models.Sale, *models.Payment, error)
	DeleteSale(ctx context.Context, id int64) error
	DeleteAllSales(ctx context.Context) (int64, error)
	GetSale(ctx context.Context, id int64) (*models.Sale, error)
	ListPayments(ctx context.Context, saleID int64) ([]models.Payment, error)
	ListSales(ctx context.Context, filter models.SaleFilter) (*service.SaleList, error)
	Location() *time.Location
}

// Reports builds aggregates over the ledger
type Reports interface {
	SalesByDay(ctx context.Context, days int) ([]models.DayBucket, error)
	TopProducts(ctx context.Context, limit int) ([]models.ProductBucket, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

// Catalog manages dishes
type Catalog interface {
	ListActive(ctx context.Context) ([]models.Dish, error)
	ListAll(ctx context.Context) ([]models.Dish, error)
	Get(ctx context.Context, id int64) (*models.Dish, error)
	Create(ctx context.Context, req *service.DishRequest) (*models.Dish, error)
	Update(ctx context.Context, id int64, req *service.DishRequest) (*models.Dish, error)
	SetActive(ctx context.Context, id int64, active bool) (*models.Dish, error)
	Delete(ctx context.Context, id int64) error
}

// Inventory manages stock items
type Inventory interface {
	List(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, error)
	Get(ctx context.Context, id int64) (*models.InventoryItem, error)
	Create(ctx context.Context, req *service.InventoryItemRequest) (*models.InventoryItem, error)
	Update(ctx context.Context, id int64, req *service.InventoryItemRequest) (*models.InventoryItem, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
	Summary(ctx context.Context) (*models.InventorySummary, error)
}

// Users manages accounts and resolves bearer tokens
type Users interface {
	Register(ctx context.Context, email, password string) (*models.Profile, error)
	Login(ctx context.Context, email, password string) (*service.LoginResponse, error)
	Authorize(ctx context.Context, token string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Activate(ctx context.Context, id string) (*models.Profile, error)
	Deactivate(ctx context.Context, id string) (*models.Profile, error)
	Update(ctx context.Context, id, role string, active *bool) (*models.Profile, error)
	Delete(ctx context.Context, id string) error
}

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}
