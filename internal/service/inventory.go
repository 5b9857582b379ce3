package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"restaurant-pos/internal/models"
	"restaurant-pos/internal/store"
	"restaurant-pos/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultCategory = "General"
	defaultUnit     = "unidad"
)

// InventoryItemRequest represents the editable fields of an inventory item
type InventoryItemRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	MinStock    float64 `json:"min_stock"`
	CostPerUnit int64   `json:"cost_per_unit"`
	Notes       string  `json:"notes"`
}

// InventoryService manages ingredients and supplies
type InventoryService struct {
	store  InventoryStore
	logger *zap.Logger
}

// NewInventoryService creates an inventory service
func NewInventoryService(store InventoryStore) *InventoryService {
	return &InventoryService{
		store:  store,
		logger: util.WithComponent("inventory"),
	}
}

// List returns the items matching filter, ordered by name
func (s *InventoryService) List(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown stock status %q", ErrInvalidFilter, filter.Status)
	}

	items, err := s.store.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	matched := make([]models.InventoryItem, 0, len(items))
	for i := range items {
		if filter.Matches(&items[i]) {
			matched = append(matched, items[i])
		}
	}
	return matched, nil
}

// Get retrieves an item by ID
func (s *InventoryService) Get(ctx context.Context, id int64) (*models.InventoryItem, error) {
	item, err := s.store.GetInventoryItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrInventoryItemNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

// Create adds an item
func (s *InventoryService) Create(ctx context.Context, req *InventoryItemRequest) (*models.InventoryItem, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.Create")
	defer span.End()

	item := &models.InventoryItem{}
	if err := applyInventoryRequest(item, req); err != nil {
		return nil, err
	}

	if err := s.store.CreateInventoryItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	s.logger.Info("Inventory item created",
		zap.Int64("item_id", item.ID),
		zap.String("name", item.Name),
		zap.String("status", string(item.StockStatus())))
	return item, nil
}

// Update replaces the editable fields of an item
func (s *InventoryService) Update(ctx context.Context, id int64, req *InventoryItemRequest) (*models.InventoryItem, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.Update")
	defer span.End()

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyInventoryRequest(item, req); err != nil {
		return nil, err
	}

	if err := s.store.UpdateInventoryItem(ctx, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrInventoryItemNotFound, id)
		}
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}

	s.logger.Info("Inventory item updated", zap.Int64("item_id", id))
	return item, nil
}

// Delete removes an item
func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteInventoryItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: id %d", ErrInventoryItemNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	s.logger.Info("Inventory item deleted", zap.Int64("item_id", id))
	return nil
}

// Categories returns the distinct categories in use, sorted
func (s *InventoryService) Categories(ctx context.Context) ([]string, error) {
	items, err := s.store.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	seen := make(map[string]struct{})
	categories := []string{}
	for _, item := range items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		categories = append(categories, item.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// Summary counts items and low stock and values the inventory at cost
func (s *InventoryService) Summary(ctx context.Context) (*models.InventorySummary, error) {
	items, err := s.store.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return Summarize(items), nil
}

// Summarize aggregates items. Valuation is Σ quantity × cost, rounded to
// whole currency units.
func Summarize(items []models.InventoryItem) *models.InventorySummary {
	sum := &models.InventorySummary{Items: len(items)}
	value := decimal.Zero
	for i := range items {
		if items[i].StockStatus() != models.StockOK {
			sum.LowStock++
		}
		qty := decimal.NewFromFloat(items[i].Quantity)
		value = value.Add(qty.Mul(decimal.NewFromInt(items[i].CostPerUnit)))
	}
	sum.TotalValue = value.Round(0).IntPart()
	return sum
}

func applyInventoryRequest(item *models.InventoryItem, req *InventoryItemRequest) error {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInventoryItem)
	case req.Quantity < 0 || math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0):
		return fmt.Errorf("%w: quantity must be zero or more", ErrInvalidInventoryItem)
	case req.MinStock < 0 || math.IsNaN(req.MinStock) || math.IsInf(req.MinStock, 0):
		return fmt.Errorf("%w: minimum stock must be zero or more", ErrInvalidInventoryItem)
	case req.CostPerUnit < 0:
		return fmt.Errorf("%w: cost per unit must be zero or more", ErrInvalidInventoryItem)
	}

	item.Name = name
	item.Category = strings.TrimSpace(req.Category)
	if item.Category == "" {
		item.Category = defaultCategory
	}
	item.Quantity = req.Quantity
	item.Unit = strings.TrimSpace(req.Unit)
	if item.Unit == "" {
		item.Unit = defaultUnit
	}
	item.MinStock = req.MinStock
	item.CostPerUnit = req.CostPerUnit
	item.Notes = strings.TrimSpace(req.Notes)
	return nil
}
