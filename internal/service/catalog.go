package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant-pos/internal/models"
	"restaurant-pos/internal/store"
	"restaurant-pos/internal/util"

	"go.uber.org/zap"
)

// DishRequest carries dish fields. On update, nil fields keep their value.
type DishRequest struct {
	Name        *string `json:"name"`
	Price       *int64  `json:"price"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// CatalogService manages the dishes offered for sale
type CatalogService struct {
	store  DishStore
	cache  CatalogCache
	logger *zap.Logger
}

// NewCatalogService creates a catalog service
func NewCatalogService(store DishStore, cache CatalogCache) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		logger: util.WithComponent("catalog"),
	}
}

// ListActive returns the active dishes ordered by name, served from the
// cache when possible
func (c *CatalogService) ListActive(ctx context.Context) ([]models.Dish, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListActive")
	defer span.End()

	dishes, ok, err := c.cache.GetActiveDishes(ctx)
	switch {
	case err != nil:
		util.CatalogCacheResults.WithLabelValues("error").Inc()
		c.logger.Warn("Failed to read catalog cache", zap.Error(err))
	case ok:
		util.CatalogCacheResults.WithLabelValues("hit").Inc()
		return dishes, nil
	default:
		util.CatalogCacheResults.WithLabelValues("miss").Inc()
	}

	dishes, err = c.store.ListDishes(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}

	if err := c.cache.SetActiveDishes(ctx, dishes); err != nil {
		c.logger.Warn("Failed to fill catalog cache", zap.Error(err))
	}
	return dishes, nil
}

// ListAll returns every dish, active or not
func (c *CatalogService) ListAll(ctx context.Context) ([]models.Dish, error) {
	dishes, err := c.store.ListDishes(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	return dishes, nil
}

// Get retrieves a dish by ID
func (c *CatalogService) Get(ctx context.Context, id int64) (*models.Dish, error) {
	dish, err := c.store.GetDishByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrDishNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dish: %w", err)
	}
	return dish, nil
}

// Create adds a dish. New dishes are active unless stated otherwise.
func (c *CatalogService) Create(ctx context.Context, req *DishRequest) (*models.Dish, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Create")
	defer span.End()

	dish := &models.Dish{Active: true}
	if err := applyDishRequest(dish, req); err != nil {
		return nil, err
	}
	if dish.Name == "" || dish.Price <= 0 {
		return nil, ErrInvalidDish
	}

	if err := c.store.CreateDish(ctx, dish); err != nil {
		return nil, fmt.Errorf("failed to create dish: %w", err)
	}

	c.logger.Info("Dish created", zap.Int64("dish_id", dish.ID), zap.String("name", dish.Name))
	c.invalidate(ctx)
	return dish, nil
}

// Update changes the provided fields of a dish
func (c *CatalogService) Update(ctx context.Context, id int64, req *DishRequest) (*models.Dish, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Update")
	defer span.End()

	dish, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyDishRequest(dish, req); err != nil {
		return nil, err
	}

	if err := c.store.UpdateDish(ctx, dish); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrDishNotFound, id)
		}
		return nil, fmt.Errorf("failed to update dish: %w", err)
	}

	c.logger.Info("Dish updated", zap.Int64("dish_id", id))
	c.invalidate(ctx)
	return dish, nil
}

// SetActive toggles whether a dish can be sold
func (c *CatalogService) SetActive(ctx context.Context, id int64, active bool) (*models.Dish, error) {
	return c.Update(ctx, id, &DishRequest{Active: &active})
}

// Delete removes a dish. Past sales keep their copy of its name and price.
func (c *CatalogService) Delete(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.Delete")
	defer span.End()

	err := c.store.DeleteDish(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: id %d", ErrDishNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete dish: %w", err)
	}

	c.logger.Info("Dish deleted", zap.Int64("dish_id", id))
	c.invalidate(ctx)
	return nil
}

func (c *CatalogService) invalidate(ctx context.Context) {
	if err := c.cache.InvalidateActiveDishes(ctx); err != nil {
		c.logger.Error("Failed to invalidate catalog cache", zap.Error(err))
	}
}

func applyDishRequest(dish *models.Dish, req *DishRequest) error {
	if req.Name != nil {
		dish.Name = strings.TrimSpace(*req.Name)
		if dish.Name == "" {
			return ErrInvalidDish
		}
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return ErrInvalidDish
		}
		dish.Price = *req.Price
	}
	if req.Description != nil {
		dish.Description = strings.TrimSpace(*req.Description)
	}
	if req.Active != nil {
		dish.Active = *req.Active
	}
	return nil
}
