package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant-pos/internal/models"
)

const dishColumns = "id, name, price, description, active, created_at, updated_at"

// GetDishByID retrieves a dish by ID
func (s *Store) GetDishByID(ctx context.Context, id int64) (*models.Dish, error) {
	var dish models.Dish
	err := s.db.GetContext(ctx, &dish, "SELECT "+dishColumns+" FROM dishes WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dish %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

// ListDishes retrieves dishes ordered by name, optionally only active ones
func (s *Store) ListDishes(ctx context.Context, activeOnly bool) ([]models.Dish, error) {
	query := "SELECT " + dishColumns + " FROM dishes"
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name"

	dishes := []models.Dish{}
	err := s.db.SelectContext(ctx, &dishes, query)
	return dishes, err
}

// CreateDish inserts a new dish
func (s *Store) CreateDish(ctx context.Context, dish *models.Dish) error {
	query := `
		INSERT INTO dishes (name, price, description, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, dish, query,
		dish.Name, dish.Price, dish.Description, dish.Active)
}

// UpdateDish overwrites the editable fields of a dish
func (s *Store) UpdateDish(ctx context.Context, dish *models.Dish) error {
	query := `
		UPDATE dishes
		SET name = $1, price = $2, description = $3, active = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`

	err := s.db.GetContext(ctx, &dish.UpdatedAt, query,
		dish.Name, dish.Price, dish.Description, dish.Active, dish.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("dish %d: %w", dish.ID, ErrNotFound)
	}
	return err
}

// DeleteDish removes a dish. Sales keep their snapshot of it.
func (s *Store) DeleteDish(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM dishes WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, fmt.Sprintf("dish %d", id))
}

func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
