package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant-pos/internal/models"
)

const inventoryColumns = "id, name, category, quantity, unit, min_stock, cost_per_unit, notes, created_at, updated_at"

// ListInventory retrieves inventory items ordered by name
func (s *Store) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	err := s.db.SelectContext(ctx, &items, "SELECT "+inventoryColumns+" FROM inventory ORDER BY name")
	return items, err
}

// GetInventoryItem retrieves an inventory item by ID
func (s *Store) GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.GetContext(ctx, &item, "SELECT "+inventoryColumns+" FROM inventory WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("inventory item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateInventoryItem inserts a new inventory item
func (s *Store) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory (name, category, quantity, unit, min_stock, cost_per_unit, notes)
		VALUES (:name, :category, :quantity, :unit, :min_stock, :cost_per_unit, :notes)
		RETURNING id, created_at, updated_at`

	rows, err := s.db.NamedQueryContext(ctx, query, item)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return fmt.Errorf("insert inventory item returned no row")
	}
	return rows.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

// UpdateInventoryItem overwrites an inventory item
func (s *Store) UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	query := `
		UPDATE inventory
		SET name = :name, category = :category, quantity = :quantity, unit = :unit,
		    min_stock = :min_stock, cost_per_unit = :cost_per_unit, notes = :notes, updated_at = NOW()
		WHERE id = :id`

	res, err := s.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return err
	}
	return expectAffected(res, fmt.Sprintf("inventory item %d", item.ID))
}

// DeleteInventoryItem removes an inventory item
func (s *Store) DeleteInventoryItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM inventory WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, fmt.Sprintf("inventory item %d", id))
}
