package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"restaurant-pos/internal/models"
)

const saleColumns = "id, product, price, quantity, total, paid, balance, customer_name, notes, idempotency_key, created_at, updated_at"

// CreateSale creates a new sale
func (s *Store) CreateSale(ctx context.Context, sale *models.Sale) error {
	query := `
		INSERT INTO sales (product, price, quantity, total, paid, balance, customer_name, notes, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := s.db.GetContext(ctx, sale, query,
		sale.Product, sale.Price, sale.Quantity, sale.Total, sale.Paid, sale.Balance,
		sale.CustomerName, sale.Notes, sale.IdempotencyKey)
	if isUniqueViolation(err) {
		return fmt.Errorf("sale with idempotency key %q: %w", sale.IdempotencyKey, ErrDuplicate)
	}
	return err
}

// GetSaleByID retrieves a sale by ID
func (s *Store) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.GetContext(ctx, &sale, "SELECT "+saleColumns+" FROM sales WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sale %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetSaleByIdempotencyKey retrieves a sale by idempotency key
func (s *Store) GetSaleByIdempotencyKey(ctx context.Context, key string) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.GetContext(ctx, &sale, "SELECT "+saleColumns+" FROM sales WHERE idempotency_key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// CreatePayment creates a new payment record
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (sale_id, amount, note)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, payment, query,
		payment.SaleID, payment.Amount, payment.Note)
}

// ApplyPaymentTx records a payment and moves it into the sale's paid
// amount in one transaction. The sale row is locked (FOR UPDATE) so
// concurrent payments against the same sale are serialized.
func (s *Store) ApplyPaymentTx(ctx context.Context, saleID, amount int64, note string) (*models.Sale, *models.Payment, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var sale models.Sale
	err = tx.GetContext(ctx, &sale, "SELECT "+saleColumns+" FROM sales WHERE id = $1 FOR UPDATE", saleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("sale %d: %w", saleID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock sale: %w", err)
	}

	if amount > sale.Balance {
		return nil, nil, fmt.Errorf("balance=%d, requested=%d: %w", sale.Balance, amount, ErrInsufficientBalance)
	}

	payment := &models.Payment{SaleID: saleID, Amount: amount, Note: note}
	err = tx.GetContext(ctx, payment,
		"INSERT INTO payments (sale_id, amount, note) VALUES ($1, $2, $3) RETURNING id, created_at",
		saleID, amount, note)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	err = tx.GetContext(ctx, &sale,
		"UPDATE sales SET paid = paid + $1, balance = total - (paid + $1), updated_at = NOW() WHERE id = $2 RETURNING "+saleColumns,
		amount, saleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update sale balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &sale, payment, nil
}

// DeleteSale removes a sale and its payments atomically and returns the
// deleted sale
func (s *Store) DeleteSale(ctx context.Context, id int64) (*models.Sale, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var sale models.Sale
	err = tx.GetContext(ctx, &sale, "SELECT "+saleColumns+" FROM sales WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sale %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE sale_id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to delete payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sales WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to delete sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &sale, nil
}

// DeleteAllSales removes every sale and payment and returns the deleted
// sales as they were at deletion time
func (s *Store) DeleteAllSales(ctx context.Context) ([]models.Sale, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM payments"); err != nil {
		return nil, fmt.Errorf("failed to delete payments: %w", err)
	}
	sales := []models.Sale{}
	if err := tx.SelectContext(ctx, &sales, "DELETE FROM sales RETURNING "+saleColumns); err != nil {
		return nil, fmt.Errorf("failed to delete sales: %w", err)
	}

	return sales, tx.Commit()
}

// ListPaymentsBySale retrieves the payments of a sale, oldest first
func (s *Store) ListPaymentsBySale(ctx context.Context, saleID int64) ([]models.Payment, error) {
	payments := []models.Payment{}
	err := s.db.SelectContext(ctx, &payments,
		"SELECT id, sale_id, amount, note, created_at FROM payments WHERE sale_id = $1 ORDER BY created_at, id", saleID)
	return payments, err
}

// EachSale streams the sales matching filter, newest first, calling fn for
// each row. Iteration stops at the first error returned by fn.
func (s *Store) EachSale(ctx context.Context, filter models.SaleFilter, fn func(*models.Sale) error) error {
	conditions := []string{}
	args := map[string]interface{}{}

	switch filter.Status {
	case models.SaleStatusPaid:
		conditions = append(conditions, "balance = 0")
	case models.SaleStatusPartial:
		conditions = append(conditions, "paid > 0 AND balance > 0")
	case models.SaleStatusPending:
		conditions = append(conditions, "paid = 0 AND balance > 0")
	}
	if filter.CustomerName != "" {
		conditions = append(conditions, "customer_name = :customer_name")
		args["customer_name"] = filter.CustomerName
	}
	if filter.Product != "" {
		conditions = append(conditions, "product = :product")
		args["product"] = filter.Product
	}
	if start, end, ok := filter.DayBounds(); ok {
		conditions = append(conditions, "created_at >= :day_start AND created_at < :day_end")
		args["day_start"] = start
		args["day_end"] = end
	}
	if filter.Since != nil {
		conditions = append(conditions, "created_at >= :since")
		args["since"] = *filter.Since
	}

	query := "SELECT " + saleColumns + " FROM sales"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sale models.Sale
		if err := rows.StructScan(&sale); err != nil {
			return err
		}
		if err := fn(&sale); err != nil {
			return err
		}
	}
	return rows.Err()
}
