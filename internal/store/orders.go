package store

import (
	"context"
	"database/sql"
	"fmt"

	"bakery-service/internal/models"
	"bakery-service/internal/util"

	"go.uber.org/zap"
)

// CreateOrder inserts a new order together with its item snapshots in a
// single transaction.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO orders (id, user_id, customer_name, customer_phone, customer_email, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.CustomerName, order.CustomerPhone,
		order.CustomerEmail, order.Total, order.Status,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			items[i].OrderID, items[i].ProductID, items[i].Name,
			items[i].UnitPrice, items[i].Quantity,
		).Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems retrieves the item snapshots for an order
func (s *Store) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// ListOrders retrieves the most recent orders for the admin dashboard
func (s *Store) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC LIMIT $1", limit)
	return orders, err
}

// UpdateOrderPayment applies a plain status transition with no stock side
// effect, recording the provider payment id.
func (s *Store) UpdateOrderPayment(ctx context.Context, orderID, status, paymentID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, provider_payment_id = $2, updated_at = NOW()
		WHERE id = $3`,
		status, paymentID, orderID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return nil
}

// ApplyPayment performs the paid transition as one atomic batch: a
// compare-and-swap on the order status plus a stock decrement for every item
// with a resolvable product id. Returns false without writing anything when
// the order is already paid, so a redelivered notification can never
// decrement stock twice. The row lock on the order serializes concurrent
// deliveries for the same order.
func (s *Store) ApplyPayment(ctx context.Context, orderID, paymentID string) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var status string
	err = tx.GetContext(ctx, &status,
		"SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock order: %w", err)
	}

	if status == models.OrderStatusPaid {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, provider_payment_id = $2, updated_at = NOW()
		WHERE id = $3`,
		models.OrderStatusPaid, paymentID, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to update order: %w", err)
	}

	var items []models.OrderItem
	err = tx.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		return false, fmt.Errorf("failed to load order items: %w", err)
	}

	for _, item := range items {
		if item.ProductID == "" {
			continue
		}

		var stock int
		err = tx.GetContext(ctx, &stock,
			"SELECT stock FROM products WHERE id = $1 FOR UPDATE", item.ProductID)
		if err == sql.ErrNoRows {
			// Product removed from the catalog since the order was placed;
			// the snapshot on the order item is still valid.
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to lock product %s: %w", item.ProductID, err)
		}

		newStock := stock - item.Quantity
		if newStock < 0 {
			util.GetLogger().Warn("Stock decrement floored at zero",
				zap.String("order_id", orderID),
				zap.String("product_id", item.ProductID),
				zap.Int("stock", stock),
				zap.Int("quantity", item.Quantity))
			util.StockOversellTotal.Inc()
			newStock = 0
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2",
			newStock, item.ProductID)
		if err != nil {
			return false, fmt.Errorf("failed to decrement stock for %s: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit payment batch: %w", err)
	}
	return true, nil
}
