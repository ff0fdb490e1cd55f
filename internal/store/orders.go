package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyOrder is returned when an order is created without items.
var ErrEmptyOrder = errors.New("order has no items")

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// CreateOrder inserts an order header and its items in a single transaction.
// The assigned ids are stored back into o and items.
func (s *Store) CreateOrder(ctx context.Context, o *Order, items []*OrderItem) error {
	if len(items) == 0 {
		return ErrEmptyOrder
	}
	if o.ManagerID == 0 {
		o.ManagerID = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (customer_id, created_at, status, manager_id)
		VALUES (?, ?, ?, ?)
	`, o.CustomerID, formatTime(o.CreatedAt), o.Status, o.ManagerID)
	if err != nil {
		return wrapErr(err, "failed to insert order")
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get order ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_sale, product_name_at_sale)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		res, err := stmt.ExecContext(ctx, orderID, item.ProductID, item.Quantity, item.PriceAtSale, item.ProductNameAtSale)
		if err != nil {
			return fmt.Errorf("failed to insert item for product %d: %w", item.ProductID, err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get item ID: %w", err)
		}
		item.ID = itemID
		item.OrderID = orderID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	o.ID = orderID
	return nil
}

// GetOrder retrieves an order header by id.
func (s *Store) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var o Order
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, created_at, status, manager_id
		FROM orders
		WHERE id = ?
	`, id).Scan(&o.ID, &o.CustomerID, &createdAt, &o.Status, &o.ManagerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("failed to get order %d", id))
	}

	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns all orders with their customer names, newest first.
func (s *Store) ListOrders(ctx context.Context) ([]*OrderWithCustomer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.customer_id, o.created_at, o.status, o.manager_id, c.name
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		ORDER BY o.created_at DESC, o.id DESC
	`)
	if err != nil {
		return nil, wrapErr(err, "failed to list orders")
	}
	defer rows.Close()

	var orders []*OrderWithCustomer
	for rows.Next() {
		var o OrderWithCustomer
		var createdAt string
		if err := rows.Scan(&o.ID, &o.CustomerID, &createdAt, &o.Status, &o.ManagerID, &o.CustomerName); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		if o.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// GetOrderItems returns the lines of an order in insertion order.
func (s *Store) GetOrderItems(ctx context.Context, orderID int64) ([]*OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_sale, product_name_at_sale
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("failed to get items for order %d", orderID))
	}
	defer rows.Close()

	var items []*OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtSale, &item.ProductNameAtSale); err != nil {
			return nil, fmt.Errorf("failed to scan order item row: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// UpdateOrderStatus changes the status of an existing order.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return wrapErr(err, fmt.Sprintf("failed to update order %d", id))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAllOrders removes every order and order line.
func (s *Store) DeleteAllOrders(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items`); err != nil {
		return wrapErr(err, "failed to delete order items")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return wrapErr(err, "failed to delete orders")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
