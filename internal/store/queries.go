package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Product operations

const productColumns = `id, name, unit_price, unit, category, sku`

// InsertProduct inserts a product, or replaces it when p.ID is set.
// The assigned id is stored back into p.
func (s *Store) InsertProduct(ctx context.Context, p *Product) error {
	var sku sql.NullString
	if p.SKU != "" {
		sku = sql.NullString{String: p.SKU, Valid: true}
	}

	var (
		result sql.Result
		err    error
	)
	if p.ID == 0 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO products (name, unit_price, unit, category, sku)
			VALUES (?, ?, ?, ?, ?)
		`, p.Name, p.UnitPrice, p.Unit, p.Category, sku)
	} else {
		result, err = s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO products (id, name, unit_price, unit, category, sku)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, p.UnitPrice, p.Unit, p.Category, sku)
	}
	if err != nil {
		return wrapErr(err, fmt.Sprintf("failed to insert product %s", p.Name))
	}

	if p.ID == 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get product ID: %w", err)
		}
		p.ID = id
	}

	return nil
}

// GetProduct retrieves a product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (*Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("failed to get product %d", id))
	}
	return p, nil
}

// GetProductIDByName returns the id of the product with exactly this name.
func (s *Store) GetProductIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM products WHERE name = ? ORDER BY id LIMIT 1`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("product %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return 0, wrapErr(err, fmt.Sprintf("failed to look up product %q", name))
	}
	return id, nil
}

// ListProducts returns all products ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]*Product, error) {
	return s.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
}

// SearchProducts returns products whose name or category contains query.
// An empty query matches everything.
func (s *Store) SearchProducts(ctx context.Context, query string) ([]*Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name LIKE '%' || ? || '%'
		   OR category LIKE '%' || ? || '%'
		ORDER BY name, id
	`, query, query)
}

// DeleteProducts removes the given products and returns how many existed.
// Past order lines are kept.
func (s *Store) DeleteProducts(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, wrapErr(err, "failed to delete products")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]*Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to list products")
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*Product, error) {
	var p Product
	var sku sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.Unit, &p.Category, &sku); err != nil {
		return nil, err
	}
	p.SKU = sku.String
	return &p, nil
}

// Customer operations

// InsertCustomer inserts a customer, or replaces it when c.ID is set.
func (s *Store) InsertCustomer(ctx context.Context, c *Customer) error {
	var (
		result sql.Result
		err    error
	)
	if c.ID == 0 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO customers (name, contact_person, phone, address)
			VALUES (?, ?, ?, ?)
		`, c.Name, c.ContactPerson, c.Phone, c.Address)
	} else {
		result, err = s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO customers (id, name, contact_person, phone, address)
			VALUES (?, ?, ?, ?, ?)
		`, c.ID, c.Name, c.ContactPerson, c.Phone, c.Address)
	}
	if err != nil {
		return wrapErr(err, fmt.Sprintf("failed to insert customer %s", c.Name))
	}

	if c.ID == 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get customer ID: %w", err)
		}
		c.ID = id
	}
	return nil
}

// GetCustomer retrieves a customer by id.
func (s *Store) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	var contact, phone, address sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, contact_person, phone, address
		FROM customers
		WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &contact, &phone, &address)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("failed to get customer %d", id))
	}
	c.ContactPerson, c.Phone, c.Address = contact.String, phone.String, address.String
	return &c, nil
}

// ListCustomers returns all customers ordered by name.
func (s *Store) ListCustomers(ctx context.Context) ([]*Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, contact_person, phone, address
		FROM customers
		ORDER BY name, id
	`)
	if err != nil {
		return nil, wrapErr(err, "failed to list customers")
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		var c Customer
		var contact, phone, address sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &contact, &phone, &address); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		c.ContactPerson, c.Phone, c.Address = contact.String, phone.String, address.String
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// DeleteAllProducts empties the catalogue. Order lines are kept.
func (s *Store) DeleteAllProducts(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return wrapErr(err, "failed to delete products")
	}
	return nil
}

// DeleteAllCustomers removes every customer. It fails while orders still
// reference them.
func (s *Store) DeleteAllCustomers(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM customers`); err != nil {
		return wrapErr(err, "failed to delete customers")
	}
	return nil
}
