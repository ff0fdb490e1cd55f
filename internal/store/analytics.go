package store

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/stockrank/internal/analyzer"
)

// Aggregation queries feeding the analyzer. Sales of deleted products keep
// the name captured at the time of sale.

// ProductRevenueTotals returns Σ(quantity × price at sale) per product,
// highest revenue first.
func (s *Store) ProductRevenueTotals(ctx context.Context) ([]analyzer.ProductRevenue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			oi.product_id,
			COALESCE(p.name, MAX(oi.product_name_at_sale)) AS product_name,
			SUM(oi.quantity * oi.price_at_sale) AS total_revenue
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		GROUP BY oi.product_id
		ORDER BY total_revenue DESC, oi.product_id ASC
	`)
	if err != nil {
		return nil, wrapErr(err, "failed to query revenue totals")
	}
	defer rows.Close()

	var records []analyzer.ProductRevenue
	for rows.Next() {
		var r analyzer.ProductRevenue
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revenue totals: %w", err)
	}

	return records, nil
}

// ProductPeriodQuantities returns the quantity sold per product and calendar
// month. Months without sales are omitted.
func (s *Store) ProductPeriodQuantities(ctx context.Context) ([]analyzer.ProductPeriodQuantity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			oi.product_id,
			strftime('%Y-%m', o.created_at) AS period,
			SUM(oi.quantity) AS quantity_sold
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		GROUP BY oi.product_id, period
		HAVING quantity_sold > 0
		ORDER BY oi.product_id ASC, period ASC
	`)
	if err != nil {
		return nil, wrapErr(err, "failed to query monthly quantities")
	}
	defer rows.Close()

	var records []analyzer.ProductPeriodQuantity
	for rows.Next() {
		var r analyzer.ProductPeriodQuantity
		if err := rows.Scan(&r.ProductID, &r.Period, &r.QuantitySold); err != nil {
			return nil, fmt.Errorf("failed to scan quantity row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly quantities: %w", err)
	}

	return records, nil
}

// ProductNames maps every catalogue product id to its current name.
func (s *Store) ProductNames(ctx context.Context) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM products`)
	if err != nil {
		return nil, wrapErr(err, "failed to query product names")
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan product name row: %w", err)
		}
		names[id] = name
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product names: %w", err)
	}

	return names, nil
}

// AggregateSalesMetrics returns total revenue and the number of orders that
// have at least one line.
func (s *Store) AggregateSalesMetrics(ctx context.Context) (analyzer.SalesMetrics, error) {
	var m analyzer.SalesMetrics
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(oi.quantity * oi.price_at_sale), 0),
			COUNT(DISTINCT o.id)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
	`).Scan(&m.TotalRevenue, &m.TotalOrders)
	if err != nil {
		return analyzer.SalesMetrics{}, wrapErr(err, "failed to query sales metrics")
	}
	return m, nil
}

// TopSellingProducts returns the limit products with the highest quantity
// sold.
func (s *Store) TopSellingProducts(ctx context.Context, limit int) ([]analyzer.TopProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			COALESCE(p.name, MAX(oi.product_name_at_sale)) AS product_name,
			SUM(oi.quantity) AS quantity_sold
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		GROUP BY oi.product_id
		ORDER BY quantity_sold DESC, oi.product_id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, wrapErr(err, "failed to query top products")
	}
	defer rows.Close()

	var top []analyzer.TopProduct
	for rows.Next() {
		var t analyzer.TopProduct
		if err := rows.Scan(&t.ProductName, &t.QuantitySold); err != nil {
			return nil, fmt.Errorf("failed to scan top product row: %w", err)
		}
		top = append(top, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return top, nil
}

// SalesByMonth returns revenue per calendar month in chronological order.
func (s *Store) SalesByMonth(ctx context.Context) ([]analyzer.MonthlySales, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			strftime('%Y-%m', o.created_at) AS period,
			SUM(oi.quantity * oi.price_at_sale) AS total_sales
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		GROUP BY period
		ORDER BY period ASC
	`)
	if err != nil {
		return nil, wrapErr(err, "failed to query monthly sales")
	}
	defer rows.Close()

	var dynamics []analyzer.MonthlySales
	for rows.Next() {
		var m analyzer.MonthlySales
		if err := rows.Scan(&m.Period, &m.TotalSales); err != nil {
			return nil, fmt.Errorf("failed to scan monthly sales row: %w", err)
		}
		dynamics = append(dynamics, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly sales: %w", err)
	}

	return dynamics, nil
}

var _ analyzer.Source = (*Store)(nil)
