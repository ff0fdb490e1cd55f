// Package seed generates a deterministic demo sales ledger.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/stockrank/internal/store"
)

// StatusCompleted is the status of every seeded order.
const StatusCompleted = "completed"

// Customers are the demo customers, ids 1..3.
var Customers = []store.Customer{
	{ID: 1, Name: "Alpha Trading", ContactPerson: "I. Ivanov", Phone: "8-800-111", Address: "Moscow"},
	{ID: 2, Name: "Petrov & Sons", ContactPerson: "P. Petrov", Phone: "8-800-222", Address: "Saint Petersburg"},
	{ID: 3, Name: "Gamma Wholesale", ContactPerson: "S. Sidorov", Phone: "8-800-333", Address: "Kazan"},
}

// Products are the demo products, ids 1..5.
var Products = []store.Product{
	{ID: 1, Name: "Premium coffee 'Arabica'", UnitPrice: 1200, Unit: "kg", Category: "Drinks"},
	{ID: 2, Name: "Farm milk", UnitPrice: 150, Unit: "l", Category: "Dairy"},
	{ID: 3, Name: "Granulated sugar", UnitPrice: 65, Unit: "kg", Category: "Grocery"},
	{ID: 4, Name: "Pu-erh tea", UnitPrice: 900, Unit: "pcs", Category: "Drinks"},
	{ID: 5, Name: "Butter biscuits", UnitPrice: 80, Unit: "pack", Category: "Grocery"},
}

// Order is a seeded order with its lines.
type Order struct {
	Order store.Order
	Items []*store.OrderItem
}

type line struct {
	productID int64
	quantity  int
}

// Orders returns five orders spread over consecutive months. The first
// order is placed four months before now; each following order is one month
// and a growing number of days (5, 10, 15, 20) after the previous one.
func Orders(now time.Time) []Order {
	dates := make([]time.Time, 5)
	dates[0] = now.AddDate(0, -4, 0)
	for i := 1; i < len(dates); i++ {
		dates[i] = dates[i-1].AddDate(0, 1, 5*i)
	}

	plan := []struct {
		customerID int64
		lines      []line
	}{
		{1, []line{{1, 10}, {2, 25}}},
		{2, []line{{1, 12}, {3, 50}, {5, 40}}},
		{1, []line{{1, 11}, {2, 30}}},
		{3, []line{{4, 3}}},
		{2, []line{{1, 10}, {2, 28}, {3, 60}}},
	}

	orders := make([]Order, len(plan))
	for i, p := range plan {
		items := make([]*store.OrderItem, len(p.lines))
		for j, l := range p.lines {
			prod := Products[l.productID-1]
			items[j] = &store.OrderItem{
				ProductID:         prod.ID,
				Quantity:          l.quantity,
				PriceAtSale:       prod.UnitPrice,
				ProductNameAtSale: prod.Name,
			}
		}
		orders[i] = Order{
			Order: store.Order{
				CustomerID: p.customerID,
				CreatedAt:  dates[i],
				Status:     StatusCompleted,
				ManagerID:  1,
			},
			Items: items,
		}
	}
	return orders
}

// Load replaces the contents of s with the demo customers, products and
// orders. Existing orders, customers and products are deleted first.
func Load(ctx context.Context, s *store.Store, now time.Time) error {
	if err := s.DeleteAllOrders(ctx); err != nil {
		return err
	}
	if err := s.DeleteAllCustomers(ctx); err != nil {
		return err
	}
	if err := s.DeleteAllProducts(ctx); err != nil {
		return err
	}

	for i := range Customers {
		c := Customers[i]
		if err := s.InsertCustomer(ctx, &c); err != nil {
			return fmt.Errorf("failed to seed customer %s: %w", c.Name, err)
		}
	}

	for i := range Products {
		p := Products[i]
		if err := s.InsertProduct(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
	}

	for i, o := range Orders(now) {
		order := o.Order
		if err := s.CreateOrder(ctx, &order, o.Items); err != nil {
			return fmt.Errorf("failed to seed order %d: %w", i+1, err)
		}
	}

	return nil
}
