package store

import "time"

// Product is an item that can be sold.
type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Unit      string  `json:"unit"` // "pcs", "kg", "l", ...
	Category  string  `json:"category"`
	SKU       string  `json:"sku,omitempty"` // optional
}

// Customer is a buyer referenced by orders.
type Customer struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
}

// Order is the header of a sale.
type Order struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
	Status     string    `json:"status"`
	ManagerID  int64     `json:"manager_id"`
}

// OrderItem is one line of an order. Price and name are captured at the time
// of sale so later catalogue changes do not rewrite history.
type OrderItem struct {
	ID                int64   `json:"id"`
	OrderID           int64   `json:"order_id"`
	ProductID         int64   `json:"product_id"`
	Quantity          int     `json:"quantity"`
	PriceAtSale       float64 `json:"price_at_sale"`
	ProductNameAtSale string  `json:"product_name_at_sale"`
}

// OrderWithCustomer is an order header joined with its customer's name.
type OrderWithCustomer struct {
	Order
	CustomerName string `json:"customer_name"`
}

// ReportSnapshot records a saved analysis report.
type ReportSnapshot struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Reason       string    `json:"reason"`
	ProductCount int       `json:"product_count"`
	SnapshotPath string    `json:"snapshot_path"`
}
