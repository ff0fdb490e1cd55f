package analyzer

import "time"

// Group is a classification letter assigned by ABC or XYZ analysis.
type Group string

const (
	GroupA Group = "A" // top revenue contributors
	GroupB Group = "B"
	GroupC Group = "C" // long tail

	GroupX Group = "X" // stable demand
	GroupY Group = "Y"
	GroupZ Group = "Z" // erratic demand

	// GroupNone marks a product that has no XYZ class (too few periods).
	GroupNone Group = "-"
)

// UnknownProductName labels XYZ results whose product can no longer be resolved.
const UnknownProductName = "Unknown product"

// ProductRevenue is the aggregated revenue of one product across all sales.
type ProductRevenue struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	TotalRevenue float64 `json:"total_revenue"`
}

// ProductPeriodQuantity is the quantity of one product sold in one calendar
// month. Period has the form "YYYY-MM".
type ProductPeriodQuantity struct {
	ProductID    int64  `json:"product_id"`
	Period       string `json:"period"`
	QuantitySold int    `json:"quantity_sold"`
}

// ABCResult is one row of an ABC report.
type ABCResult struct {
	ProductID            int64   `json:"product_id"`
	ProductName          string  `json:"product_name"`
	TotalRevenue         float64 `json:"total_revenue"`
	PercentageOfTotal    float64 `json:"percentage_of_total"`
	CumulativePercentage float64 `json:"cumulative_percentage"`
	Group                Group   `json:"group"`
}

// XYZResult is one row of an XYZ report.
type XYZResult struct {
	ProductID              int64   `json:"product_id"`
	ProductName            string  `json:"product_name"`
	AverageMonthlySales    float64 `json:"average_monthly_sales"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Group                  Group   `json:"group"`
}

// NameResolver looks up a product name by id. The second return value is
// false when the product does not exist.
type NameResolver func(productID int64) (string, bool)

// MapResolver returns a NameResolver backed by a prefetched id→name map.
func MapResolver(names map[int64]string) NameResolver {
	return func(productID int64) (string, bool) {
		name, ok := names[productID]
		return name, ok
	}
}

// SalesMetrics holds store-wide sales totals.
type SalesMetrics struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalOrders  int     `json:"total_orders"`
}

// AverageCheck returns revenue per order, or 0 when there are no orders.
func (m SalesMetrics) AverageCheck() float64 {
	if m.TotalOrders <= 0 {
		return 0
	}
	return m.TotalRevenue / float64(m.TotalOrders)
}

// TopProduct is a product ranked by quantity sold.
type TopProduct struct {
	ProductName  string `json:"product_name"`
	QuantitySold int    `json:"quantity_sold"`
}

// MonthlySales is the revenue of one calendar month ("YYYY-MM").
type MonthlySales struct {
	Period     string  `json:"period"`
	TotalSales float64 `json:"total_sales"`
}

// Report bundles both classifications and their cross-tabulation.
type Report struct {
	GeneratedAt time.Time   `json:"generated_at"`
	ABC         []ABCResult `json:"abc"`
	XYZ         []XYZResult `json:"xyz"`
	Matrix      Matrix      `json:"matrix"`
}

// Summary is the dashboard view of the sales ledger.
type Summary struct {
	Metrics      SalesMetrics   `json:"metrics"`
	AverageCheck float64        `json:"average_check"`
	TopProducts  []TopProduct   `json:"top_products"`
	Dynamics     []MonthlySales `json:"dynamics"`
}
