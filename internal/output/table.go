// Package output provides terminal output utilities for stockrank.
//
// This package includes:
//   - Table rendering for ABC and XYZ results, the ABC/XYZ matrix, the sales summary, products, orders and snapshots
//   - Plain-text invoices
//   - Progress bars and spinners for long-running operations
//
// Tables use box-drawing separators and ANSI colours for the classification
// groups. Colour is only emitted when stdout is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/stockrank/internal/analyzer"
	"github.com/blackwell-systems/stockrank/internal/store"
)

// ANSI color codes for group display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// groupColor returns the ANSI color code for a classification group.
func groupColor(g analyzer.Group) string {
	switch g {
	case analyzer.GroupA, analyzer.GroupX:
		return colorGreen
	case analyzer.GroupB, analyzer.GroupY:
		return colorYellow
	case analyzer.GroupC, analyzer.GroupZ:
		return colorRed
	default:
		return colorGray
	}
}

func formatGroup(g analyzer.Group) string {
	return colorize(groupColor(g), string(g))
}

// RenderABCTable renders ABC results in the order given.
func RenderABCTable(results []analyzer.ABCResult) string {
	if len(results) == 0 {
		return "No sales to analyze.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-28s %14s %8s %11s %s\n",
		"ID", "Product", "Revenue", "Share", "Cumulative", "Group"))
	sb.WriteString(strings.Repeat("─", 76))
	sb.WriteString("\n")

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%-6d %s %14s %8s %11s %s\n",
			r.ProductID,
			padRight(truncate(r.ProductName, 28), 28),
			formatMoney(r.TotalRevenue),
			formatPercent(r.PercentageOfTotal),
			formatPercent(r.CumulativePercentage),
			formatGroup(r.Group)))
	}

	return sb.String()
}

// RenderXYZTable renders XYZ results in the order given.
func RenderXYZTable(results []analyzer.XYZResult) string {
	if len(results) == 0 {
		return "No products with at least 3 months of sales.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-28s %14s %10s %s\n",
		"ID", "Product", "Avg / month", "CV", "Group"))
	sb.WriteString(strings.Repeat("─", 66))
	sb.WriteString("\n")

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%-6d %s %14s %10s %s\n",
			r.ProductID,
			padRight(truncate(r.ProductName, 28), 28),
			humanize.FormatFloat("#,###.##", r.AverageMonthlySales),
			formatPercent(r.CoefficientOfVariation),
			formatGroup(r.Group)))
	}

	return sb.String()
}

// matrixRows and matrixCols fix the layout of the ABC/XYZ grid.
var (
	matrixRows = []analyzer.Group{analyzer.GroupA, analyzer.GroupB, analyzer.GroupC}
	matrixCols = []analyzer.Group{analyzer.GroupX, analyzer.GroupY, analyzer.GroupZ, analyzer.GroupNone}
)

// RenderMatrix renders the ABC/XYZ cross-tabulation as a grid of product
// counts followed by each product's combined label.
func RenderMatrix(m analyzer.Matrix) string {
	if len(m.Entries) == 0 {
		return "No sales to analyze.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-5s", ""))
	for _, col := range matrixCols {
		sb.WriteString(fmt.Sprintf(" %5s", string(col)))
	}
	sb.WriteString(fmt.Sprintf(" %6s\n", "Total"))
	sb.WriteString(strings.Repeat("─", 36))
	sb.WriteString("\n")

	for _, row := range matrixRows {
		total := 0
		sb.WriteString(formatGroup(row) + strings.Repeat(" ", 4))
		for _, col := range matrixCols {
			n := m.Count(row, col)
			total += n
			sb.WriteString(fmt.Sprintf(" %5d", n))
		}
		sb.WriteString(fmt.Sprintf(" %6d\n", total))
	}

	sb.WriteString("\n")
	for _, e := range m.Entries {
		sb.WriteString(fmt.Sprintf("  %-3s %s\n", e.Label, e.ProductName))
	}

	return sb.String()
}

// RenderGroupSummary renders a one-line breakdown of ABC groups.
// Format: "A: 2 products (83.1% of revenue) · B: 1 (12.0%) · C: 3 (4.9%)"
func RenderGroupSummary(results []analyzer.ABCResult) string {
	counts := map[analyzer.Group]int{}
	shares := map[analyzer.Group]float64{}
	for _, r := range results {
		counts[r.Group]++
		shares[r.Group] += r.PercentageOfTotal
	}

	return fmt.Sprintf("%s: %d products (%s of revenue) · %s: %d (%s) · %s: %d (%s)",
		formatGroup(analyzer.GroupA), counts[analyzer.GroupA], formatPercent(shares[analyzer.GroupA]),
		formatGroup(analyzer.GroupB), counts[analyzer.GroupB], formatPercent(shares[analyzer.GroupB]),
		formatGroup(analyzer.GroupC), counts[analyzer.GroupC], formatPercent(shares[analyzer.GroupC]))
}

// RenderSummary renders the sales dashboard: totals, top products and
// revenue per month.
func RenderSummary(s *analyzer.Summary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total revenue:  %s\n", formatMoney(s.Metrics.TotalRevenue)))
	sb.WriteString(fmt.Sprintf("Orders:         %s\n", humanize.Comma(int64(s.Metrics.TotalOrders))))
	sb.WriteString(fmt.Sprintf("Average check:  %s\n", formatMoney(s.AverageCheck)))

	sb.WriteString("\nTop products by quantity\n")
	sb.WriteString(strings.Repeat("─", 40))
	sb.WriteString("\n")
	if len(s.TopProducts) == 0 {
		sb.WriteString("  (no sales)\n")
	}
	for i, p := range s.TopProducts {
		sb.WriteString(fmt.Sprintf("%2d. %s %8s\n", i+1, padRight(truncate(p.ProductName, 28), 28), humanize.Comma(int64(p.QuantitySold))))
	}

	sb.WriteString("\nSales by month\n")
	sb.WriteString(strings.Repeat("─", 40))
	sb.WriteString("\n")
	if len(s.Dynamics) == 0 {
		sb.WriteString("  (no sales)\n")
	}
	for _, m := range s.Dynamics {
		sb.WriteString(fmt.Sprintf("%-10s %14s\n", m.Period, formatMoney(m.TotalSales)))
	}

	return sb.String()
}

// RenderProductTable renders the product catalogue.
func RenderProductTable(products []*store.Product) string {
	if len(products) == 0 {
		return "No products found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-28s %12s %-6s %-14s %s\n",
		"ID", "Product", "Price", "Unit", "Category", "SKU"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, p := range products {
		sku := p.SKU
		if sku == "" {
			sku = "—"
		}
		sb.WriteString(fmt.Sprintf("%-6d %s %12s %-6s %s %s\n",
			p.ID,
			padRight(truncate(p.Name, 28), 28),
			formatMoney(p.UnitPrice),
			truncate(p.Unit, 6),
			padRight(truncate(p.Category, 14), 14),
			sku))
	}

	return sb.String()
}

// RenderCustomerTable renders customers in the order given.
func RenderCustomerTable(customers []*store.Customer) string {
	if len(customers) == 0 {
		return "No customers found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-24s %-18s %-14s %s\n", "ID", "Customer", "Contact", "Phone", "Address"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, c := range customers {
		sb.WriteString(fmt.Sprintf("%-6d %s %s %s %s\n",
			c.ID,
			padRight(truncate(c.Name, 24), 24),
			padRight(truncate(c.ContactPerson, 18), 18),
			padRight(truncate(c.Phone, 14), 14),
			c.Address))
	}

	return sb.String()
}

// RenderOrderTable renders order headers in the order given. Dates are shown
// in the location of each timestamp.
func RenderOrderTable(orders []*store.OrderWithCustomer) string {
	if len(orders) == 0 {
		return "No orders found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-17s %-24s %s\n", "ID", "Date", "Customer", "Status"))
	sb.WriteString(strings.Repeat("─", 64))
	sb.WriteString("\n")

	for _, o := range orders {
		sb.WriteString(fmt.Sprintf("%-6d %-17s %s %s\n",
			o.ID,
			o.CreatedAt.Format(InvoiceDateLayout),
			padRight(truncate(o.CustomerName, 24), 24),
			o.Status))
	}

	return sb.String()
}

// RenderSnapshotTable renders saved report snapshots in the order given.
func RenderSnapshotTable(snapshots []*store.ReportSnapshot) string {
	if len(snapshots) == 0 {
		return "No snapshots found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-5s %-17s %-10s %s\n",
		"ID", "Created", "Products", "Reason"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, snap := range snapshots {
		sb.WriteString(fmt.Sprintf("%-5d %-17s %-10d %s\n",
			snap.ID,
			formatRelativeTime(snap.CreatedAt),
			snap.ProductCount,
			truncate(snap.Reason, 40)))
	}

	return sb.String()
}

// formatMoney renders an amount with thousands separators and two decimals.
func formatMoney(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// padRight pads s with spaces to width runes. fmt's width verbs count bytes,
// which misaligns non-ASCII names.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
