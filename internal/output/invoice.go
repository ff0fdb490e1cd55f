package output

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/blackwell-systems/stockrank/internal/store"
)

// InvoiceDateLayout is the date format printed on invoices and order lists.
const InvoiceDateLayout = "02.01.2006 15:04"

const (
	invoiceWidth   = 44
	invoiceNameMax = 20
)

// InvoiceTotal sums quantity × price at sale over items without float drift.
func InvoiceTotal(items []*store.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(lineTotal(item))
	}
	return total
}

func lineTotal(item *store.OrderItem) decimal.Decimal {
	return decimal.NewFromFloat(item.PriceAtSale).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// FormatInvoice renders a fixed-width plain-text invoice for an order.
// Item names longer than 20 characters are cut to 17 and suffixed "...".
func FormatInvoice(order *store.Order, customer *store.Customer, items []*store.OrderItem) string {
	var sb strings.Builder

	heavy := strings.Repeat("=", invoiceWidth) + "\n"
	light := strings.Repeat("-", invoiceWidth) + "\n"

	sb.WriteString(heavy)
	title := fmt.Sprintf("INVOICE #%d", order.ID)
	sb.WriteString(strings.Repeat(" ", max(0, (invoiceWidth-len(title))/2)) + title + "\n")
	sb.WriteString(heavy)
	sb.WriteString(fmt.Sprintf("Date: %s\n", order.CreatedAt.Format(InvoiceDateLayout)))
	sb.WriteString(fmt.Sprintf("Customer: %s\n", customer.Name))
	sb.WriteString(fmt.Sprintf("Status: %s\n", order.Status))
	sb.WriteString(light)

	sb.WriteString(fmt.Sprintf("%-20s %8s %5s %8s\n", "Item", "Price", "Qty", "Total"))
	sb.WriteString(light)

	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%s %8s %5d %8s\n",
			padRight(truncate(item.ProductNameAtSale, invoiceNameMax), invoiceNameMax),
			decimal.NewFromFloat(item.PriceAtSale).StringFixed(2),
			item.Quantity,
			lineTotal(item).StringFixed(2)))
	}
	sb.WriteString(light)

	sb.WriteString(fmt.Sprintf("%-35s %8s\n", "TOTAL:", InvoiceTotal(items).StringFixed(2)))
	sb.WriteString(heavy)

	return sb.String()
}
