package app

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/output"
	"github.com/blackwell-systems/stockrank/internal/seed"
	"github.com/blackwell-systems/stockrank/internal/store"
)

// orderStatuses are the statuses an order can move through.
var orderStatuses = []string{"new", "processing", "shipped", seed.StatusCompleted, "cancelled"}

var (
	orderCustomer int64
	orderItems    []string
	orderStatus   string
	orderDate     string
	orderFormat   string

	orderCmd = &cobra.Command{
		Use:   "order",
		Short: "Create and inspect orders",
	}

	orderCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Record a new order",
		Long: `Records an order for a customer. Each --item is PRODUCT:QUANTITY, where
PRODUCT is a product id or its exact name. The product's current name and
price are stored with the line so later catalogue changes do not alter the
sale.`,
		Example: `  stockrank order create --customer 1 --item 1:10 --item 2:25
  stockrank order create --customer 2 --item "Farm milk:50" --date 2024-03-15 --status completed`,
		Args: cobra.NoArgs,
		RunE: runOrderCreate,
	}

	orderListCmd = &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE:  runOrderList,
	}

	orderShowCmd = &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show an order with its lines",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrderShow,
	}

	orderStatusCmd = &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Change the status of an order",
		Long:  "Changes the status of an order. Valid statuses: " + strings.Join(orderStatuses, ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrderStatus,
	}
)

func init() {
	orderCreateCmd.Flags().Int64Var(&orderCustomer, "customer", 0, "customer id (required)")
	orderCreateCmd.Flags().StringArrayVar(&orderItems, "item", nil, "order line as PRODUCT:QUANTITY, by id or name (repeatable)")
	orderCreateCmd.Flags().StringVar(&orderStatus, "status", "new", "initial status")
	orderCreateCmd.Flags().StringVar(&orderDate, "date", "", "order date as YYYY-MM-DD or RFC 3339 (default: now)")
	orderCreateCmd.MarkFlagRequired("customer")

	addFormatFlag(orderListCmd, &orderFormat)
	addFormatFlag(orderShowCmd, &orderFormat)

	orderCmd.AddCommand(orderCreateCmd, orderListCmd, orderShowCmd, orderStatusCmd)
	RootCmd.AddCommand(orderCmd)
}

// orderLine is a parsed --item value. The product is named either by id or
// by its exact catalogue name.
type orderLine struct {
	productID   int64
	productName string
	quantity    int
}

func parseOrderLine(s string) (orderLine, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return orderLine{}, fmt.Errorf("invalid item %q: expected PRODUCT:QUANTITY", s)
	}
	product, qtyPart := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])

	qty, err := strconv.Atoi(qtyPart)
	if err != nil || qty <= 0 {
		return orderLine{}, fmt.Errorf("invalid item %q: quantity must be a positive number", s)
	}

	if product == "" {
		return orderLine{}, fmt.Errorf("invalid item %q: missing product", s)
	}
	if id, err := strconv.ParseInt(product, 10, 64); err == nil {
		if id <= 0 {
			return orderLine{}, fmt.Errorf("invalid item %q: product id must be a positive number", s)
		}
		return orderLine{productID: id, quantity: qty}, nil
	}
	return orderLine{productName: product, quantity: qty}, nil
}

func parseOrderDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
}

func checkStatus(status string) error {
	if !slices.Contains(orderStatuses, status) {
		return fmt.Errorf("invalid status %q: must be one of %s", status, strings.Join(orderStatuses, ", "))
	}
	return nil
}

func runOrderCreate(cmd *cobra.Command, args []string) error {
	if len(orderItems) == 0 {
		return fmt.Errorf("at least one --item is required")
	}
	if err := checkStatus(orderStatus); err != nil {
		return err
	}
	createdAt, err := parseOrderDate(orderDate)
	if err != nil {
		return err
	}

	lines := make([]orderLine, 0, len(orderItems))
	for _, raw := range orderItems {
		line, err := parseOrderLine(raw)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	customer, err := st.GetCustomer(ctx, orderCustomer)
	if err != nil {
		return err
	}

	items := make([]*store.OrderItem, 0, len(lines))
	for _, line := range lines {
		id := line.productID
		if line.productName != "" {
			if id, err = st.GetProductIDByName(ctx, line.productName); err != nil {
				return err
			}
		}
		p, err := st.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		items = append(items, &store.OrderItem{
			ProductID:         p.ID,
			Quantity:          line.quantity,
			PriceAtSale:       p.UnitPrice,
			ProductNameAtSale: p.Name,
		})
	}

	order := &store.Order{CustomerID: customer.ID, CreatedAt: createdAt, Status: orderStatus}
	if err := st.CreateOrder(ctx, order, items); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Order #%d created for %s: %d lines, total %s\n",
		order.ID, customer.Name, len(items), output.InvoiceTotal(items).StringFixed(2))
	return nil
}

func runOrderList(cmd *cobra.Command, args []string) error {
	if err := checkFormat(orderFormat); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	orders, err := st.ListOrders(cmd.Context())
	if err != nil {
		return err
	}

	for _, o := range orders {
		o.CreatedAt = o.CreatedAt.Local()
	}

	if orderFormat == formatJSON {
		if orders == nil {
			orders = []*store.OrderWithCustomer{}
		}
		return writeJSON(cmd.OutOrStdout(), orders)
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderOrderTable(orders))
	return nil
}

// orderDetails is the JSON shape of 'order show'.
type orderDetails struct {
	Order    *store.Order       `json:"order"`
	Customer *store.Customer    `json:"customer"`
	Items    []*store.OrderItem `json:"items"`
	Total    string             `json:"total"`
}

// loadOrderDetails fetches an order, its customer and its lines.
func loadOrderDetails(cmd *cobra.Command, st *store.Store, arg string) (*orderDetails, error) {
	id, err := parseID(arg, "order")
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	order, err := st.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.CreatedAt = order.CreatedAt.Local()

	customer, err := st.GetCustomer(ctx, order.CustomerID)
	if errors.Is(err, store.ErrNotFound) {
		customer = &store.Customer{ID: order.CustomerID, Name: fmt.Sprintf("customer #%d", order.CustomerID)}
	} else if err != nil {
		return nil, err
	}

	items, err := st.GetOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*store.OrderItem{}
	}

	return &orderDetails{
		Order:    order,
		Customer: customer,
		Items:    items,
		Total:    output.InvoiceTotal(items).StringFixed(2),
	}, nil
}

func runOrderShow(cmd *cobra.Command, args []string) error {
	if err := checkFormat(orderFormat); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	details, err := loadOrderDetails(cmd, st, args[0])
	if err != nil {
		return err
	}

	if orderFormat == formatJSON {
		return writeJSON(cmd.OutOrStdout(), details)
	}
	fmt.Fprint(cmd.OutOrStdout(), output.FormatInvoice(details.Order, details.Customer, details.Items))
	return nil
}

func runOrderStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "order")
	if err != nil {
		return err
	}
	status := strings.ToLower(args[1])
	if err := checkStatus(status); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpdateOrderStatus(cmd.Context(), id, status); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Order #%d is now %s\n", id, status)
	return nil
}
