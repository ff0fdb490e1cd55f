package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/stockrank/internal/analyzer"
	"github.com/blackwell-systems/stockrank/internal/snapshots"
	"github.com/blackwell-systems/stockrank/internal/store"
)

func decodeJSON(t *testing.T, data string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, data)
	}
}

func TestInitIsRepeatable(t *testing.T) {
	db := setupCLI(t)

	out := mustRun(t, db, "init")
	if !strings.Contains(out, "Database ready") {
		t.Errorf("expected 'Database ready', got: %s", out)
	}
	if _, err := os.Stat(db); err != nil {
		t.Fatalf("database not created: %v", err)
	}

	mustRun(t, db, "init")
}

func TestCommandsRequireInit(t *testing.T) {
	db := setupCLI(t)

	for _, args := range [][]string{
		{"abc"},
		{"xyz"},
		{"report"},
		{"summary"},
		{"products"},
		{"order", "list"},
		{"seed"},
		{"snapshot", "list"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := runCommand(t, db, args...)
			if !errors.Is(err, store.ErrNotInitialized) {
				t.Errorf("expected ErrNotInitialized, got: %v", err)
			}
		})
	}
}

func TestSeedCommand(t *testing.T) {
	db := setupCLI(t)
	mustRun(t, db, "init")

	out := mustRun(t, db, "seed", "--now", "2024-06-01")
	if !strings.Contains(out, "3 customers, 5 products and 5 orders") {
		t.Errorf("unexpected seed output: %s", out)
	}

	if _, err := runCommand(t, db, "seed", "--now", "June"); err == nil {
		t.Error("expected error for invalid --now")
	}
}

func TestABCCommand(t *testing.T) {
	db := setupSeededCLI(t)

	var results []analyzer.ABCResult
	decodeJSON(t, mustRun(t, db, "abc", "--format", "json"), &results)

	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if results[0].ProductID != 1 || results[0].Group != analyzer.GroupA {
		t.Errorf("expected coffee ranked first in group A, got %+v", results[0])
	}
	if last := results[len(results)-1]; last.Group != analyzer.GroupC {
		t.Errorf("expected last product in group C, got %+v", last)
	}
	if last := results[len(results)-1]; last.CumulativePercentage < 99.99 {
		t.Errorf("expected cumulative share to reach 100%%, got %v", last.CumulativePercentage)
	}

	table := mustRun(t, db, "abc")
	for _, want := range []string{"Premium coffee", "Farm milk", "A: 1"} {
		if !strings.Contains(table, want) {
			t.Errorf("expected table to contain %q, got:\n%s", want, table)
		}
	}
}

func TestXYZCommand(t *testing.T) {
	db := setupSeededCLI(t)

	var results []analyzer.XYZResult
	decodeJSON(t, mustRun(t, db, "xyz", "--format", "json"), &results)

	// Only coffee and milk sell in at least three months.
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if r.Group != analyzer.GroupX {
			t.Errorf("expected %s in group X, got %+v", r.ProductName, r)
		}
	}
}

func TestReportCommand(t *testing.T) {
	db := setupSeededCLI(t)

	var report analyzer.Report
	decodeJSON(t, mustRun(t, db, "report", "--format", "json"), &report)
	if len(report.ABC) != 5 || len(report.XYZ) != 2 {
		t.Errorf("expected 5 ABC and 2 XYZ rows, got %d and %d", len(report.ABC), len(report.XYZ))
	}

	table := mustRun(t, db, "report")
	for _, want := range []string{"ABC analysis", "XYZ analysis", "ABC/XYZ matrix", "AX"} {
		if !strings.Contains(table, want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, table)
		}
	}
}

func TestSummaryCommand(t *testing.T) {
	db := setupSeededCLI(t)

	var summary analyzer.Summary
	decodeJSON(t, mustRun(t, db, "summary", "--top", "2", "--format", "json"), &summary)

	if summary.Metrics.TotalOrders != 5 {
		t.Errorf("TotalOrders = %d, want 5", summary.Metrics.TotalOrders)
	}
	if summary.Metrics.TotalRevenue != 77100 {
		t.Errorf("TotalRevenue = %v, want 77100", summary.Metrics.TotalRevenue)
	}
	if len(summary.TopProducts) != 2 {
		t.Fatalf("expected 2 top products, got %d", len(summary.TopProducts))
	}
	if summary.TopProducts[0].ProductName != "Granulated sugar" || summary.TopProducts[0].QuantitySold != 110 {
		t.Errorf("unexpected best seller: %+v", summary.TopProducts[0])
	}

	table := mustRun(t, db, "summary")
	if !strings.Contains(table, "77,100.00") {
		t.Errorf("expected total revenue in summary, got:\n%s", table)
	}

	if _, err := runCommand(t, db, "summary", "--top", "-1"); err == nil {
		t.Error("expected error for negative --top")
	}
}

func TestInvalidFormat(t *testing.T) {
	db := setupSeededCLI(t)

	_, err := runCommand(t, db, "abc", "--format", "yaml")
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("expected invalid format error, got: %v", err)
	}
}

func TestProductsCommand(t *testing.T) {
	db := setupSeededCLI(t)

	var products []*store.Product
	decodeJSON(t, mustRun(t, db, "products", "--search", "coffee", "--format", "json"), &products)
	if len(products) != 1 || products[0].ID != 1 {
		t.Errorf("expected only coffee, got %+v", products)
	}

	table := mustRun(t, db, "products")
	if !strings.Contains(table, "Butter biscuits") {
		t.Errorf("expected full catalogue, got:\n%s", table)
	}
}

func TestImportCommand(t *testing.T) {
	db := setupCLI(t)
	mustRun(t, db, "init")

	path := filepath.Join(t.TempDir(), "pricelist.txt")
	content := "name;price;unit;category;sku\n" +
		"Widget;10,50;pcs;Tools;W-1\n" +
		"Gadget;abc;pcs;Tools\n" +
		"short;1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, db, "import", path)
	if !strings.Contains(out, "Imported 1 products (2 rows skipped)") {
		t.Errorf("unexpected import output: %s", out)
	}

	var products []*store.Product
	decodeJSON(t, mustRun(t, db, "products", "--format", "json"), &products)
	if len(products) != 1 || products[0].Name != "Widget" || products[0].UnitPrice != 10.5 || products[0].SKU != "W-1" {
		t.Errorf("unexpected products after import: %+v", products)
	}

	if _, err := runCommand(t, db, "import", filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOrderLifecycle(t *testing.T) {
	db := setupSeededCLI(t)

	out := mustRun(t, db, "order", "create", "--customer", "1", "--item", "1:2", "--item", "3:4", "--date", "2024-06-10")
	if !strings.Contains(out, "Order #6 created for Alpha Trading: 2 lines, total 2660.00") {
		t.Errorf("unexpected create output: %s", out)
	}

	var details orderDetails
	decodeJSON(t, mustRun(t, db, "order", "show", "6", "--format", "json"), &details)
	if details.Total != "2660.00" || len(details.Items) != 2 || details.Customer.Name != "Alpha Trading" {
		t.Errorf("unexpected order details: %+v", details)
	}
	if details.Items[0].ProductNameAtSale != "Premium coffee 'Arabica'" || details.Items[0].PriceAtSale != 1200 {
		t.Errorf("expected price and name captured at sale, got %+v", details.Items[0])
	}
	if details.Order.Status != "new" {
		t.Errorf("Status = %q, want new", details.Order.Status)
	}

	out = mustRun(t, db, "order", "status", "6", "SHIPPED")
	if !strings.Contains(out, "Order #6 is now shipped") {
		t.Errorf("unexpected status output: %s", out)
	}

	var orders []*store.OrderWithCustomer
	decodeJSON(t, mustRun(t, db, "order", "list", "--format", "json"), &orders)
	if len(orders) != 6 {
		t.Fatalf("expected 6 orders, got %d", len(orders))
	}

	invoice := mustRun(t, db, "order", "show", "6")
	for _, want := range []string{"INVOICE #6", "Customer: Alpha Trading", "Status: shipped", "2660.00"} {
		if !strings.Contains(invoice, want) {
			t.Errorf("expected invoice to contain %q, got:\n%s", want, invoice)
		}
	}
}

func TestOrderCreateErrors(t *testing.T) {
	db := setupSeededCLI(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{name: "no items", args: []string{"--customer", "1"}, wantMsg: "at least one --item"},
		{name: "bad item", args: []string{"--customer", "1", "--item", "1x2"}, wantMsg: "PRODUCT:QUANTITY"},
		{name: "bad status", args: []string{"--customer", "1", "--item", "1:1", "--status", "lost"}, wantMsg: "invalid status"},
		{name: "unknown customer", args: []string{"--customer", "99", "--item", "1:1"}, wantErr: store.ErrNotFound},
		{name: "unknown product", args: []string{"--customer", "1", "--item", "99:1"}, wantErr: store.ErrNotFound},
		{name: "missing customer flag", args: []string{"--item", "1:1"}, wantMsg: "customer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, db, append([]string{"order", "create"}, tt.args...)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got: %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error to contain %q, got: %v", tt.wantMsg, err)
			}
		})
	}

	var orders []*store.OrderWithCustomer
	decodeJSON(t, mustRun(t, db, "order", "list", "--format", "json"), &orders)
	if len(orders) != 5 {
		t.Errorf("failed creates must not add orders, got %d", len(orders))
	}
}

func TestOrderStatusUnknownOrder(t *testing.T) {
	db := setupSeededCLI(t)

	_, err := runCommand(t, db, "order", "status", "42", "shipped")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestInvoiceCommand(t *testing.T) {
	db := setupSeededCLI(t)

	stdout := mustRun(t, db, "invoice", "1")
	if !strings.Contains(stdout, "INVOICE #1") {
		t.Errorf("expected invoice on stdout, got:\n%s", stdout)
	}

	path := filepath.Join(t.TempDir(), "invoice_1.txt")
	out := mustRun(t, db, "invoice", "1", "-o", path)
	if !strings.Contains(out, "written to") {
		t.Errorf("unexpected output: %s", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("invoice file not written: %v", err)
	}
	if string(data) != stdout {
		t.Errorf("file invoice differs from stdout invoice:\n%s\nvs\n%s", data, stdout)
	}

	if _, err := runCommand(t, db, "invoice", "abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestSnapshotCommands(t *testing.T) {
	db := setupSeededCLI(t)

	out := mustRun(t, db, "snapshot", "create", "--reason", "monthly close")
	if !strings.Contains(out, "Snapshot #1 saved (5 products)") {
		t.Errorf("unexpected create output: %s", out)
	}
	mustRun(t, db, "snapshot", "create")

	var list []*store.ReportSnapshot
	decodeJSON(t, mustRun(t, db, "snapshot", "list", "--format", "json"), &list)
	if len(list) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(list))
	}

	var data snapshots.SnapshotData
	decodeJSON(t, mustRun(t, db, "snapshot", "show", "1", "--format", "json"), &data)
	if data.Reason != "monthly close" || data.Report == nil || len(data.Report.ABC) != 5 {
		t.Errorf("unexpected snapshot data: %+v", data)
	}

	shown := mustRun(t, db, "snapshot", "show", "1")
	if !strings.Contains(shown, "(monthly close)") || !strings.Contains(shown, "ABC/XYZ matrix") {
		t.Errorf("unexpected snapshot table:\n%s", shown)
	}

	diff := mustRun(t, db, "snapshot", "diff", "1", "2")
	if !strings.Contains(diff, "No classification changes.") {
		t.Errorf("unexpected diff output: %s", diff)
	}

	var changes []snapshots.Change
	decodeJSON(t, mustRun(t, db, "snapshot", "diff", "1", "2", "--format", "json"), &changes)
	if len(changes) != 0 {
		t.Errorf("expected no changes, got %+v", changes)
	}

	out = mustRun(t, db, "snapshot", "cleanup", "--days", "1")
	if !strings.Contains(out, "Removed 0 snapshot(s)") {
		t.Errorf("unexpected cleanup output: %s", out)
	}

	if _, err := runCommand(t, db, "snapshot", "cleanup", "--days", "0"); err == nil {
		t.Error("expected error for --days 0")
	}

	_, err := runCommand(t, db, "snapshot", "show", "9")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestSnapshotDiffDetectsChanges(t *testing.T) {
	db := setupSeededCLI(t)
	mustRun(t, db, "snapshot", "create")

	// A large tea order moves tea into group A.
	mustRun(t, db, "order", "create", "--customer", "3", "--item", "4:200", "--date", "2024-06-15")
	mustRun(t, db, "snapshot", "create")

	out := mustRun(t, db, "snapshot", "diff", "1", "2")
	if !strings.Contains(out, "Pu-erh tea") {
		t.Errorf("expected tea in diff, got:\n%s", out)
	}
}

func TestDoctorCommand(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		db := setupSeededCLI(t)

		out, err := runCommand(t, db, "doctor")
		if err != nil {
			t.Fatalf("doctor: %v\n%s", err, out)
		}
		if !strings.Contains(out, "All checks passed!") || !strings.Contains(out, "Integrity check passed") {
			t.Errorf("expected all checks to pass, got:\n%s", out)
		}
	})

	t.Run("missing database", func(t *testing.T) {
		db := setupCLI(t)

		out, err := runCommand(t, db, "doctor")
		if err == nil || err.Error() != "diagnostics failed" {
			t.Errorf("expected 'diagnostics failed', got: %v", err)
		}
		if !strings.Contains(out, "stockrank init") {
			t.Errorf("expected init action, got:\n%s", out)
		}
	})

	t.Run("empty catalogue", func(t *testing.T) {
		db := setupCLI(t)
		mustRun(t, db, "init")

		out, err := runCommand(t, db, "doctor")
		if err == nil {
			t.Fatal("expected doctor to fail on an empty catalogue")
		}
		if !strings.Contains(out, "No products in database") {
			t.Errorf("expected empty catalogue finding, got:\n%s", out)
		}
	})

	t.Run("warnings only", func(t *testing.T) {
		db := setupCLI(t)
		mustRun(t, db, "init")
		path := filepath.Join(t.TempDir(), "pricelist.txt")
		if err := os.WriteFile(path, []byte("name;price;unit;category\nWidget;1;pcs;Tools\n"), 0644); err != nil {
			t.Fatal(err)
		}
		mustRun(t, db, "import", path)

		out, err := runCommand(t, db, "doctor")
		if err != nil {
			t.Fatalf("warnings must not fail doctor: %v", err)
		}
		if !strings.Contains(out, "No orders recorded yet") || !strings.Contains(out, "warning(s)") {
			t.Errorf("expected order warning, got:\n%s", out)
		}
	})
}

func TestOrderCreateByProductName(t *testing.T) {
	db := setupSeededCLI(t)

	out := mustRun(t, db, "order", "create", "--customer", "2", "--item", "Farm milk:10", "--item", "5:1")
	if !strings.Contains(out, "total 1580.00") {
		t.Errorf("unexpected create output: %s", out)
	}

	_, err := runCommand(t, db, "order", "create", "--customer", "2", "--item", "Green tea:1")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown product name, got: %v", err)
	}
}

func TestCustomerCommands(t *testing.T) {
	db := setupSeededCLI(t)

	out := mustRun(t, db, "customer", "add", "--name", " Delta Foods ", "--phone", "8-800-444")
	if !strings.Contains(out, "Customer #4 added: Delta Foods") {
		t.Errorf("unexpected add output: %s", out)
	}

	var customers []*store.Customer
	decodeJSON(t, mustRun(t, db, "customer", "list", "--format", "json"), &customers)
	if len(customers) != 4 {
		t.Fatalf("expected 4 customers, got %d", len(customers))
	}
	if customers[0].Name != "Alpha Trading" || customers[1].Name != "Delta Foods" || customers[1].Phone != "8-800-444" {
		t.Errorf("expected customers sorted by name, got %+v %+v", customers[0], customers[1])
	}

	table := mustRun(t, db, "customer", "list")
	if !strings.Contains(table, "Gamma Wholesale") {
		t.Errorf("unexpected customer table:\n%s", table)
	}

	mustRun(t, db, "order", "create", "--customer", "4", "--item", "2:1")

	if _, err := runCommand(t, db, "customer", "add"); err == nil {
		t.Error("expected error without --name")
	}
	if _, err := runCommand(t, db, "customer", "add", "--name", "  "); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestProductsDelete(t *testing.T) {
	db := setupSeededCLI(t)

	out := mustRun(t, db, "products", "delete", "4", "99")
	if !strings.Contains(out, "Removed 1 product(s) (1 not found)") {
		t.Errorf("unexpected delete output: %s", out)
	}

	var products []*store.Product
	decodeJSON(t, mustRun(t, db, "products", "--format", "json"), &products)
	if len(products) != 4 {
		t.Errorf("expected 4 products left, got %d", len(products))
	}

	// Sales of the deleted product still count towards revenue.
	var results []analyzer.ABCResult
	decodeJSON(t, mustRun(t, db, "abc", "--format", "json"), &results)
	if len(results) != 5 {
		t.Errorf("expected 5 ABC rows after delete, got %d", len(results))
	}

	if _, err := runCommand(t, db, "products", "delete", "x"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
