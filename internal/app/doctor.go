package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/analyzer"
	"github.com/blackwell-systems/stockrank/internal/output"
	"github.com/blackwell-systems/stockrank/internal/store"
	"github.com/blackwell-systems/stockrank/internal/watcher"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common issues and check data health",
	Long: `Runs diagnostic checks on your stockrank installation.

Checks:
  • Database exists, has the current schema and passes an integrity check
  • Products and orders are present
  • Enough months of sales for XYZ analysis
  • Snapshot directory is writable
  • A full report can be built`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

// doctorResult counts critical and warning-level findings.
type doctorResult struct {
	critical int
	warnings int
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Running stockrank diagnostics...")
	fmt.Fprintln(out)

	var res doctorResult

	path := getDBPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(out, "✗ Database not found at:", path)
		fmt.Fprintln(out, "  Action: Run 'stockrank init' to create it")
		res.critical++
	} else {
		fmt.Fprintln(out, "✓ Database found:", path)
		checkDatabase(cmd, out, path, &res)
	}

	checkSnapshotDir(out, &res)
	checkDaemon(out)

	fmt.Fprintln(out)
	if res.critical == 0 && res.warnings == 0 {
		fmt.Fprintln(out, "✓ All checks passed!")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Next steps:")
		fmt.Fprintln(out, "  • View the matrix: stockrank report")
		fmt.Fprintln(out, "  • Keep a history: stockrank snapshot create")
		return nil
	}

	if res.critical > 0 {
		fmt.Fprintf(out, "Found %d critical issue(s) and %d warning(s).\n", res.critical, res.warnings)
		return fmt.Errorf("diagnostics failed")
	}

	fmt.Fprintf(out, "Found %d warning(s). Analysis works but results may be incomplete.\n", res.warnings)
	return nil
}

func checkDatabase(cmd *cobra.Command, out io.Writer, path string, res *doctorResult) {
	st, err := store.New(path)
	if err != nil {
		fmt.Fprintln(out, "✗ Cannot open database:", err)
		res.critical++
		return
	}
	defer st.Close()

	version, err := st.SchemaVersion()
	if err != nil {
		fmt.Fprintln(out, "✗ Cannot read schema version:", err)
		res.critical++
		return
	}
	if version == 0 {
		fmt.Fprintln(out, "✗ Database has no schema")
		fmt.Fprintln(out, "  Action: Run 'stockrank init'")
		res.critical++
		return
	}
	fmt.Fprintf(out, "✓ Schema version %d\n", version)

	ctx := cmd.Context()

	var integrity string
	if err := st.DB().QueryRowContext(ctx, "PRAGMA quick_check").Scan(&integrity); err != nil {
		fmt.Fprintln(out, "✗ Integrity check failed:", err)
		res.critical++
		return
	}
	if integrity != "ok" {
		fmt.Fprintln(out, "✗ Database is corrupt:", integrity)
		res.critical++
		return
	}
	fmt.Fprintln(out, "✓ Integrity check passed")

	products, err := st.ListProducts(ctx)
	if err != nil {
		fmt.Fprintln(out, "✗ Cannot read products:", err)
		res.critical++
		return
	}
	if len(products) == 0 {
		fmt.Fprintln(out, "✗ No products in database")
		fmt.Fprintln(out, "  Action: Run 'stockrank import <file>' or 'stockrank seed'")
		res.critical++
		return
	}
	fmt.Fprintf(out, "✓ %d products in catalogue\n", len(products))

	metrics, err := st.AggregateSalesMetrics(ctx)
	if err != nil {
		fmt.Fprintln(out, "⚠ Cannot read orders:", err)
		res.warnings++
	} else if metrics.TotalOrders == 0 {
		fmt.Fprintln(out, "⚠ No orders recorded yet")
		fmt.Fprintln(out, "  Action: Run 'stockrank order create' to record sales")
		res.warnings++
	} else {
		fmt.Fprintf(out, "✓ %d orders recorded\n", metrics.TotalOrders)
	}

	months, err := st.SalesByMonth(ctx)
	if err != nil {
		fmt.Fprintln(out, "⚠ Cannot read monthly sales:", err)
		res.warnings++
	} else if len(months) < analyzer.MinPeriods {
		fmt.Fprintf(out, "⚠ Sales span %d month(s); XYZ needs at least %d\n", len(months), analyzer.MinPeriods)
		res.warnings++
	} else {
		fmt.Fprintf(out, "✓ Sales span %d months\n", len(months))
	}

	start := time.Now()
	spinner := output.NewSpinner(cmd.ErrOrStderr(), "Building report")
	spinner.Start()
	a := analyzer.New(st)
	a.SetStrict(true)
	_, reportErr := a.Report(ctx)
	spinner.Stop()
	elapsed := time.Since(start).Round(time.Millisecond)
	if reportErr != nil {
		fmt.Fprintf(out, "✗ Report test: fail (%v)\n", elapsed)
		fmt.Fprintf(out, "  %v\n", reportErr)
		res.critical++
		return
	}
	fmt.Fprintf(out, "✓ Report test: pass (%v)\n", elapsed)
}

func checkSnapshotDir(out io.Writer, res *doctorResult) {
	dir := getSnapshotDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintln(out, "⚠ Cannot create snapshot directory:", err)
		res.warnings++
		return
	}

	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		fmt.Fprintln(out, "⚠ Snapshot directory is not writable:", dir)
		res.warnings++
		return
	}
	f.Close()
	os.Remove(f.Name())
	fmt.Fprintln(out, "✓ Snapshot directory writable:", dir)
}

// checkDaemon reports the watch daemon state. The daemon is optional.
func checkDaemon(out io.Writer) {
	pidFile := getDefaultPIDFile()
	running, err := watcher.IsDaemonRunning(pidFile)
	switch {
	case err != nil:
		fmt.Fprintln(out, "○ Watch daemon status unknown:", err)
	case running:
		fmt.Fprintln(out, "✓ Watch daemon running")
	default:
		fmt.Fprintln(out, "○ Watch daemon not running (optional)")
	}
}
