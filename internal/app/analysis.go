package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/analyzer"
	"github.com/blackwell-systems/stockrank/internal/output"
	"github.com/blackwell-systems/stockrank/internal/store"
)

var (
	analysisFormat string
	analysisStrict bool
	summaryTop     int

	abcCmd = &cobra.Command{
		Use:   "abc",
		Short: "Rank products by share of revenue",
		Long: `Ranks products by total revenue and assigns each an ABC group from its
cumulative share of revenue:

  A  cumulative share up to and including 80%
  B  up to and including 95%
  C  the rest`,
		Args: cobra.NoArgs,
		RunE: runABC,
	}

	xyzCmd = &cobra.Command{
		Use:   "xyz",
		Short: "Rank products by stability of monthly demand",
		Long: `Computes the coefficient of variation of each product's monthly quantities
and assigns an XYZ group:

  X  below 10%
  Y  10% to 25%
  Z  above 25%

Products sold in fewer than 3 months are not classified.`,
		Args: cobra.NoArgs,
		RunE: runXYZ,
	}

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Run ABC and XYZ analysis and show the combined matrix",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	}

	summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Show total revenue, best sellers and monthly sales",
		Example: `  stockrank summary
  stockrank summary --top 10 --format json`,
		Args: cobra.NoArgs,
		RunE: runSummary,
	}
)

func init() {
	for _, cmd := range []*cobra.Command{abcCmd, xyzCmd, reportCmd, summaryCmd} {
		addFormatFlag(cmd, &analysisFormat)
		cmd.Flags().BoolVar(&analysisStrict, "strict", false, "refuse to analyze malformed sales data")
		RootCmd.AddCommand(cmd)
	}
	summaryCmd.Flags().IntVar(&summaryTop, "top", 0, "number of best sellers to show (default: STOCKRANK_TOP_N or 5)")
}

// withAnalyzer opens the store and hands a configured analyzer to fn.
func withAnalyzer(fn func(a *analyzer.Analyzer) error) error {
	if err := checkFormat(analysisFormat); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(newAnalyzer(st))
}

func newAnalyzer(st *store.Store) *analyzer.Analyzer {
	a := analyzer.New(st)
	a.SetStrict(analysisStrict)
	return a
}

func runABC(cmd *cobra.Command, args []string) error {
	return withAnalyzer(func(a *analyzer.Analyzer) error {
		results, err := a.ABC(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if analysisFormat == formatJSON {
			return writeJSON(out, results)
		}
		writeABC(out, results)
		return nil
	})
}

func runXYZ(cmd *cobra.Command, args []string) error {
	return withAnalyzer(func(a *analyzer.Analyzer) error {
		results, err := a.XYZ(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if analysisFormat == formatJSON {
			return writeJSON(out, results)
		}
		fmt.Fprint(out, output.RenderXYZTable(results))
		return nil
	})
}

func runReport(cmd *cobra.Command, args []string) error {
	return withAnalyzer(func(a *analyzer.Analyzer) error {
		out := cmd.OutOrStdout()

		if analysisFormat == formatJSON {
			report, err := a.Report(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(out, report)
		}

		spinner := output.NewSpinner(cmd.ErrOrStderr(), "Building report")
		spinner.Start()
		report, err := a.Report(cmd.Context())
		spinner.Stop()
		if err != nil {
			return err
		}

		writeReport(out, report)
		return nil
	})
}

func runSummary(cmd *cobra.Command, args []string) error {
	top := summaryTop
	if top == 0 {
		top = cfg.TopN
	}
	if top < 0 {
		return fmt.Errorf("invalid --top %d: must be positive", top)
	}

	return withAnalyzer(func(a *analyzer.Analyzer) error {
		summary, err := a.Summary(cmd.Context(), top)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if analysisFormat == formatJSON {
			return writeJSON(out, summary)
		}
		fmt.Fprint(out, output.RenderSummary(summary))
		return nil
	})
}

func writeABC(w io.Writer, results []analyzer.ABCResult) {
	fmt.Fprint(w, output.RenderABCTable(results))
	if len(results) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.RenderGroupSummary(results))
	}
}

// writeReport prints the three sections of a full report.
func writeReport(w io.Writer, report *analyzer.Report) {
	fmt.Fprintln(w, "ABC analysis (revenue)")
	fmt.Fprintln(w)
	writeABC(w, report.ABC)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "XYZ analysis (demand stability)")
	fmt.Fprintln(w)
	fmt.Fprint(w, output.RenderXYZTable(report.XYZ))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "ABC/XYZ matrix")
	fmt.Fprintln(w)
	fmt.Fprint(w, output.RenderMatrix(report.Matrix))
}
