package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/seed"
)

var (
	seedNow string

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Replace the ledger with demo data",
		Long: `Deletes all orders, customers and products and loads a small demo ledger:
3 customers, 5 products and 5 orders spread over 5 consecutive months ending
around --now.`,
		Example: `  stockrank seed
  stockrank seed --now 2024-06-01`,
		Args: cobra.NoArgs,
		RunE: runSeed,
	}
)

func init() {
	seedCmd.Flags().StringVar(&seedNow, "now", "", "reference date YYYY-MM-DD (default: today)")
	RootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	now := time.Now()
	if seedNow != "" {
		t, err := time.ParseInLocation(time.DateOnly, seedNow, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid --now %q: expected YYYY-MM-DD", seedNow)
		}
		now = t
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := seed.Load(cmd.Context(), st, now); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Loaded %d customers, %d products and %d orders\n",
		len(seed.Customers), len(seed.Products), len(seed.Orders(now)))
	return nil
}
