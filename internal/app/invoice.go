package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/output"
)

var (
	invoiceOutput string

	invoiceCmd = &cobra.Command{
		Use:   "invoice <order-id>",
		Short: "Print a plain-text invoice for an order",
		Example: `  stockrank invoice 3
  stockrank invoice 3 --output invoice_3.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runInvoice,
	}
)

func init() {
	invoiceCmd.Flags().StringVarP(&invoiceOutput, "output", "o", "", "write the invoice to this file instead of stdout")
	RootCmd.AddCommand(invoiceCmd)
}

func runInvoice(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	details, err := loadOrderDetails(cmd, st, args[0])
	if err != nil {
		return err
	}

	text := output.FormatInvoice(details.Order, details.Customer, details.Items)
	if invoiceOutput == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}

	if err := os.WriteFile(invoiceOutput, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write invoice: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Invoice #%d written to %s\n", details.Order.ID, invoiceOutput)
	return nil
}
