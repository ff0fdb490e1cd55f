package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/importer"
	"github.com/blackwell-systems/stockrank/internal/logging"
	"github.com/blackwell-systems/stockrank/internal/output"
)

var (
	importStrict bool

	importCmd = &cobra.Command{
		Use:   "import <file>",
		Short: "Import products from a price list",
		Long: `Reads a semicolon-separated price list and adds every row to the catalogue.

The first line is a header and is skipped. Each row is

  name;price;unit;category[;sku]

Prices may use a comma or a dot as decimal separator. Rows with fewer than four
fields are skipped; rows with an unreadable price are skipped with a warning.`,
		Example: `  stockrank import pricelist.txt
  stockrank import --strict pricelist.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
)

func init() {
	importCmd.Flags().BoolVar(&importStrict, "strict", false, "reject files whose header has fewer than four fields")
	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open price list: %w", err)
	}
	defer f.Close()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	var progress *output.ProgressBar
	opts := importer.Options{
		Strict: importStrict,
		Logger: logging.WithComponent(nil, logging.ComponentImporter),
	}

	result, err := importer.Import(cmd.Context(), st, f, opts, func(done, total int) {
		if progress == nil {
			progress = output.NewProgress(out, total, "Importing products")
		}
		progress.Set(done)
	})
	if err != nil {
		return err
	}
	if progress != nil {
		progress.Finish()
	}

	fmt.Fprintf(out, "✓ Imported %d products", len(result.Products))
	if result.Skipped > 0 {
		fmt.Fprintf(out, " (%d rows skipped)", result.Skipped)
	}
	fmt.Fprintln(out)
	return nil
}
