package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/output"
	"github.com/blackwell-systems/stockrank/internal/store"
)

var (
	productsSearch string
	productsFormat string

	productsCmd = &cobra.Command{
		Use:   "products",
		Short: "List the product catalogue",
		Example: `  stockrank products
  stockrank products --search coffee
  stockrank products --format json`,
		Args: cobra.NoArgs,
		RunE: runProducts,
	}

	productsDeleteCmd = &cobra.Command{
		Use:   "delete <product-id>...",
		Short: "Remove products from the catalogue",
		Long: `Removes products from the catalogue. Past order lines keep the name and
price captured at sale, so ABC results still count their revenue.`,
		Example: `  stockrank products delete 4 5`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runProductsDelete,
	}
)

func init() {
	productsCmd.Flags().StringVar(&productsSearch, "search", "", "only products whose name or category contains this text")
	addFormatFlag(productsCmd, &productsFormat)
	productsCmd.AddCommand(productsDeleteCmd)
	RootCmd.AddCommand(productsCmd)
}

func runProducts(cmd *cobra.Command, args []string) error {
	if err := checkFormat(productsFormat); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var products []*store.Product
	if productsSearch != "" {
		products, err = st.SearchProducts(cmd.Context(), productsSearch)
	} else {
		products, err = st.ListProducts(cmd.Context())
	}
	if err != nil {
		return err
	}

	if productsFormat == formatJSON {
		if products == nil {
			products = []*store.Product{}
		}
		return writeJSON(cmd.OutOrStdout(), products)
	}
	_, err = cmd.OutOrStdout().Write([]byte(output.RenderProductTable(products)))
	return err
}

func runProductsDelete(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg, "product")
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	deleted, err := st.DeleteProducts(cmd.Context(), ids...)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d product(s)", deleted)
	if missing := int64(len(ids)) - deleted; missing > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " (%d not found)", missing)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
