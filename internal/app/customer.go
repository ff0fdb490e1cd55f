package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/output"
	"github.com/blackwell-systems/stockrank/internal/store"
)

var (
	customerName    string
	customerContact string
	customerPhone   string
	customerAddress string
	customerFormat  string

	customerCmd = &cobra.Command{
		Use:   "customer",
		Short: "Manage customers",
	}

	customerAddCmd = &cobra.Command{
		Use:     "add",
		Short:   "Add a customer",
		Example: `  stockrank customer add --name "Delta Foods" --contact "A. Smirnova" --phone 8-800-444`,
		Args:    cobra.NoArgs,
		RunE:    runCustomerAdd,
	}

	customerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List customers by name",
		Args:  cobra.NoArgs,
		RunE:  runCustomerList,
	}
)

func init() {
	customerAddCmd.Flags().StringVar(&customerName, "name", "", "customer name (required)")
	customerAddCmd.Flags().StringVar(&customerContact, "contact", "", "contact person")
	customerAddCmd.Flags().StringVar(&customerPhone, "phone", "", "phone number")
	customerAddCmd.Flags().StringVar(&customerAddress, "address", "", "postal address")
	customerAddCmd.MarkFlagRequired("name")

	addFormatFlag(customerListCmd, &customerFormat)

	customerCmd.AddCommand(customerAddCmd, customerListCmd)
	RootCmd.AddCommand(customerCmd)
}

func runCustomerAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return fmt.Errorf("customer name cannot be empty")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	c := &store.Customer{
		Name:          name,
		ContactPerson: strings.TrimSpace(customerContact),
		Phone:         strings.TrimSpace(customerPhone),
		Address:       strings.TrimSpace(customerAddress),
	}
	if err := st.InsertCustomer(cmd.Context(), c); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Customer #%d added: %s\n", c.ID, c.Name)
	return nil
}

func runCustomerList(cmd *cobra.Command, args []string) error {
	if err := checkFormat(customerFormat); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	customers, err := st.ListCustomers(cmd.Context())
	if err != nil {
		return err
	}

	if customerFormat == formatJSON {
		if customers == nil {
			customers = []*store.Customer{}
		}
		return writeJSON(cmd.OutOrStdout(), customers)
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderCustomerTable(customers))
	return nil
}
