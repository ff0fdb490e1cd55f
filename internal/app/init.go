package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and apply migrations",
	Long: `Creates the stockrank database (and its directory) if needed and brings the
schema up to date. Running it again on an existing database is safe.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	RootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := getDBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	st, err := store.New(path)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(); err != nil {
		return err
	}

	version, err := st.SchemaVersion()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Database ready: %s (schema version %d)\n", path, version)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  • Load demo data: stockrank seed")
	fmt.Fprintln(out, "  • Or import a price list: stockrank import pricelist.txt")
	return nil
}
