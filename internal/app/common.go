package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/store"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
)

// openStore opens the configured database. The database must already have
// been created with 'stockrank init'.
func openStore() (*store.Store, error) {
	path := getDBPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s: %w", path, store.ErrNotInitialized)
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	version, err := st.SchemaVersion()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	if version == 0 {
		st.Close()
		return nil, store.ErrNotInitialized
	}

	return st, nil
}

// getSnapshotDir returns the directory for snapshot storage.
func getSnapshotDir() string {
	return cfg.SnapshotDir
}

// addFormatFlag registers --format on cmd.
func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "format", formatTable, "output format: table or json")
}

// checkFormat rejects unknown --format values.
func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be %s or %s", format, formatTable, formatJSON)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// parseID parses a positive numeric id argument.
func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q: must be a positive number", what, arg)
	}
	return id, nil
}
