package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/config"
	"github.com/blackwell-systems/stockrank/internal/logging"
)

var (
	dbPath    string
	logLevel  string
	logFormat string

	// cfg is resolved by the root PersistentPreRunE before any command runs.
	cfg *config.Config

	// RootCmd is the root command for stockrank
	RootCmd = &cobra.Command{
		Use:   "stockrank",
		Short: "ABC/XYZ inventory analytics over a sales ledger",
		Long: `stockrank keeps a small sales ledger (products, customers, orders) in SQLite
and classifies products two ways:

  ABC  by share of revenue:   A up to 80% cumulative, B up to 95%, C the rest
  XYZ  by demand stability:   X variation below 10%, Y up to 25%, Z above

XYZ needs at least 3 months of sales for a product.

Quick Start:
  1. stockrank init
  2. stockrank seed              # or: stockrank import pricelist.txt
  3. stockrank report

Examples:
  # Revenue ranking
  stockrank abc

  # Demand stability as JSON
  stockrank xyz --format json

  # Print an invoice
  stockrank invoice 3

  # Keep a report history
  stockrank snapshot create --reason "monthly close"`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupRuntime,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "stockrank: ABC/XYZ inventory analytics")
			fmt.Fprintln(out)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Fprintln(out, "Run 'stockrank init' to create the database.")
			} else {
				fmt.Fprintln(out, "Tip: Run 'stockrank report' for the ABC/XYZ matrix.")
				fmt.Fprintln(out, "     Run 'stockrank summary' for sales totals.")
			}
			fmt.Fprintln(out, "Run 'stockrank --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.stockrank/stockrank.db)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: info)")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (default: text)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := RootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(RootCmd.ErrOrStderr(), "Error: %v\n", err)
		fmt.Fprintln(RootCmd.ErrOrStderr(), "Run 'stockrank --help' for usage.")
	}
	return err
}

// setupRuntime loads configuration, applies flag overrides and installs the
// default logger.
func setupRuntime(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("failed to locate config directory: %w", err)
	}

	loaded, err := config.Load(dir)
	if err != nil {
		return err
	}

	if dbPath != "" {
		loaded.DBPath = dbPath
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if logFormat != "" {
		loaded.LogFormat = logFormat
	}

	if err := loaded.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(loaded.LogLevel, loaded.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	cfg = loaded
	slog.Debug("configuration loaded", "db", cfg.DBPath, "snapshots", cfg.SnapshotDir)
	return nil
}

// getDBPath returns the resolved database path.
func getDBPath() string {
	return cfg.DBPath
}

// getDefaultPIDFile returns the watch daemon PID file, next to the database.
func getDefaultPIDFile() string {
	return filepath.Join(filepath.Dir(getDBPath()), "watch.pid")
}

// getDefaultLogFile returns the watch daemon log file, next to the database.
func getDefaultLogFile() string {
	return filepath.Join(filepath.Dir(getDBPath()), "watch.log")
}
