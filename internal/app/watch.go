package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/logging"
	"github.com/blackwell-systems/stockrank/internal/output"
	"github.com/blackwell-systems/stockrank/internal/snapshots"
	"github.com/blackwell-systems/stockrank/internal/store"
	"github.com/blackwell-systems/stockrank/internal/watcher"
)

// daemonStopTimeout bounds how long watch --stop waits for the daemon to exit.
const daemonStopTimeout = 10 * time.Second

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool
	watchSnapshot    bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the report whenever the database changes",
		Long: `Watches the database file and re-runs the ABC/XYZ report after every change,
such as a new order or a price list import. Bursts of writes are collapsed
into one refresh (STOCKRANK_WATCH_DEBOUNCE, default 500ms).

Watch modes:
  • Foreground (default): print the refreshed report, Ctrl+C to stop
  • Daemon: run in the background; combine with --snapshot to keep a history
  • Stop: stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  stockrank watch

  # Save a snapshot after every change, in the background
  stockrank watch --daemon --snapshot

  # Stop running daemon
  stockrank watch --stop`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: next to the database)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: next to the database)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")
	watchCmd.Flags().BoolVar(&watchSnapshot, "snapshot", false, "save a snapshot on every change instead of printing the report")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		watchPIDFile = getDefaultPIDFile()
	}
	if watchLogFile == "" {
		watchLogFile = getDefaultLogFile()
	}

	if watchDaemon && watchStop {
		return fmt.Errorf("--daemon and --stop are mutually exclusive")
	}

	if watchStop {
		return stopWatchDaemon(cmd)
	}

	if watchDaemon {
		return startWatchDaemon(cmd)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	logger := logging.WithComponent(slog.Default(), logging.ComponentWatcher)
	refresh := newRefresher(cmd, st, logger)

	w, err := watcher.New(getDBPath(), refresh, watcher.Options{Debounce: cfg.WatchDebounce, Logger: slog.Default()})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchDaemonChild {
		// stdout and stderr are redirected to the log file here.
		logger.Info("watch daemon starting", "db", getDBPath(), "snapshot", watchSnapshot)
		return w.RunDaemon(cmd.Context(), watchPIDFile)
	}

	return runWatchForeground(cmd, w, refresh)
}

// newRefresher returns the callback run after each database change.
func newRefresher(cmd *cobra.Command, st *store.Store, logger *slog.Logger) func() {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if watchSnapshot {
		m := snapshots.New(st, getSnapshotDir())
		return func() {
			if _, err := m.Create(ctx, "database changed"); err != nil {
				logger.Warn("snapshot failed", logging.FieldError, err)
			}
		}
	}

	a := newAnalyzer(st)
	return func() {
		report, err := a.Report(ctx)
		if err != nil {
			logger.Warn("report failed", logging.FieldError, err)
			return
		}
		printRefresh(out, report.GeneratedAt)
		writeReport(out, report)
	}
}

func printRefresh(w io.Writer, at time.Time) {
	fmt.Fprintf(w, "\n── Report at %s ──\n\n", at.Local().Format(output.InvoiceDateLayout+":05"))
}

func stopWatchDaemon(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner(cmd.ErrOrStderr(), "Stopping daemon")
	spinner.Start()
	if err := watcher.StopDaemon(watchPIDFile, daemonStopTimeout); err != nil {
		spinner.Stop()
		if errors.Is(err, watcher.ErrDaemonNotRunning) {
			fmt.Fprintln(out, "Daemon is not running")
			return nil
		}
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.Stop()
	fmt.Fprintln(out, "✓ Daemon stopped")

	return nil
}

func startWatchDaemon(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		fmt.Fprintln(out, "Daemon already running. Nothing to do.")
		return nil
	}

	// Refuse early so the child does not fail silently.
	st, err := openStore()
	if err != nil {
		return err
	}
	st.Close()

	childArgs := []string{
		"watch", "--daemon-child",
		"--db", getDBPath(),
		"--pid-file", watchPIDFile,
		"--log-level", cfg.LogLevel,
		"--log-format", cfg.LogFormat,
	}
	if watchSnapshot {
		childArgs = append(childArgs, "--snapshot")
	}

	if err := watcher.StartDaemon(watchPIDFile, watchLogFile, childArgs...); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Fprintln(out, "✓ Daemon started")
	fmt.Fprintf(out, "  PID file: %s\n", watchPIDFile)
	fmt.Fprintf(out, "  Log file: %s\n", watchLogFile)
	fmt.Fprintf(out, "\nTo stop: stockrank watch --stop\n")

	return nil
}

func runWatchForeground(cmd *cobra.Command, w *watcher.Watcher, refresh func()) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (press Ctrl+C to stop)...\n", getDBPath())

	refresh()

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	<-cmd.Context().Done()
	fmt.Fprintln(out, "\nShutting down...")

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	fmt.Fprintln(out, "✓ Watcher stopped")
	return nil
}
