package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupCLI points configuration at a fresh temp directory and returns the
// database path the commands should use.
func setupCLI(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("STOCKRANK_DB", "")
	t.Setenv("STOCKRANK_SNAPSHOT_DIR", filepath.Join(dir, "snapshots"))
	t.Setenv("STOCKRANK_LOG_LEVEL", "")
	t.Setenv("STOCKRANK_LOG_FORMAT", "")
	t.Setenv("STOCKRANK_TOP_N", "")
	t.Setenv("STOCKRANK_WATCH_DEBOUNCE", "")
	t.Setenv("NO_COLOR", "1")

	return filepath.Join(dir, "stockrank.db")
}

// setupSeededCLI is setupCLI plus 'init' and 'seed --now 2024-06-01'.
func setupSeededCLI(t *testing.T) string {
	t.Helper()

	db := setupCLI(t)
	mustRun(t, db, "init")
	mustRun(t, db, "seed", "--now", "2024-06-01")
	return db
}

// runCommand executes the root command with --db set and returns what the
// command wrote to stdout.
func runCommand(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()

	resetFlags(RootCmd)
	setContext(RootCmd, context.Background())

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(append([]string{"--db", db}, args...))
	defer func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	}()

	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()

	out, err := runCommand(t, db, args...)
	if err != nil {
		t.Fatalf("%v: %v\noutput:\n%s", args, err, out)
	}
	return out
}

// resetFlags restores every flag in the tree to its default so state from
// one invocation does not leak into the next.
func resetFlags(cmd *cobra.Command) {
	// Repeated flags append to their variable once set; clear those directly.
	orderItems = nil

	reset := func(f *pflag.Flag) {
		if !strings.HasSuffix(f.Value.Type(), "Array") {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setContext replaces the context cobra cached on every command.
func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(c, ctx)
	}
}
