package app

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "stockrank" {
		t.Errorf("expected Use to be 'stockrank', got '%s'", RootCmd.Use)
	}
	if RootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
	if !strings.Contains(RootCmd.Long, "Quick Start") {
		t.Error("expected Long description to contain 'Quick Start' section")
	}
	if !RootCmd.SilenceUsage || !RootCmd.SilenceErrors {
		t.Error("expected SilenceUsage and SilenceErrors to be true")
	}
	if RootCmd.SuggestionsMinimumDistance != 2 {
		t.Errorf("SuggestionsMinimumDistance = %d, want 2", RootCmd.SuggestionsMinimumDistance)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		found[cmd.Name()] = true
	}

	expected := []string{
		"init", "seed", "import", "products", "customer", "order", "invoice",
		"abc", "xyz", "report", "summary", "snapshot", "watch", "doctor",
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected command '%s' to be registered", name)
		}
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	for _, name := range []string{"db", "log-level", "log-format"} {
		flag := RootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("expected --%s flag to be registered", name)
			continue
		}
		if flag.Usage == "" {
			t.Errorf("expected --%s flag to have usage text", name)
		}
	}
}

func TestBareInvocation_NoDatabase(t *testing.T) {
	db := setupCLI(t)

	out, err := runCommand(t, db)
	if err != nil {
		t.Fatalf("bare invocation: %v", err)
	}
	if !strings.Contains(out, "stockrank init") {
		t.Errorf("expected init hint, got: %s", out)
	}
}

func TestBareInvocation_WithDatabase(t *testing.T) {
	db := setupCLI(t)
	mustRun(t, db, "init")

	out := mustRun(t, db)
	if !strings.Contains(out, "stockrank report") {
		t.Errorf("expected report hint, got: %s", out)
	}
}

func TestGetDefaultPIDAndLogFile(t *testing.T) {
	db := setupCLI(t)
	mustRun(t, db)

	if got, want := getDBPath(), db; got != want {
		t.Errorf("getDBPath() = %q, want %q", got, want)
	}
	if got, want := getDefaultPIDFile(), filepath.Join(filepath.Dir(db), "watch.pid"); got != want {
		t.Errorf("getDefaultPIDFile() = %q, want %q", got, want)
	}
	if got, want := getDefaultLogFile(), filepath.Join(filepath.Dir(db), "watch.log"); got != want {
		t.Errorf("getDefaultLogFile() = %q, want %q", got, want)
	}
}

func TestSnapshotDirFromEnvironment(t *testing.T) {
	db := setupCLI(t)
	want := filepath.Join(t.TempDir(), "history")
	t.Setenv("STOCKRANK_SNAPSHOT_DIR", want)

	mustRun(t, db)
	if got := getSnapshotDir(); got != want {
		t.Errorf("getSnapshotDir() = %q, want %q", got, want)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	db := setupCLI(t)
	t.Setenv("STOCKRANK_TOP_N", "many")

	_, err := runCommand(t, db)
	if err == nil {
		t.Fatal("expected error for invalid STOCKRANK_TOP_N")
	}
	if !strings.Contains(err.Error(), "STOCKRANK_TOP_N") {
		t.Errorf("expected error to name STOCKRANK_TOP_N, got: %v", err)
	}
}

func TestInvalidLogLevelFlag(t *testing.T) {
	db := setupCLI(t)

	_, err := runCommand(t, db, "--log-level", "verbose")
	if err == nil {
		t.Fatal("expected error for invalid --log-level")
	}
	if !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHelpSucceeds(t *testing.T) {
	setupCLI(t)
	resetFlags(RootCmd)

	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(bytes.NewBuffer(nil))
	RootCmd.SetArgs([]string{"--help"})
	defer func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	}()

	if err := Execute(); err != nil {
		t.Errorf("expected Execute() with --help to succeed, got error: %v", err)
	}
	if !strings.Contains(buf.String(), "Usage:") {
		t.Errorf("expected help output to contain 'Usage:', got: %s", buf.String())
	}
}

func TestExecute_UnknownCommandHelpHint(t *testing.T) {
	setupCLI(t)
	resetFlags(RootCmd)

	var stderr bytes.Buffer
	RootCmd.SetOut(bytes.NewBuffer(nil))
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs([]string{"blorp"})
	defer func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	}()

	err := Execute()
	if err == nil {
		t.Fatal("expected Execute() to return an error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected error to contain 'unknown command', got: %v", err)
	}

	got := stderr.String()
	errIdx := strings.Index(got, "Error:")
	hintIdx := strings.Index(got, "stockrank --help")
	if errIdx == -1 || hintIdx == -1 || errIdx > hintIdx {
		t.Errorf("expected error line followed by help hint, got: %q", got)
	}
}
