package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/stockrank/internal/output"
	"github.com/blackwell-systems/stockrank/internal/snapshots"
	"github.com/blackwell-systems/stockrank/internal/store"
)

var (
	snapshotReason string
	snapshotFormat string
	snapshotStrict bool
	snapshotDays   int

	snapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "Save and compare ABC/XYZ reports over time",
		Long: `Snapshots freeze a full ABC/XYZ report as a JSON file under the snapshot
directory (STOCKRANK_SNAPSHOT_DIR, default ~/.stockrank/snapshots) and record
it in the database, so classifications can be compared across months.`,
	}

	snapshotCreateCmd = &cobra.Command{
		Use:     "create",
		Short:   "Save the current report",
		Example: `  stockrank snapshot create --reason "monthly close"`,
		Args:    cobra.NoArgs,
		RunE:    runSnapshotCreate,
	}

	snapshotListCmd = &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE:  runSnapshotList,
	}

	snapshotShowCmd = &cobra.Command{
		Use:   "show <snapshot-id>",
		Short: "Show a saved report",
		Args:  cobra.ExactArgs(1),
		RunE:  runSnapshotShow,
	}

	snapshotDiffCmd = &cobra.Command{
		Use:     "diff <older-id> <newer-id>",
		Short:   "List products whose ABC/XYZ label changed between two snapshots",
		Example: `  stockrank snapshot diff 1 2`,
		Args:    cobra.ExactArgs(2),
		RunE:    runSnapshotDiff,
	}

	snapshotCleanupCmd = &cobra.Command{
		Use:   "cleanup",
		Short: "Delete snapshots older than --days",
		Args:  cobra.NoArgs,
		RunE:  runSnapshotCleanup,
	}
)

func init() {
	snapshotCreateCmd.Flags().StringVar(&snapshotReason, "reason", "", "note stored with the snapshot")
	snapshotCreateCmd.Flags().BoolVar(&snapshotStrict, "strict", false, "refuse to snapshot malformed sales data")
	addFormatFlag(snapshotListCmd, &snapshotFormat)
	addFormatFlag(snapshotShowCmd, &snapshotFormat)
	addFormatFlag(snapshotDiffCmd, &snapshotFormat)
	snapshotCleanupCmd.Flags().IntVar(&snapshotDays, "days", 90, "maximum snapshot age in days")

	snapshotCmd.AddCommand(snapshotCreateCmd, snapshotListCmd, snapshotShowCmd, snapshotDiffCmd, snapshotCleanupCmd)
	RootCmd.AddCommand(snapshotCmd)
}

// withSnapshots opens the store and hands a snapshot manager to fn.
func withSnapshots(fn func(m *snapshots.Manager) error) error {
	if err := checkFormat(snapshotFormat); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m := snapshots.New(st, getSnapshotDir())
	m.SetStrict(snapshotStrict)
	return fn(m)
}

func runSnapshotCreate(cmd *cobra.Command, args []string) error {
	return withSnapshots(func(m *snapshots.Manager) error {
		snap, err := m.Create(cmd.Context(), snapshotReason)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Snapshot #%d saved (%d products): %s\n", snap.ID, snap.ProductCount, snap.SnapshotPath)
		return nil
	})
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	return withSnapshots(func(m *snapshots.Manager) error {
		snaps, err := m.List(cmd.Context())
		if err != nil {
			return err
		}

		if snapshotFormat == formatJSON {
			if snaps == nil {
				snaps = []*store.ReportSnapshot{}
			}
			return writeJSON(cmd.OutOrStdout(), snaps)
		}
		fmt.Fprint(cmd.OutOrStdout(), output.RenderSnapshotTable(snaps))
		return nil
	})
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "snapshot")
	if err != nil {
		return err
	}

	return withSnapshots(func(m *snapshots.Manager) error {
		data, err := m.Load(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if snapshotFormat == formatJSON {
			return writeJSON(out, data)
		}

		fmt.Fprintf(out, "Snapshot #%d taken %s", id, data.CreatedAt.Local().Format(output.InvoiceDateLayout))
		if data.Reason != "" {
			fmt.Fprintf(out, " (%s)", data.Reason)
		}
		fmt.Fprint(out, "\n\n")
		writeReport(out, data.Report)
		return nil
	})
}

func runSnapshotDiff(cmd *cobra.Command, args []string) error {
	olderID, err := parseID(args[0], "snapshot")
	if err != nil {
		return err
	}
	newerID, err := parseID(args[1], "snapshot")
	if err != nil {
		return err
	}

	return withSnapshots(func(m *snapshots.Manager) error {
		older, err := m.Load(cmd.Context(), olderID)
		if err != nil {
			return err
		}
		newer, err := m.Load(cmd.Context(), newerID)
		if err != nil {
			return err
		}

		changes := snapshots.Compare(older, newer)
		out := cmd.OutOrStdout()
		if snapshotFormat == formatJSON {
			return writeJSON(out, changes)
		}

		if len(changes) == 0 {
			fmt.Fprintln(out, "No classification changes.")
			return nil
		}
		for _, c := range changes {
			fmt.Fprintf(out, "%-6d %-28s %3s → %s\n", c.ProductID, c.ProductName, labelOrNone(c.Before), labelOrNone(c.After))
		}
		return nil
	})
}

func labelOrNone(label string) string {
	if label == "" {
		return "(none)"
	}
	return label
}

func runSnapshotCleanup(cmd *cobra.Command, args []string) error {
	if snapshotDays <= 0 {
		return fmt.Errorf("invalid --days %d: must be positive", snapshotDays)
	}

	return withSnapshots(func(m *snapshots.Manager) error {
		deleted, err := m.Cleanup(cmd.Context(), time.Duration(snapshotDays)*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d snapshot(s) older than %d days\n", deleted, snapshotDays)
		return nil
	})
}
