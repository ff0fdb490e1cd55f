package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/stockrank/internal/store"
)

// Create builds a full ABC/XYZ report, writes it to {dir}/{uuid}.json and
// records it in the database.
func (m *Manager) Create(ctx context.Context, reason string) (*store.ReportSnapshot, error) {
	if err := os.MkdirAll(m.snapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	report, err := m.analyzer.Report(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	data := &SnapshotData{
		ID:        uuid.NewString(),
		CreatedAt: m.now().UTC().Truncate(time.Second),
		Reason:    reason,
		Report:    report,
	}

	snapshotPath := filepath.Join(m.snapshotDir, data.ID+".json")
	if err := writeSnapshotFile(snapshotPath, data); err != nil {
		return nil, err
	}

	productCount := len(report.ABC)
	id, err := m.store.InsertReportSnapshot(ctx, data.CreatedAt, reason, productCount, snapshotPath)
	if err != nil {
		// Try to clean up the JSON file if DB insert fails
		os.Remove(snapshotPath)
		return nil, fmt.Errorf("failed to insert snapshot into database: %w", err)
	}

	m.logger.Info("snapshot created", "id", id, "path", snapshotPath, "products", productCount)

	return &store.ReportSnapshot{
		ID:           id,
		CreatedAt:    data.CreatedAt,
		Reason:       reason,
		ProductCount: productCount,
		SnapshotPath: snapshotPath,
	}, nil
}

// List returns all snapshots from the database, newest first.
func (m *Manager) List(ctx context.Context) ([]*store.ReportSnapshot, error) {
	snapshots, err := m.store.ListReportSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}

// Load reads back the report saved by snapshot id.
func (m *Manager) Load(ctx context.Context, id int64) (*SnapshotData, error) {
	snapshot, err := m.store.GetReportSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	data, err := loadSnapshotFile(snapshot.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot file: %w", err)
	}
	return data, nil
}

// Cleanup removes snapshots older than maxAge, both the JSON file and the
// database record, and returns how many were removed.
func (m *Manager) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, fmt.Errorf("invalid max age %s: must be positive", maxAge)
	}

	snapshots, err := m.store.ListReportSnapshots(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list snapshots: %w", err)
	}

	cutoff := m.now().Add(-maxAge)
	deleted := 0

	for _, snapshot := range snapshots {
		if !snapshot.CreatedAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(snapshot.SnapshotPath); err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("failed to delete snapshot file %s: %w", snapshot.SnapshotPath, err)
		}
		if err := m.store.DeleteReportSnapshot(ctx, snapshot.ID); err != nil {
			return deleted, err
		}
		deleted++
	}

	if deleted > 0 {
		m.logger.Info("old snapshots removed", "count", deleted, "cutoff", cutoff.UTC().Format(time.RFC3339))
	}
	return deleted, nil
}

// writeSnapshotFile writes data through a temporary file and renames it into
// place, so a crash never leaves a half-written snapshot.
func writeSnapshotFile(path string, data *SnapshotData) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot data: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(jsonData); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move snapshot file into place: %w", err)
	}
	return nil
}

func loadSnapshotFile(path string) (*SnapshotData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data SnapshotData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	if data.Report == nil {
		return nil, fmt.Errorf("snapshot %s has no report", path)
	}
	return &data, nil
}

