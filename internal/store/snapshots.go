package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// InsertReportSnapshot records a saved report and returns its id.
func (s *Store) InsertReportSnapshot(ctx context.Context, createdAt time.Time, reason string, productCount int, path string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO report_snapshots (created_at, reason, product_count, snapshot_path)
		VALUES (?, ?, ?, ?)
	`, formatTime(createdAt), reason, productCount, path)
	if err != nil {
		return 0, wrapErr(err, "failed to insert report snapshot")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot ID: %w", err)
	}
	return id, nil
}

// GetReportSnapshot retrieves a snapshot record by id.
func (s *Store) GetReportSnapshot(ctx context.Context, id int64) (*ReportSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, reason, product_count, snapshot_path
		FROM report_snapshots
		WHERE id = ?
	`, id)

	snap, err := scanReportSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("failed to get snapshot %d", id))
	}
	return snap, nil
}

// ListReportSnapshots returns all snapshot records, newest first.
func (s *Store) ListReportSnapshots(ctx context.Context) ([]*ReportSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, reason, product_count, snapshot_path
		FROM report_snapshots
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, wrapErr(err, "failed to list snapshots")
	}
	defer rows.Close()

	var snaps []*ReportSnapshot
	for rows.Next() {
		snap, err := scanReportSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snaps, nil
}

// DeleteReportSnapshot removes a snapshot record.
func (s *Store) DeleteReportSnapshot(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM report_snapshots WHERE id = ?`, id); err != nil {
		return wrapErr(err, fmt.Sprintf("failed to delete snapshot %d", id))
	}
	return nil
}

func scanReportSnapshot(row scanner) (*ReportSnapshot, error) {
	var snap ReportSnapshot
	var createdAt string
	var reason sql.NullString
	var count sql.NullInt64
	if err := row.Scan(&snap.ID, &createdAt, &reason, &count, &snap.SnapshotPath); err != nil {
		return nil, err
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	snap.CreatedAt = t
	snap.Reason = reason.String
	snap.ProductCount = int(count.Int64)
	return &snap, nil
}
