package snapshots

import (
	"log/slog"
	"time"

	"github.com/blackwell-systems/stockrank/internal/analyzer"
	"github.com/blackwell-systems/stockrank/internal/logging"
	"github.com/blackwell-systems/stockrank/internal/store"
)

// SnapshotData represents the JSON structure stored in snapshot files.
type SnapshotData struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Reason    string           `json:"reason"`
	Report    *analyzer.Report `json:"report"`
}

// Manager manages snapshot creation, loading, and cleanup.
type Manager struct {
	store       *store.Store
	analyzer    *analyzer.Analyzer
	snapshotDir string
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a new snapshot Manager that writes report files under
// snapshotDir.
func New(st *store.Store, snapshotDir string) *Manager {
	return &Manager{
		store:       st,
		analyzer:    analyzer.New(st),
		snapshotDir: snapshotDir,
		logger:      logging.WithComponent(nil, logging.ComponentSnapshot),
		now:         time.Now,
	}
}

// SetStrict validates sales data before each snapshot is taken.
func (m *Manager) SetStrict(strict bool) {
	m.analyzer.SetStrict(strict)
}
