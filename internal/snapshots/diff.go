package snapshots

import (
	"sort"

	"github.com/blackwell-systems/stockrank/internal/analyzer"
)

// Change records a product whose matrix label differs between two snapshots.
// An empty label means the product was absent from that snapshot.
type Change struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Before      string `json:"before"`
	After       string `json:"after"`
}

// Compare lists products whose ABC/XYZ label changed from older to newer,
// ordered by product id.
func Compare(older, newer *SnapshotData) []Change {
	before := labels(older)
	after := labels(newer)

	ids := make(map[int64]struct{}, len(before)+len(after))
	for id := range before {
		ids[id] = struct{}{}
	}
	for id := range after {
		ids[id] = struct{}{}
	}

	changes := []Change{}
	for id := range ids {
		b, a := before[id], after[id]
		if b.Label == a.Label {
			continue
		}
		name := a.ProductName
		if name == "" {
			name = b.ProductName
		}
		changes = append(changes, Change{ProductID: id, ProductName: name, Before: b.Label, After: a.Label})
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].ProductID < changes[j].ProductID
	})
	return changes
}

func labels(s *SnapshotData) map[int64]analyzer.MatrixEntry {
	out := map[int64]analyzer.MatrixEntry{}
	if s == nil || s.Report == nil {
		return out
	}
	for _, e := range s.Report.Matrix.Entries {
		out[e.ProductID] = e
	}
	return out
}
