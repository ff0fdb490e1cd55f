package analyzer

// MatrixEntry is the combined ABC/XYZ classification of one product.
type MatrixEntry struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	ABC         Group  `json:"abc"`
	XYZ         Group  `json:"xyz"`
	Label       string `json:"label"` // e.g. "AX", or "A-" without an XYZ class
}

// Matrix cross-tabulates ABC and XYZ results.
type Matrix struct {
	Entries []MatrixEntry  `json:"entries"`
	Counts  map[string]int `json:"counts"`
}

// BuildMatrix joins ABC and XYZ results by product id. Entries follow the ABC
// (revenue) order. Products with an ABC group but no XYZ result get GroupNone.
func BuildMatrix(abc []ABCResult, xyz []XYZResult) Matrix {
	byID := make(map[int64]Group, len(xyz))
	for _, r := range xyz {
		byID[r.ProductID] = r.Group
	}

	m := Matrix{
		Entries: make([]MatrixEntry, 0, len(abc)),
		Counts:  make(map[string]int),
	}
	for _, r := range abc {
		x, ok := byID[r.ProductID]
		if !ok {
			x = GroupNone
		}
		label := string(r.Group) + string(x)
		m.Entries = append(m.Entries, MatrixEntry{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			ABC:         r.Group,
			XYZ:         x,
			Label:       label,
		})
		m.Counts[label]++
	}

	return m
}

// Count returns the number of products in the given cell.
func (m Matrix) Count(abc, xyz Group) int {
	return m.Counts[string(abc)+string(xyz)]
}
