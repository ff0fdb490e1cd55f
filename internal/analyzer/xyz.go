package analyzer

import "sort"

// Coefficient-of-variation limits for XYZ groups, in percent.
// X is below XYZLimitX, Y covers [XYZLimitX, XYZLimitY], Z is above.
const (
	XYZLimitX = 10.0
	XYZLimitY = 25.0
)

// MinPeriods is the number of monthly records a product needs before its
// demand variability is classified.
const MinPeriods = 3

// ClassifyXYZ groups monthly quantities by product and classifies each
// product by the coefficient of variation of its demand. Products with fewer
// than MinPeriods records are left out. Names come from resolve; unresolved
// ids (or a nil resolver) get UnknownProductName.
//
// Results are sorted by ascending coefficient of variation. Ties keep the
// order in which products first appear in records.
func ClassifyXYZ(records []ProductPeriodQuantity, resolve NameResolver) []XYZResult {
	results := []XYZResult{}
	if len(records) == 0 {
		return results
	}

	var order []int64
	quantities := make(map[int64][]float64)
	for _, r := range records {
		if _, seen := quantities[r.ProductID]; !seen {
			order = append(order, r.ProductID)
		}
		quantities[r.ProductID] = append(quantities[r.ProductID], float64(r.QuantitySold))
	}

	for _, id := range order {
		q := quantities[id]
		if len(q) < MinPeriods {
			continue
		}

		average := Mean(q)
		cv := CoefficientOfVariation(PopulationStdDev(q), average)

		results = append(results, XYZResult{
			ProductID:              id,
			ProductName:            resolveName(resolve, id),
			AverageMonthlySales:    average,
			CoefficientOfVariation: cv,
			Group:                  xyzGroup(cv),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CoefficientOfVariation < results[j].CoefficientOfVariation
	})

	return results
}

func xyzGroup(cv float64) Group {
	switch {
	case cv < XYZLimitX:
		return GroupX
	case cv <= XYZLimitY:
		return GroupY
	default:
		return GroupZ
	}
}

func resolveName(resolve NameResolver, id int64) string {
	if resolve == nil {
		return UnknownProductName
	}
	if name, ok := resolve(id); ok {
		return name
	}
	return UnknownProductName
}
