package analyzer

import "sort"

// Cumulative revenue share limits for ABC groups. Both limits are inclusive.
const (
	ABCLimitA = 80.0
	ABCLimitB = 95.0
)

// ClassifyABC ranks products by revenue and assigns each an ABC group from
// the running sum of revenue shares up to and including the product. Equal
// revenues keep their input order.
//
// An empty input or a zero revenue total yields an empty result. Negative
// revenues are not rejected; see ValidateRevenue.
func ClassifyABC(records []ProductRevenue) []ABCResult {
	results := []ABCResult{}
	if len(records) == 0 {
		return results
	}

	var total float64
	for _, r := range records {
		total += r.TotalRevenue
	}
	if total == 0 {
		return results
	}

	sorted := make([]ProductRevenue, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalRevenue > sorted[j].TotalRevenue
	})

	shares := make([]float64, len(sorted))
	for i, r := range sorted {
		shares[i] = Percentage(r.TotalRevenue, total)
	}
	cumulative := CumulativeSum(shares)

	for i, r := range sorted {
		results = append(results, ABCResult{
			ProductID:            r.ProductID,
			ProductName:          r.ProductName,
			TotalRevenue:         r.TotalRevenue,
			PercentageOfTotal:    shares[i],
			CumulativePercentage: cumulative[i],
			Group:                abcGroup(cumulative[i]),
		})
	}

	return results
}

func abcGroup(cumulative float64) Group {
	switch {
	case cumulative <= ABCLimitA:
		return GroupA
	case cumulative <= ABCLimitB:
		return GroupB
	default:
		return GroupC
	}
}
