package analyzer

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidInput is wrapped by every problem reported by the validators.
var ErrInvalidInput = errors.New("invalid input")

// ValidateRevenue reports negative or non-finite revenues and duplicate
// product ids. The classifiers never call it; it exists for callers that want
// to refuse malformed data instead of classifying it.
func ValidateRevenue(records []ProductRevenue) error {
	var errs []error
	seen := make(map[int64]bool, len(records))

	for _, r := range records {
		if r.TotalRevenue < 0 || math.IsNaN(r.TotalRevenue) || math.IsInf(r.TotalRevenue, 0) {
			errs = append(errs, fmt.Errorf("%w: product %d has revenue %v", ErrInvalidInput, r.ProductID, r.TotalRevenue))
		}
		if seen[r.ProductID] {
			errs = append(errs, fmt.Errorf("%w: product %d appears more than once", ErrInvalidInput, r.ProductID))
		}
		seen[r.ProductID] = true
	}

	return errors.Join(errs...)
}

// ValidateQuantities reports non-positive quantities, periods that are not
// "YYYY-MM", and repeated (product, period) pairs.
func ValidateQuantities(records []ProductPeriodQuantity) error {
	type key struct {
		id     int64
		period string
	}

	var errs []error
	seen := make(map[key]bool, len(records))

	for _, r := range records {
		if r.QuantitySold <= 0 {
			errs = append(errs, fmt.Errorf("%w: product %d sold %d in %s", ErrInvalidInput, r.ProductID, r.QuantitySold, r.Period))
		}
		if _, err := time.Parse("2006-01", r.Period); err != nil {
			errs = append(errs, fmt.Errorf("%w: product %d has malformed period %q", ErrInvalidInput, r.ProductID, r.Period))
		}
		k := key{r.ProductID, r.Period}
		if seen[k] {
			errs = append(errs, fmt.Errorf("%w: product %d has period %s more than once", ErrInvalidInput, r.ProductID, r.Period))
		}
		seen[k] = true
	}

	return errors.Join(errs...)
}
