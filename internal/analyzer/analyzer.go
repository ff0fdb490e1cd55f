package analyzer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source supplies pre-aggregated sales data. *store.Store implements it.
type Source interface {
	ProductRevenueTotals(ctx context.Context) ([]ProductRevenue, error)
	ProductPeriodQuantities(ctx context.Context) ([]ProductPeriodQuantity, error)
	ProductNames(ctx context.Context) (map[int64]string, error)
	AggregateSalesMetrics(ctx context.Context) (SalesMetrics, error)
	TopSellingProducts(ctx context.Context, limit int) ([]TopProduct, error)
	SalesByMonth(ctx context.Context) ([]MonthlySales, error)
}

// Analyzer fetches aggregates from a Source and runs the classifiers on them.
// It keeps no state between calls.
type Analyzer struct {
	source Source
	strict bool
	now    func() time.Time
}

// New creates a new Analyzer reading from source.
func New(source Source) *Analyzer {
	return &Analyzer{source: source, now: time.Now}
}

// SetStrict makes the analyzer validate fetched data before classifying it.
// Malformed data then fails with an error wrapping ErrInvalidInput.
func (a *Analyzer) SetStrict(strict bool) {
	a.strict = strict
}

// ABC fetches revenue totals and classifies them.
func (a *Analyzer) ABC(ctx context.Context) ([]ABCResult, error) {
	records, err := a.source.ProductRevenueTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revenue totals: %w", err)
	}
	if a.strict {
		if err := ValidateRevenue(records); err != nil {
			return nil, err
		}
	}
	return ClassifyABC(records), nil
}

// XYZ fetches monthly quantities and product names and classifies them.
func (a *Analyzer) XYZ(ctx context.Context) ([]XYZResult, error) {
	records, err := a.source.ProductPeriodQuantities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch monthly quantities: %w", err)
	}
	if a.strict {
		if err := ValidateQuantities(records); err != nil {
			return nil, err
		}
	}

	names, err := a.source.ProductNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product names: %w", err)
	}

	return ClassifyXYZ(records, MapResolver(names)), nil
}

// Report runs both analyses concurrently and cross-tabulates them.
func (a *Analyzer) Report(ctx context.Context) (*Report, error) {
	var abc []ABCResult
	var xyz []XYZResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		abc, err = a.ABC(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		xyz, err = a.XYZ(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt: a.now().UTC(),
		ABC:         abc,
		XYZ:         xyz,
		Matrix:      BuildMatrix(abc, xyz),
	}, nil
}

// Summary collects store-wide metrics, the topN products by quantity and
// revenue per month.
func (a *Analyzer) Summary(ctx context.Context, topN int) (*Summary, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("invalid top count: %d (must be positive)", topN)
	}

	var s Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := a.source.AggregateSalesMetrics(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch sales metrics: %w", err)
		}
		s.Metrics = m
		s.AverageCheck = m.AverageCheck()
		return nil
	})
	g.Go(func() error {
		top, err := a.source.TopSellingProducts(gctx, topN)
		if err != nil {
			return fmt.Errorf("failed to fetch top products: %w", err)
		}
		s.TopProducts = top
		return nil
	})
	g.Go(func() error {
		dyn, err := a.source.SalesByMonth(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch sales dynamics: %w", err)
		}
		s.Dynamics = dyn
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &s, nil
}
