package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSource is an in-memory Source for testing.
type fakeSource struct {
	revenue    []ProductRevenue
	quantities []ProductPeriodQuantity
	names      map[int64]string
	metrics    SalesMetrics
	top        []TopProduct
	dynamics   []MonthlySales
	err        error
	topLimit   int
}

func (f *fakeSource) ProductRevenueTotals(ctx context.Context) ([]ProductRevenue, error) {
	return f.revenue, f.err
}

func (f *fakeSource) ProductPeriodQuantities(ctx context.Context) ([]ProductPeriodQuantity, error) {
	return f.quantities, f.err
}

func (f *fakeSource) ProductNames(ctx context.Context) (map[int64]string, error) {
	return f.names, f.err
}

func (f *fakeSource) AggregateSalesMetrics(ctx context.Context) (SalesMetrics, error) {
	return f.metrics, f.err
}

func (f *fakeSource) TopSellingProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	f.topLimit = limit
	return f.top, f.err
}

func (f *fakeSource) SalesByMonth(ctx context.Context) ([]MonthlySales, error) {
	return f.dynamics, f.err
}

func newFakeSource() *fakeSource {
	var quantities []ProductPeriodQuantity
	quantities = append(quantities, monthly(1, 10, 12, 11, 10)...)
	quantities = append(quantities, monthly(2, 25, 30, 28)...)
	quantities = append(quantities, monthly(3, 50, 60)...)

	return &fakeSource{
		revenue: []ProductRevenue{
			{ProductID: 1, ProductName: "Coffee", TotalRevenue: 51600},
			{ProductID: 2, ProductName: "Milk", TotalRevenue: 12450},
			{ProductID: 3, ProductName: "Sugar", TotalRevenue: 7150},
		},
		quantities: quantities,
		names:      map[int64]string{1: "Coffee", 2: "Milk", 3: "Sugar"},
		metrics:    SalesMetrics{TotalRevenue: 71200, TotalOrders: 4},
		top:        []TopProduct{{ProductName: "Sugar", QuantitySold: 110}},
		dynamics:   []MonthlySales{{Period: "2024-01", TotalSales: 15750}},
	}
}

func TestAnalyzer_Report(t *testing.T) {
	a := New(newFakeSource())
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	report, err := a.Report(context.Background())
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v, want %v", report.GeneratedAt, fixed)
	}
	if len(report.ABC) != 3 {
		t.Errorf("expected 3 ABC results, got %d", len(report.ABC))
	}
	if len(report.XYZ) != 2 {
		t.Errorf("expected 2 XYZ results, got %d", len(report.XYZ))
	}
	if report.ABC[0].ProductName != "Coffee" || report.ABC[0].Group != GroupA {
		t.Errorf("top ABC result = %+v, want Coffee in A", report.ABC[0])
	}
	if len(report.Matrix.Entries) != 3 {
		t.Errorf("expected 3 matrix entries, got %d", len(report.Matrix.Entries))
	}
	if got := report.Matrix.Entries[2].XYZ; got != GroupNone {
		t.Errorf("Sugar XYZ = %s, want %s", got, GroupNone)
	}
}

func TestAnalyzer_SourceError(t *testing.T) {
	src := newFakeSource()
	src.err = errors.New("disk on fire")
	a := New(src)

	if _, err := a.ABC(context.Background()); err == nil {
		t.Error("ABC should propagate source errors")
	}
	if _, err := a.XYZ(context.Background()); err == nil {
		t.Error("XYZ should propagate source errors")
	}
	if _, err := a.Report(context.Background()); err == nil {
		t.Error("Report should propagate source errors")
	}
	if _, err := a.Summary(context.Background(), 5); err == nil {
		t.Error("Summary should propagate source errors")
	}
}

func TestAnalyzer_Strict(t *testing.T) {
	src := newFakeSource()
	src.revenue = append(src.revenue, ProductRevenue{ProductID: 9, TotalRevenue: -5})
	src.quantities = append(src.quantities, ProductPeriodQuantity{ProductID: 9, Period: "bad", QuantitySold: 1})

	a := New(src)
	if _, err := a.ABC(context.Background()); err != nil {
		t.Errorf("non-strict ABC should not validate: %v", err)
	}

	a.SetStrict(true)
	if _, err := a.ABC(context.Background()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("strict ABC error = %v, want ErrInvalidInput", err)
	}
	if _, err := a.XYZ(context.Background()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("strict XYZ error = %v, want ErrInvalidInput", err)
	}
}

func TestAnalyzer_Summary(t *testing.T) {
	src := newFakeSource()
	a := New(src)

	s, err := a.Summary(context.Background(), 3)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if src.topLimit != 3 {
		t.Errorf("top limit = %d, want 3", src.topLimit)
	}
	if s.AverageCheck != 17800 {
		t.Errorf("AverageCheck = %v, want 17800", s.AverageCheck)
	}
	if len(s.TopProducts) != 1 || len(s.Dynamics) != 1 {
		t.Errorf("unexpected summary contents: %+v", s)
	}

	if _, err := a.Summary(context.Background(), 0); err == nil {
		t.Error("Summary should reject a non-positive top count")
	}
}

func TestSalesMetrics_AverageCheck(t *testing.T) {
	if got := (SalesMetrics{TotalRevenue: 100, TotalOrders: 0}).AverageCheck(); got != 0 {
		t.Errorf("AverageCheck with no orders = %v, want 0", got)
	}
	if got := (SalesMetrics{TotalRevenue: 90, TotalOrders: 3}).AverageCheck(); got != 30 {
		t.Errorf("AverageCheck = %v, want 30", got)
	}
}
