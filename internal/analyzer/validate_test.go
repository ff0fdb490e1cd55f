package analyzer

import (
	"errors"
	"math"
	"testing"
)

func TestValidateRevenue(t *testing.T) {
	tests := []struct {
		name    string
		records []ProductRevenue
		wantErr bool
	}{
		{"well formed", revenues(10, 0, 5), false},
		{"empty", nil, false},
		{"negative", revenues(10, -1), true},
		{"nan", revenues(math.NaN()), true},
		{"duplicate id", []ProductRevenue{{ProductID: 1, TotalRevenue: 1}, {ProductID: 1, TotalRevenue: 2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRevenue(tt.records)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("error %v does not wrap ErrInvalidInput", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateQuantities(t *testing.T) {
	tests := []struct {
		name    string
		records []ProductPeriodQuantity
		wantErr bool
	}{
		{"well formed", monthly(1, 3, 4, 5), false},
		{"zero quantity", monthly(1, 3, 0), true},
		{"negative quantity", monthly(1, -2), true},
		{"bad period", []ProductPeriodQuantity{{ProductID: 1, Period: "2024/01", QuantitySold: 1}}, true},
		{"duplicate period", []ProductPeriodQuantity{
			{ProductID: 1, Period: "2024-01", QuantitySold: 1},
			{ProductID: 1, Period: "2024-01", QuantitySold: 2},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuantities(tt.records)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// Validation only accepts or refuses; it must not change what well-formed
// input classifies to.
func TestValidationDoesNotAlterResults(t *testing.T) {
	records := revenues(60, 20, 15, 5)
	before := ClassifyABC(records)
	if err := ValidateRevenue(records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := ClassifyABC(records)
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("result %d changed: %v vs %v", i, before[i], after[i])
		}
	}
}
