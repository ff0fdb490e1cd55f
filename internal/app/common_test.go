package app

import (
	"strings"
	"testing"
	"time"
)

func TestParseOrderLine(t *testing.T) {
	tests := []struct {
		in      string
		want    orderLine
		wantErr bool
	}{
		{in: "1:10", want: orderLine{productID: 1, quantity: 10}},
		{in: " 12 : 3 ", want: orderLine{productID: 12, quantity: 3}},
		{in: "Farm milk:3", want: orderLine{productName: "Farm milk", quantity: 3}},
		{in: "Tea: a:b:2", want: orderLine{productName: "Tea: a:b", quantity: 2}},
		{in: "1", wantErr: true},
		{in: ":1", wantErr: true},
		{in: "0:1", wantErr: true},
		{in: "1:0", wantErr: true},
		{in: "1:-2", wantErr: true},
		{in: "1:2.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseOrderLine(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseOrderLine(%q) expected error, got %+v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderLine(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseOrderLine(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseOrderDate(t *testing.T) {
	got, err := parseOrderDate("2024-03-15")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got, err = parseOrderDate("2024-03-15T10:30:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	before := time.Now()
	got, err = parseOrderDate("")
	if err != nil {
		t.Fatal(err)
	}
	if got.Before(before) {
		t.Errorf("empty date should mean now, got %v", got)
	}

	if _, err := parseOrderDate("15.03.2024"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestCheckStatus(t *testing.T) {
	for _, s := range orderStatuses {
		if err := checkStatus(s); err != nil {
			t.Errorf("checkStatus(%q): %v", s, err)
		}
	}
	err := checkStatus("lost")
	if err == nil || !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("expected error listing valid statuses, got: %v", err)
	}
}

func TestCheckFormat(t *testing.T) {
	for _, f := range []string{formatTable, formatJSON} {
		if err := checkFormat(f); err != nil {
			t.Errorf("checkFormat(%q): %v", f, err)
		}
	}
	if err := checkFormat("csv"); err == nil {
		t.Error("expected error for csv")
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("42", "order"); err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
	for _, arg := range []string{"0", "-1", "abc", ""} {
		_, err := parseID(arg, "order")
		if err == nil {
			t.Errorf("parseID(%q) expected error", arg)
			continue
		}
		if !strings.Contains(err.Error(), "invalid order id") {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestLabelOrNone(t *testing.T) {
	if got := labelOrNone(""); got != "(none)" {
		t.Errorf("labelOrNone(\"\") = %q", got)
	}
	if got := labelOrNone("AX"); got != "AX" {
		t.Errorf("labelOrNone(AX) = %q", got)
	}
}
