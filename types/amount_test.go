package types_test

import (
	"errors"
	"math"
	"testing"

	"github.com/xraph/memberledger/types"
)

func TestUnit(t *testing.T) {
	tests := []struct {
		decimals uint8
		want     int64
	}{
		{0, 1},
		{2, 100},
		{6, 1_000_000},
		{8, 100_000_000},
	}

	for _, tt := range tests {
		got, err := types.Unit(tt.decimals)
		if err != nil {
			t.Fatalf("Unit(%d) failed: %v", tt.decimals, err)
		}
		if got.Int64() != tt.want {
			t.Errorf("Unit(%d) = %d, want %d", tt.decimals, got.Int64(), tt.want)
		}
	}
}

func TestUnitOverflow(t *testing.T) {
	if _, err := types.Unit(40); !errors.Is(err, types.ErrAmountOverflow) {
		t.Errorf("expected overflow for 10^40, got %v", err)
	}
}

func TestAddOverflow(t *testing.T) {
	a := types.Amount(math.MaxInt64)
	if _, err := a.Add(1); !errors.Is(err, types.ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}

	sum, err := types.Amount(40).Add(2)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if sum != 42 {
		t.Errorf("40+2 = %d, want 42", sum)
	}
}

func TestSubNegative(t *testing.T) {
	if _, err := types.Amount(5).Sub(6); !errors.Is(err, types.ErrAmountNegative) {
		t.Errorf("expected ErrAmountNegative, got %v", err)
	}

	diff, err := types.Amount(6).Sub(5)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if diff != 1 {
		t.Errorf("6-5 = %d, want 1", diff)
	}
}

func TestMulOverflow(t *testing.T) {
	a := types.Amount(math.MaxInt64 / 2)
	if _, err := a.Mul(3); !errors.Is(err, types.ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		amount types.Amount
		pct    int64
		want   types.Amount
	}{
		{100, 50, 50},
		{100, 60, 60},
		{101, 50, 50}, // floor
		{999, 58, 579},
		{0, 80, 0},
	}

	for _, tt := range tests {
		got, err := tt.amount.Percent(tt.pct)
		if err != nil {
			t.Fatalf("Percent(%d, %d) failed: %v", tt.amount, tt.pct, err)
		}
		if got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.amount, tt.pct, got, tt.want)
		}
	}

	if _, err := types.Amount(100).Percent(101); err == nil {
		t.Error("expected error for pct > 100")
	}
}

func TestSumAmounts(t *testing.T) {
	total, err := types.SumAmounts(1, 2, 3, 4)
	if err != nil {
		t.Fatalf("SumAmounts failed: %v", err)
	}
	if total != 10 {
		t.Errorf("sum = %d, want 10", total)
	}

	if _, err := types.SumAmounts(math.MaxInt64, 1); !errors.Is(err, types.ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
}

func TestAddressNormalize(t *testing.T) {
	a := types.Address(" 0xABcD ")
	if a.Normalize() != "0xabcd" {
		t.Errorf("Normalize = %q", a.Normalize())
	}
	if !a.Equal("0xabcd") {
		t.Error("expected case-insensitive equality")
	}
	if !types.ZeroAddress.IsZero() {
		t.Error("zero address should be zero")
	}
}
