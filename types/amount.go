package types

import (
	"errors"
	"fmt"
	"math"
)

// Amount represents a payment-token value in the token's smallest unit.
// All arithmetic is integer-only and explicitly checked — additions and
// multiplications that would overflow return ErrAmountOverflow instead
// of wrapping silently.
//
// Examples with an 18-decimal token:
//   - Units(1, 18)  = 1 token
//   - Units(16, 18) = 16 tokens (the top tier price)
type Amount int64

// ErrAmountOverflow indicates an arithmetic result that does not fit in
// the Amount range. The ledger treats this as a hard invariant failure.
var ErrAmountOverflow = errors.New("types: amount overflow")

// ErrAmountNegative indicates a subtraction that would go below zero
// where a balance cannot be negative.
var ErrAmountNegative = errors.New("types: amount negative")

// Unit returns 10^decimals, the value of one whole payment token.
func Unit(decimals uint8) (Amount, error) {
	unit := Amount(1)
	for i := uint8(0); i < decimals; i++ {
		next, err := unit.Mul(10)
		if err != nil {
			return 0, fmt.Errorf("types: unit for %d decimals: %w", decimals, err)
		}
		unit = next
	}
	return unit, nil
}

// Units returns n whole tokens scaled to the smallest unit.
func Units(n int64, decimals uint8) (Amount, error) {
	unit, err := Unit(decimals)
	if err != nil {
		return 0, err
	}
	return unit.Mul(n)
}

// Add returns a+b, or ErrAmountOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrAmountOverflow
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}

// Sub returns a-b, or ErrAmountNegative if the result would be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrAmountNegative
	}
	return a - b, nil
}

// Mul returns a*n, or ErrAmountOverflow.
func (a Amount) Mul(n int64) (Amount, error) {
	if a == 0 || n == 0 {
		return 0, nil
	}
	result := int64(a) * n
	if result/n != int64(a) {
		return 0, ErrAmountOverflow
	}
	return Amount(result), nil
}

// Percent returns floor(a*pct/100). pct must be in [0,100].
func (a Amount) Percent(pct int64) (Amount, error) {
	if pct < 0 || pct > 100 {
		return 0, fmt.Errorf("types: percent %d out of range", pct)
	}
	scaled, err := a.Mul(pct)
	if err != nil {
		return 0, err
	}
	return scaled / 100, nil
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a == 0 }

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool { return a > 0 }

// Int64 returns the raw smallest-unit value.
func (a Amount) Int64() int64 { return int64(a) }

// String returns the raw smallest-unit value as a decimal string.
func (a Amount) String() string { return fmt.Sprintf("%d", int64(a)) }

// SumAmounts adds a series of amounts with overflow checking.
func SumAmounts(values ...Amount) (Amount, error) {
	var total Amount
	for _, v := range values {
		next, err := total.Add(v)
		if err != nil {
			return 0, err
		}
		total = next
	}
	return total, nil
}
