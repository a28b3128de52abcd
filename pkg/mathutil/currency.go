// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Midpoint returns the exact midpoint of [lo, hi].
func Midpoint(lo, hi int64) decimal.Decimal {
	return decimal.NewFromInt(lo).Add(decimal.NewFromInt(hi)).Div(two)
}

// RoundHalfUp rounds to the nearest whole unit, ties away from zero.
func RoundHalfUp(val decimal.Decimal) int64 {
	return val.Round(0).IntPart()
}

// MustFactor parses a decimal constant and panics on malformed input.
// Only meant for package-level multiplier tables.
func MustFactor(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CalculatePercentage returns value as a whole percentage of total,
// rounded half up. A zero total yields zero.
func CalculatePercentage(value, total int64) int64 {
	if total == 0 {
		return 0
	}
	pct := decimal.NewFromInt(value).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total))
	return RoundHalfUp(pct)
}

// Sum adds a list of integer amounts.
func Sum(values ...int64) int64 {
	var total int64
	for _, v := range values {
		total += v
	}
	return total
}
