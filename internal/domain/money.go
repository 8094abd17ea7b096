// internal/domain/money.go
package domain

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MaxDecimal returns the larger of a and b.
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// IsCents reports whether d has at most two decimal places, the precision every
// monetary column stores.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
