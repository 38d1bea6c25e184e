package entity

import "github.com/shopspring/decimal"

const BasisPointsDenominator = 10000

// IsWholeAmount reports whether d is a non-negative integral amount of base units.
func IsWholeAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Truncate(0))
}

// BasisPointsOf returns amount*bps/10000, truncated to whole units.
func BasisPointsOf(amount decimal.Decimal, bps uint) decimal.Decimal {
	return amount.
		Mul(decimal.NewFromInt(int64(bps))).
		Div(decimal.NewFromInt(BasisPointsDenominator)).
		Truncate(0)
}
