// Package valuation holds the pure helpers shared by the return solver, the
// pricing layer and the allocation classifier. Everything here is stateless.
package valuation

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount in the locale conventions of the given
// ISO currency code: grouping, symbol and the currency's fractional digits.
func FormatCurrency(amount decimal.Decimal, code string) string {
	cur := *money.New(0, code).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Value computes quantity x price. A nil price propagates to a nil value:
// "price unknown" must never be coerced to zero, which is a valid and
// different economic outcome.
func Value(quantity decimal.Decimal, price *decimal.Decimal) *decimal.Decimal {
	if price == nil {
		return nil
	}
	v := quantity.Mul(*price)
	return &v
}

// InflationAdjust deflates a nominal amount over the given horizon:
// real = nominal / (1+rate)^(months/12). Used for display-layer corpus
// projections only; the return solver works on nominal flows.
func InflationAdjust(nominal decimal.Decimal, annualRate float64, months int) decimal.Decimal {
	if months <= 0 {
		return nominal
	}
	factor := math.Pow(1+annualRate, float64(months)/12)
	return nominal.Div(decimal.NewFromFloat(factor))
}
