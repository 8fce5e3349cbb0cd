// Package money converts between decimal prices and integer minor units (cents).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const minorUnitExponent = 2

var hundred = decimal.NewFromInt(100)

// ToMinorUnits rounds a major-unit price to the nearest minor unit, half away from zero.
func ToMinorUnits(price decimal.Decimal) int64 {
	return price.Shift(minorUnitExponent).Round(0).IntPart()
}

// ParseMinorUnits parses a decimal string such as "89.99" into minor units.
func ParseMinorUnits(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	return ToMinorUnits(d), nil
}

// FromMinorUnits returns the major-unit decimal value of an amount.
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -minorUnitExponent)
}

// Format renders an amount as dollars, e.g. 8999 -> "$89.99".
func Format(amount int64) string {
	return "$" + FromMinorUnits(amount).StringFixed(minorUnitExponent)
}

// Percent returns percent% of amount, rounded to a whole minor unit.
func Percent(amount int64, percent decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(percent).Div(hundred).Round(0).IntPart()
}
