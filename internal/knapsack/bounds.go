package knapsack

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// MaxExponent bounds the decimal exponent of any size, price, capacity or
	// step. Remainders rescale both operands to the smaller exponent.
	MaxExponent = 64
	// MaxDigits bounds the number of coefficient digits.
	MaxDigits = 64
)

// CheckMagnitude reports ErrInvalidInput when d has an exponent outside
// ±MaxExponent or more than MaxDigits coefficient digits.
func CheckMagnitude(d decimal.Decimal) error {
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return fmt.Errorf("%w: exponent of %s is outside ±%d", ErrInvalidInput, d, MaxExponent)
	}
	coef := d.Coefficient()
	if digits := len(coef.Abs(coef).String()); digits > MaxDigits {
		return fmt.Errorf("%w: value has %d digits, at most %d allowed", ErrInvalidInput, digits, MaxDigits)
	}
	return nil
}
