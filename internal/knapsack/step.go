package knapsack

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DeriveStep returns the greatest decimal that divides every size exactly.
// It starts from the smallest size and replaces the candidate with the first
// non-zero remainder it meets, rescanning until every size divides evenly.
func DeriveStep(sizes []decimal.Decimal) (decimal.Decimal, error) {
	if len(sizes) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no sizes to derive a step from", ErrInvalidInput)
	}

	unique := make([]decimal.Decimal, 0, len(sizes))
	seen := make(map[string]struct{}, len(sizes))
	for _, size := range sizes {
		if err := CheckMagnitude(size); err != nil {
			return decimal.Zero, err
		}
		if !size.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: size must be positive, got %s", ErrInvalidInput, size)
		}
		key := size.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, size)
	}

	step := decimal.Min(unique[0], unique[1:]...)
	for {
		reduced := false
		for _, size := range unique {
			if remainder := mod(size, step); !remainder.IsZero() {
				step = remainder
				reduced = true
				break
			}
		}
		if !reduced {
			return step, nil
		}
	}
}

// mod is the exact remainder of a/b for positive operands.
func mod(a, b decimal.Decimal) decimal.Decimal {
	_, remainder := a.QuoRem(b, 0)
	return remainder
}
