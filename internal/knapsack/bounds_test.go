package knapsack

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCheckMagnitude(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		ok    bool
	}{
		{value: "0", ok: true},
		{value: "12.75", ok: true},
		{value: "1e64", ok: true},
		{value: "1e-64", ok: true},
		{value: "-3.5e10", ok: true},
		{value: strings.Repeat("9", MaxDigits), ok: true},
		{value: "1e65", ok: false},
		{value: "1e-65", ok: false},
		{value: "1e-10000000", ok: false},
		{value: strings.Repeat("9", MaxDigits+1), ok: false},
		{value: "-" + strings.Repeat("9", MaxDigits+1), ok: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.value, func(t *testing.T) {
			t.Parallel()

			err := CheckMagnitude(decimal.RequireFromString(tc.value))
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestInventoryValidateRejectsExtremeMagnitudes(t *testing.T) {
	t.Parallel()

	inv := NewInventory(decimal.RequireFromString("1e-70"))
	inv.Put(item("a", "1", "1"))
	if err := inv.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for capacity, got %v", err)
	}

	inv = NewInventory(decimal.NewFromInt(10))
	inv.Put(item("a", "1e-1000", "1"))
	if err := inv.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for size, got %v", err)
	}
}
