package knapsack

import "errors"

// ErrInvalidInput is returned when an inventory, capacity, step or item
// violates the solver's preconditions. Callers receive it wrapped with detail.
var ErrInvalidInput = errors.New("invalid knapsack input")
