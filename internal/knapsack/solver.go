package knapsack

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// maxCells bounds the size of the tabulation (items × capacity slots).
const maxCells = 50_000_000

// ErrTableTooLarge is returned when the capacity/step ratio would require an
// unreasonably large table.
var ErrTableTooLarge = errors.New("knapsack table exceeds the supported size")

type tableSolver struct{}

// New creates a Solver that derives the step from the inventory sizes and
// tabulates the optimum.
func New() Solver {
	return &tableSolver{}
}

func (s *tableSolver) Solve(inv *Inventory) (Solution, error) {
	return Optimize(inv)
}

// Optimize derives the step for inv and solves it.
func Optimize(inv *Inventory) (Solution, error) {
	if inv == nil {
		return Solution{}, fmt.Errorf("%w: nil inventory", ErrInvalidInput)
	}
	step, err := DeriveStep(inv.Sizes())
	if err != nil {
		return Solution{}, err
	}
	return Solve(inv.Capacity(), step, inv.Items())
}

// Solve finds the subset of items with the highest total price whose total
// size fits in the largest multiple of step not exceeding capacity. Every item
// size must be an integer multiple of step. Rows are processed in item order
// and ties keep the subset recorded for the previous row, so the chosen
// subset is deterministic for a given item order.
func Solve(capacity, step decimal.Decimal, items []Item) (Solution, error) {
	if err := CheckMagnitude(capacity); err != nil {
		return Solution{}, fmt.Errorf("capacity: %w", err)
	}
	if err := CheckMagnitude(step); err != nil {
		return Solution{}, fmt.Errorf("step: %w", err)
	}
	if !capacity.IsPositive() {
		return Solution{}, fmt.Errorf("%w: capacity must be positive, got %s", ErrInvalidInput, capacity)
	}
	if !step.IsPositive() {
		return Solution{}, fmt.Errorf("%w: step must be positive, got %s", ErrInvalidInput, step)
	}

	names := make(map[string]struct{}, len(items))
	for _, item := range items {
		if err := validateItem(item); err != nil {
			return Solution{}, err
		}
		if _, dup := names[item.Name]; dup {
			return Solution{}, fmt.Errorf("%w: duplicate item name %q", ErrInvalidInput, item.Name)
		}
		names[item.Name] = struct{}{}
	}

	slotCount, _ := capacity.QuoRem(step, 0)
	sol := Solution{
		Items:          []string{},
		Score:          decimal.Zero,
		TotalSize:      decimal.Zero,
		Step:           step,
		Capacity:       capacity,
		UsableCapacity: step.Mul(slotCount),
	}
	if len(items) == 0 {
		return sol, nil
	}
	if slotCount.GreaterThan(decimal.NewFromInt(int64(maxCells / len(items)))) {
		return Solution{}, fmt.Errorf("%w: %d items over %s slots", ErrTableTooLarge, len(items), slotCount)
	}
	slots := int(slotCount.IntPart())

	units := make([]int, len(items))
	for i, item := range items {
		quotient, remainder := item.Size.QuoRem(step, 0)
		if !remainder.IsZero() {
			return Solution{}, fmt.Errorf("%w: item %q size %s is not a multiple of step %s", ErrInvalidInput, item.Name, item.Size, step)
		}
		// Anything wider than the whole table can never be taken.
		if quotient.GreaterThan(slotCount) {
			units[i] = slots + 1
			continue
		}
		units[i] = int(quotient.IntPart())
	}

	if slots == 0 {
		return sol, nil
	}

	// Column 0 is the empty slot; it always scores zero and lets the
	// "item fills the slot exactly" case share the general recurrence.
	taken := make([][]bool, len(items))
	prev := make([]decimal.Decimal, slots+1)
	for c := range prev {
		prev[c] = decimal.Zero
	}

	for i, item := range items {
		row := make([]decimal.Decimal, slots+1)
		row[0] = decimal.Zero
		taken[i] = make([]bool, slots+1)

		for c := 1; c <= slots; c++ {
			if units[i] > c {
				row[c] = prev[c]
				continue
			}
			if i == 0 {
				row[c] = item.Price
				taken[i][c] = true
				continue
			}
			candidate := item.Price.Add(prev[c-units[i]])
			if candidate.GreaterThan(prev[c]) {
				row[c] = candidate
				taken[i][c] = true
			} else {
				row[c] = prev[c]
			}
		}
		prev = row
	}

	sol.Score = prev[slots]
	sol.Cells = len(items) * slots

	for i, c := len(items)-1, slots; i >= 0; i-- {
		if !taken[i][c] {
			continue
		}
		sol.Items = append(sol.Items, items[i].Name)
		sol.TotalSize = sol.TotalSize.Add(items[i].Size)
		c -= units[i]
	}
	sort.Strings(sol.Items)

	return sol, nil
}
