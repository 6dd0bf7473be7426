package knapsack

import "github.com/shopspring/decimal"

// Item is a single candidate for the knapsack.
type Item struct {
	Name  string
	Size  decimal.Decimal
	Price decimal.Decimal
}

// Solution is the optimum found for one inventory.
// Items holds the chosen names sorted lexically; UsableCapacity is the
// largest capacity slot, which may be below Capacity when it is not a
// multiple of Step.
type Solution struct {
	Items          []string
	Score          decimal.Decimal
	TotalSize      decimal.Decimal
	Step           decimal.Decimal
	Capacity       decimal.Decimal
	UsableCapacity decimal.Decimal
	Cells          int
}

// Solver describes the behaviour required from a knapsack solver.
type Solver interface {
	Solve(inv *Inventory) (Solution, error)
}
