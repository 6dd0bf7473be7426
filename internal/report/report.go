// Package report renders a knapsack solution as a plain text table.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/decimal-knapsack/internal/knapsack"
)

const (
	nameWidth  = 10
	sizeWidth  = 8
	priceWidth = 10
	ruleWidth  = 40
)

// Row is one chosen item in the report.
type Row struct {
	Name  string
	Size  decimal.Decimal
	Price decimal.Decimal
}

// Rows resolves the chosen names of sol against inv, keeping the name order
// of the solution. Names missing from the inventory are skipped.
func Rows(inv *knapsack.Inventory, sol knapsack.Solution) []Row {
	rows := make([]Row, 0, len(sol.Items))
	for _, name := range sol.Items {
		item, ok := inv.Get(name)
		if !ok {
			continue
		}
		rows = append(rows, Row{Name: item.Name, Size: item.Size, Price: item.Price})
	}
	return rows
}

// Render writes the report for sol: one row per chosen item sorted by name,
// followed by the total volume and score.
func Render(w io.Writer, inv *knapsack.Inventory, sol knapsack.Solution) error {
	rows := Rows(inv, sol)
	rule := strings.Repeat("-", ruleWidth)

	volume, score := decimal.Zero, decimal.Zero
	var b strings.Builder
	fmt.Fprintf(&b, "Items in knapsack of capacity %q:\n", inv.Capacity().String())
	fmt.Fprintf(&b, "\t%s| %*s | %*s |\n", center("Item", nameWidth), sizeWidth-2, "size", priceWidth-2, "price")
	b.WriteString(rule + "\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "\t%-*s|%*s|%*s|\n", nameWidth, row.Name, sizeWidth, row.Size, priceWidth, row.Price)
		volume = volume.Add(row.Size)
		score = score.Add(row.Price)
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "\t%-*s|%*s|%*s|\n", nameWidth, "TOTAL", sizeWidth, volume, priceWidth, score)
	fmt.Fprintf(&b, "step %s, usable capacity %s\n", sol.Step, sol.UsableCapacity)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
