package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eugenenazirov/decimal-knapsack/internal/inventory"
	"github.com/eugenenazirov/decimal-knapsack/internal/knapsack"
	"github.com/eugenenazirov/decimal-knapsack/internal/logging"
	"github.com/eugenenazirov/decimal-knapsack/internal/report"
)

const (
	formatAuto = "auto"
	formatText = "text"
	formatYAML = "yaml"
)

var newLogger = logging.NewCLI

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		logger, logErr := logging.NewCLI(false)
		if logErr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Fatal("knapsack failed", zap.Error(err))
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	app := kingpin.New("knapsack", "Selects the most valuable items that fit a decimal capacity")
	app.UsageWriter(stdout)
	verbose := app.Flag("verbose", "Log solver details to stderr").Short('v').Bool()

	solveCmd := app.Command("solve", "Solve an inventory and print the chosen items").Default()
	solveFile := solveCmd.Arg("file", "Inventory file, standard input when omitted or \"-\"").String()
	solveFormat := solveCmd.Flag("format", "Inventory format").Default(formatAuto).Enum(formatAuto, formatText, formatYAML)

	stepCmd := app.Command("step", "Print the largest step that divides every size")
	stepSizes := stepCmd.Arg("size", "Item sizes").Required().Strings()

	command, err := app.Parse(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	switch command {
	case stepCmd.FullCommand():
		return runStep(*stepSizes, stdout)
	default:
		return runSolve(*solveFile, *solveFormat, stdin, stdout, logger)
	}
}

func runSolve(path, format string, stdin io.Reader, stdout io.Writer, logger *zap.Logger) error {
	inv, err := readInventory(path, format, stdin)
	if err != nil {
		return err
	}
	logger.Debug("inventory read",
		zap.String("source", sourceName(path)),
		zap.Int("items", inv.Len()),
		zap.String("capacity", inv.Capacity().String()),
	)

	sol, err := knapsack.Optimize(inv)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	logger.Debug("knapsack solved",
		zap.String("step", sol.Step.String()),
		zap.String("usable_capacity", sol.UsableCapacity.String()),
		zap.Int("cells", sol.Cells),
		zap.String("score", sol.Score.String()),
	)

	return report.Render(stdout, inv, sol)
}

func readInventory(path, format string, stdin io.Reader) (*knapsack.Inventory, error) {
	if path == "-" {
		path = ""
	}
	if path != "" && format == formatAuto {
		return inventory.Load(path)
	}

	r := stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open inventory: %w", err)
		}
		defer f.Close()
		r = f
	}

	if format == formatYAML {
		return inventory.ParseYAML(r)
	}
	return inventory.ParseText(r)
}

func runStep(raw []string, stdout io.Writer) error {
	sizes := make([]decimal.Decimal, 0, len(raw))
	for _, s := range raw {
		size, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", s, err)
		}
		sizes = append(sizes, size)
	}

	step, err := knapsack.DeriveStep(sizes)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, step.String())
	return err
}

func sourceName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
