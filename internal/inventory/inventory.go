package inventory

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/decimal-knapsack/internal/knapsack"
)

// ErrMalformed is returned when an inventory source cannot be parsed.
var ErrMalformed = errors.New("malformed inventory")

// ParseText reads the plain text format: the first non-blank line holds the
// capacity and every following line holds "name size price". Lines starting
// with '#' are ignored. A repeated name replaces the earlier item.
func ParseText(r io.Reader) (*knapsack.Inventory, error) {
	scanner := bufio.NewScanner(r)
	var inv *knapsack.Inventory
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if inv == nil {
			capacity, err := parseDecimal(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid capacity %q: %v", ErrMalformed, lineNo, line, err)
			}
			inv = knapsack.NewInventory(capacity)
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: line %d: expected \"name size price\", got %d fields", ErrMalformed, lineNo, len(fields))
		}
		item, err := newItem(fields[0], fields[1], fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		inv.Put(item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: missing capacity", ErrMalformed)
	}

	return inv, nil
}

// yamlInventory represents the YAML inventory file structure.
type yamlInventory struct {
	Capacity yamlDecimal `yaml:"capacity"`
	Items    []yamlItem  `yaml:"items"`
}

type yamlItem struct {
	Name  string      `yaml:"name"`
	Size  yamlDecimal `yaml:"size"`
	Price yamlDecimal `yaml:"price"`
}

// yamlDecimal parses the literal scalar text so values never pass through
// float64.
type yamlDecimal struct {
	set   bool
	value decimal.Decimal
}

func (d *yamlDecimal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a decimal scalar", node.Line)
	}
	value, err := parseDecimal(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: invalid decimal %q: %v", node.Line, node.Value, err)
	}
	d.set = true
	d.value = value
	return nil
}

// ParseYAML reads an inventory of the form
//
//	capacity: 10
//	items:
//	  - {name: A, size: 5, price: 10}
func ParseYAML(r io.Reader) (*knapsack.Inventory, error) {
	var doc yamlInventory
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !doc.Capacity.set {
		return nil, fmt.Errorf("%w: missing capacity", ErrMalformed)
	}

	inv := knapsack.NewInventory(doc.Capacity.value)
	for idx, it := range doc.Items {
		if it.Name == "" {
			return nil, fmt.Errorf("%w: item %d has no name", ErrMalformed, idx)
		}
		if !it.Size.set || !it.Price.set {
			return nil, fmt.Errorf("%w: item %q needs both size and price", ErrMalformed, it.Name)
		}
		inv.Put(knapsack.Item{Name: it.Name, Size: it.Size.value, Price: it.Price.value})
	}
	return inv, nil
}

// Load reads an inventory file, choosing the YAML parser for .yaml and .yml
// files and the text parser otherwise.
func Load(path string) (*knapsack.Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f)
	default:
		return ParseText(f)
	}
}

func newItem(name, rawSize, rawPrice string) (knapsack.Item, error) {
	size, err := parseDecimal(rawSize)
	if err != nil {
		return knapsack.Item{}, fmt.Errorf("%w: item %q has invalid size %q: %v", ErrMalformed, name, rawSize, err)
	}
	price, err := parseDecimal(rawPrice)
	if err != nil {
		return knapsack.Item{}, fmt.Errorf("%w: item %q has invalid price %q: %v", ErrMalformed, name, rawPrice, err)
	}
	return knapsack.Item{Name: name, Size: size, Price: price}, nil
}

// parseDecimal parses raw and rejects values outside the solver's magnitude
// bounds.
func parseDecimal(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if err := knapsack.CheckMagnitude(value); err != nil {
		return decimal.Zero, err
	}
	return value, nil
}
