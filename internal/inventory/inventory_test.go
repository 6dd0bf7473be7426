package inventory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/decimal-knapsack/internal/knapsack"
)

func itemNames(inv *knapsack.Inventory) []string {
	var out []string
	for _, it := range inv.Items() {
		out = append(out, it.Name)
	}
	return out
}

func TestParseText(t *testing.T) {
	t.Parallel()

	input := `10

# name size price
A 5 10
B	4	40
C 6 30.50
A 2 1
`
	inv, err := ParseText(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !inv.Capacity().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected capacity 10, got %s", inv.Capacity())
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, itemNames(inv)); diff != "" {
		t.Fatalf("unexpected items (-want +got):\n%s", diff)
	}
	a, _ := inv.Get("A")
	if !a.Size.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected later A to overwrite earlier one, got size %s", a.Size)
	}
	c, _ := inv.Get("C")
	if !c.Price.Equal(decimal.RequireFromString("30.5")) {
		t.Fatalf("expected price 30.5, got %s", c.Price)
	}
}

func TestParseTextErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":        "",
		"onlyComments": "# nothing here\n",
		"badCapacity":  "ten\nA 1 1\n",
		"tooFewFields": "10\nA 1\n",
		"tooManyField": "10\nA 1 2 3\n",
		"badSize":      "10\nA x 1\n",
		"badPrice":     "10\nA 1 y\n",
		"tinySize":     "10\nA 1e-10000000 1\n",
		"hugeCapacity": "1e99\nA 1 1\n",
	}

	for name, input := range cases {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseText(strings.NewReader(input)); !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	input := `capacity: "3.7"
items:
  - name: a
    size: 1.5
    price: "2.25"
  - {name: b, size: 2.5, price: 4}
  - {name: c, size: 0.1, price: 0.30}
`
	inv, err := ParseYAML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inv.Capacity().Equal(decimal.RequireFromString("3.7")) {
		t.Fatalf("expected capacity 3.7, got %s", inv.Capacity())
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, itemNames(inv)); diff != "" {
		t.Fatalf("unexpected items (-want +got):\n%s", diff)
	}
	c, _ := inv.Get("c")
	if c.Size.String() != "0.1" || !c.Price.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("expected exact decimals, got size %s price %s", c.Size, c.Price)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":           "",
		"missingCapacity": "items: []\n",
		"badCapacity":     "capacity: lots\n",
		"missingName":     "capacity: 1\nitems:\n  - {size: 1, price: 1}\n",
		"missingPrice":    "capacity: 1\nitems:\n  - {name: a, size: 1}\n",
		"nonScalarSize":   "capacity: 1\nitems:\n  - {name: a, size: [1], price: 1}\n",
		"tinyPrice":       "capacity: 1\nitems:\n  - {name: a, size: 1, price: 1e-100}\n",
	}

	for name, input := range cases {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseYAML(strings.NewReader(input)); !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestLoadSelectsParserByExtension(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(textPath, []byte("3\nX 1 1\nY 1 1\n"), 0o600); err != nil {
		t.Fatalf("write text fixture: %v", err)
	}
	yamlPath := filepath.Join(dir, "input.yml")
	if err := os.WriteFile(yamlPath, []byte("capacity: 3\nitems:\n  - {name: X, size: 1, price: 1}\n"), 0o600); err != nil {
		t.Fatalf("write yaml fixture: %v", err)
	}

	inv, err := Load(textPath)
	if err != nil {
		t.Fatalf("Load text returned error: %v", err)
	}
	if inv.Len() != 2 {
		t.Fatalf("expected 2 items from text file, got %d", inv.Len())
	}

	inv, err = Load(yamlPath)
	if err != nil {
		t.Fatalf("Load yaml returned error: %v", err)
	}
	if inv.Len() != 1 {
		t.Fatalf("expected 1 item from yaml file, got %d", inv.Len())
	}

	if _, err := Load(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
