package knapsack

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Inventory is an insertion-ordered set of items keyed by name together with
// the total capacity available. Re-inserting an existing name replaces the
// item but keeps its original position.
type Inventory struct {
	capacity decimal.Decimal
	order    []string
	items    map[string]Item
}

// NewInventory creates an empty inventory with the given capacity.
func NewInventory(capacity decimal.Decimal) *Inventory {
	return &Inventory{
		capacity: capacity,
		items:    make(map[string]Item),
	}
}

// Capacity returns the total capacity of the knapsack.
func (inv *Inventory) Capacity() decimal.Decimal {
	return inv.capacity
}

// SetCapacity replaces the total capacity.
func (inv *Inventory) SetCapacity(capacity decimal.Decimal) {
	inv.capacity = capacity
}

// Put stores item, overwriting any earlier item with the same name.
func (inv *Inventory) Put(item Item) {
	if inv.items == nil {
		inv.items = make(map[string]Item)
	}
	if _, ok := inv.items[item.Name]; !ok {
		inv.order = append(inv.order, item.Name)
	}
	inv.items[item.Name] = item
}

// Get returns the item stored under name.
func (inv *Inventory) Get(name string) (Item, bool) {
	item, ok := inv.items[name]
	return item, ok
}

// Len reports the number of distinct items.
func (inv *Inventory) Len() int {
	return len(inv.order)
}

// Items returns the items in insertion order.
func (inv *Inventory) Items() []Item {
	out := make([]Item, 0, len(inv.order))
	for _, name := range inv.order {
		out = append(out, inv.items[name])
	}
	return out
}

// Sizes returns the size of every item in insertion order.
func (inv *Inventory) Sizes() []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(inv.order))
	for _, name := range inv.order {
		out = append(out, inv.items[name].Size)
	}
	return out
}

// Clone returns an independent copy of the inventory.
func (inv *Inventory) Clone() *Inventory {
	out := NewInventory(inv.capacity)
	for _, item := range inv.Items() {
		out.Put(item)
	}
	return out
}

// Validate checks that the inventory can be handed to the solver.
func (inv *Inventory) Validate() error {
	if err := CheckMagnitude(inv.capacity); err != nil {
		return err
	}
	if !inv.capacity.IsPositive() {
		return fmt.Errorf("%w: capacity must be positive, got %s", ErrInvalidInput, inv.capacity)
	}
	if inv.Len() == 0 {
		return fmt.Errorf("%w: inventory has no items", ErrInvalidInput)
	}
	for _, item := range inv.Items() {
		if err := validateItem(item); err != nil {
			return err
		}
		if !item.Size.IsPositive() {
			return fmt.Errorf("%w: item %q size must be positive, got %s", ErrInvalidInput, item.Name, item.Size)
		}
	}
	return nil
}

func validateItem(item Item) error {
	if err := CheckMagnitude(item.Size); err != nil {
		return fmt.Errorf("item %q size: %w", item.Name, err)
	}
	if err := CheckMagnitude(item.Price); err != nil {
		return fmt.Errorf("item %q price: %w", item.Name, err)
	}
	if item.Size.IsNegative() {
		return fmt.Errorf("%w: item %q has negative size %s", ErrInvalidInput, item.Name, item.Size)
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("%w: item %q has negative price %s", ErrInvalidInput, item.Name, item.Price)
	}
	return nil
}
