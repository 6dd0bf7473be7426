package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/decimal-knapsack/internal/knapsack"
)

// maxItems caps how many items a stored inventory may hold.
const maxItems = 10_000

var (
	// ErrInvalidInventory indicates the provided inventory violates validation rules.
	ErrInvalidInventory = errors.New("inventory must have a positive capacity and between 1 and 10000 valid items")
)

// Storage provides access to the inventory solved by default.
type Storage interface {
	GetInventory() (*knapsack.Inventory, error)
	SetInventory(inv *knapsack.Inventory) error
}

// MemoryStorage keeps the inventory in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu        sync.RWMutex
	inventory *knapsack.Inventory
}

// NewMemoryStorage initialises storage with an empty inventory.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		inventory: knapsack.NewInventory(decimal.Zero),
	}
}

// GetInventory returns a copy of the stored inventory.
func (s *MemoryStorage) GetInventory() (*knapsack.Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.inventory.Clone(), nil
}

// SetInventory validates and stores a copy of inv.
func (s *MemoryStorage) SetInventory(inv *knapsack.Inventory) error {
	if err := validateInventory(inv); err != nil {
		return err
	}
	clone := inv.Clone()

	s.mu.Lock()
	s.inventory = clone
	s.mu.Unlock()

	return nil
}

func validateInventory(inv *knapsack.Inventory) error {
	if inv == nil {
		return ErrInvalidInventory
	}
	if inv.Len() > maxItems {
		return fmt.Errorf("%w: got %d items", ErrInvalidInventory, inv.Len())
	}
	if err := inv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInventory, err)
	}
	return nil
}
