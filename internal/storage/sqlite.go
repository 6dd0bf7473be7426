package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/eugenenazirov/decimal-knapsack/internal/knapsack"
)

const capacityKey = "capacity"

// SQLiteStorage keeps the inventory in a SQLite database so it survives
// restarts. Decimals are stored as their canonical string form.
type SQLiteStorage struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStorage{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("apply %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			position INTEGER NOT NULL,
			name TEXT PRIMARY KEY,
			size TEXT NOT NULL,
			price TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// GetInventory loads the stored inventory. An empty database yields an empty
// inventory with zero capacity.
func (s *SQLiteStorage) GetInventory() (*knapsack.Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	capacity := decimal.Zero
	var raw string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, capacityKey).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("load capacity: %w", err)
	default:
		if capacity, err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("decode capacity %q: %w", raw, err)
		}
	}

	rows, err := s.db.Query(`SELECT name, size, price FROM items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	inv := knapsack.NewInventory(capacity)
	for rows.Next() {
		var name, size, price string
		if err := rows.Scan(&name, &size, &price); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item := knapsack.Item{Name: name}
		if item.Size, err = decimal.NewFromString(size); err != nil {
			return nil, fmt.Errorf("decode size of %q: %w", name, err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("decode price of %q: %w", name, err)
		}
		inv.Put(item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return inv, nil
}

// SetInventory validates inv and replaces the stored inventory in a single
// transaction.
func (s *SQLiteStorage) SetInventory(inv *knapsack.Inventory) error {
	if err := validateInventory(inv); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec(`INSERT INTO meta(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, capacityKey, inv.Capacity().String()); err != nil {
		return fmt.Errorf("store capacity: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO items(position, name, size, price) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for pos, item := range inv.Items() {
		if _, err := stmt.Exec(pos, item.Name, item.Size.String(), item.Price.String()); err != nil {
			return fmt.Errorf("store item %q: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
