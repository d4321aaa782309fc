// Package store provides a SQLite-backed offline snapshot of budget data.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/tally/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// KeyBudgetsSynced records when the budget set was last replaced.
const KeyBudgetsSynced = "budgets_synced_at"

// Cache provides SQLite-backed budget caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path and brings
// its schema up to date.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	if err := migrateUp(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveBudgets replaces the cached budget set, categories included.
func (c *Cache) SaveBudgets(budgets []model.Budget) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM categories"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM budgets"); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, b := range budgets {
		_, err = tx.Exec(`INSERT INTO budgets
			(id, user_id, month, year, income_cents, created_at, updated_at, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.UserID, b.Month, b.Year, b.IncomeCents, b.CreatedAt, b.UpdatedAt, now,
		)
		if err != nil {
			return fmt.Errorf("saving budget %d: %w", b.ID, err)
		}
		if err := insertCategories(tx, b.ID, b.Categories); err != nil {
			return err
		}
	}

	if err := setState(tx, KeyBudgetsSynced, now); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadBudgets reads all cached budgets, newest period first.
func (c *Cache) LoadBudgets() ([]model.Budget, error) {
	rows, err := c.db.Query(`SELECT id, user_id, month, year, income_cents, created_at, updated_at
		FROM budgets ORDER BY year DESC, month DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		var created, updated sql.NullString
		if err := rows.Scan(&b.ID, &b.UserID, &b.Month, &b.Year, &b.IncomeCents, &created, &updated); err != nil {
			return nil, err
		}
		b.CreatedAt = created.String
		b.UpdatedAt = updated.String
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Batch-load categories
	all, err := c.queryCategories("SELECT "+categoryCols+" FROM categories ORDER BY budget_id, sort_order, id")
	if err != nil {
		return nil, err
	}
	idx := make(map[int64]int, len(budgets))
	for i, b := range budgets {
		idx[b.ID] = i
	}
	for _, cat := range all {
		if i, ok := idx[cat.BudgetID]; ok {
			budgets[i].Categories = append(budgets[i].Categories, cat)
		}
	}
	return budgets, nil
}

// SaveCategories replaces one budget's cached categories. The budget row
// must already exist.
func (c *Cache) SaveCategories(budgetID int64, cats []model.BudgetCategory) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM categories WHERE budget_id = ?", budgetID); err != nil {
		return err
	}
	if err := insertCategories(tx, budgetID, cats); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadCategories reads one budget's cached categories in display order.
func (c *Cache) LoadCategories(budgetID int64) ([]model.BudgetCategory, error) {
	return c.queryCategories("SELECT "+categoryCols+" FROM categories WHERE budget_id = ? ORDER BY sort_order, id", budgetID)
}

// BudgetCount returns the number of cached budgets.
func (c *Cache) BudgetCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM budgets").Scan(&count)
	return count, err
}

const categoryCols = `id, budget_id, name, allocated_cents, spent_cents, sort_order,
	description, category_group, is_active, created_at, updated_at`

func insertCategories(tx *sql.Tx, budgetID int64, cats []model.BudgetCategory) error {
	for _, cat := range cats {
		_, err := tx.Exec(`INSERT OR REPLACE INTO categories (`+categoryCols+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cat.ID, budgetID, cat.Name, cat.AllocatedCents, cat.SpentCents, cat.Order,
			cat.Description, cat.CategoryGroup, cat.IsActive, cat.CreatedAt, cat.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("saving category %d: %w", cat.ID, err)
		}
	}
	return nil
}

func (c *Cache) queryCategories(query string, args ...any) ([]model.BudgetCategory, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cats []model.BudgetCategory
	for rows.Next() {
		var cat model.BudgetCategory
		var desc, group, created, updated sql.NullString
		err := rows.Scan(&cat.ID, &cat.BudgetID, &cat.Name, &cat.AllocatedCents, &cat.SpentCents, &cat.Order,
			&desc, &group, &cat.IsActive, &created, &updated)
		if err != nil {
			return nil, err
		}
		cat.Description = desc.String
		cat.CategoryGroup = group.String
		cat.CreatedAt = created.String
		cat.UpdatedAt = updated.String
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// SetState stores a sync key/value pair.
func (c *Cache) SetState(key, value string) error {
	return setState(c.db, key, value)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setState(db execer, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO sync_state (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetState returns a sync value. ok is false when the key is unset.
func (c *Cache) GetState(key string) (value string, ok bool, err error) {
	err = c.db.QueryRow("SELECT value FROM sync_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// LastSync returns when budgets were last saved, or the zero time.
func (c *Cache) LastSync() (time.Time, error) {
	v, ok, err := c.GetState(KeyBudgetsSynced)
	if err != nil || !ok {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing last sync: %w", err)
	}
	return t, nil
}
