package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/tally/internal/model"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleBudgets() []model.Budget {
	return []model.Budget{
		{
			ID: 1, Month: 1, Year: 2024, IncomeCents: 500000,
			Categories: []model.BudgetCategory{
				{ID: 10, BudgetID: 1, Name: "Rent", AllocatedCents: 300000, Order: 0, IsActive: 1},
				{ID: 11, BudgetID: 1, Name: "Food", AllocatedCents: 200000, Order: 1, CategoryGroup: "Living", IsActive: 1},
			},
		},
		{
			ID: 2, Month: 2, Year: 2024, IncomeCents: 400000,
			Categories: []model.BudgetCategory{
				{ID: 20, BudgetID: 2, Name: "Rent", AllocatedCents: 300000, IsActive: 1},
			},
		},
	}
}

func TestMigrationsApplied(t *testing.T) {
	c := openTemp(t)
	v, err := c.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 2 {
		t.Errorf("version = %d, want 2", v)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.SaveBudgets(sampleBudgets()); err != nil {
		t.Fatalf("SaveBudgets: %v", err)
	}
	_ = c.Close()

	c, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = c.Close() }()
	n, err := c.BudgetCount()
	if err != nil {
		t.Fatalf("BudgetCount: %v", err)
	}
	if n != 2 {
		t.Errorf("BudgetCount = %d, want 2", n)
	}
}

func TestSaveLoadBudgets(t *testing.T) {
	c := openTemp(t)
	if err := c.SaveBudgets(sampleBudgets()); err != nil {
		t.Fatalf("SaveBudgets: %v", err)
	}

	got, err := c.LoadBudgets()
	if err != nil {
		t.Fatalf("LoadBudgets: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// newest period first
	if got[0].ID != 2 || got[1].ID != 1 {
		t.Errorf("order = %d,%d, want 2,1", got[0].ID, got[1].ID)
	}
	if len(got[1].Categories) != 2 {
		t.Fatalf("budget 1 categories = %d, want 2", len(got[1].Categories))
	}
	food := got[1].Categories[1]
	if food.Name != "Food" || food.CategoryGroup != "Living" || !food.Active() {
		t.Errorf("food = %+v", food)
	}

	// A second save replaces the set.
	if err := c.SaveBudgets(sampleBudgets()[:1]); err != nil {
		t.Fatalf("SaveBudgets: %v", err)
	}
	got, err = c.LoadBudgets()
	if err != nil {
		t.Fatalf("LoadBudgets: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("after replace = %+v", got)
	}
	cats, err := c.LoadCategories(2)
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("stale categories for budget 2: %d", len(cats))
	}
}

func TestSaveCategories(t *testing.T) {
	c := openTemp(t)
	if err := c.SaveBudgets(sampleBudgets()); err != nil {
		t.Fatalf("SaveBudgets: %v", err)
	}

	cats := []model.BudgetCategory{
		{ID: 12, Name: "Fun", AllocatedCents: 50000, Order: 2, IsActive: 1},
		{ID: 10, Name: "Rent", AllocatedCents: 300000, Order: 0, IsActive: 1},
	}
	if err := c.SaveCategories(1, cats); err != nil {
		t.Fatalf("SaveCategories: %v", err)
	}
	got, err := c.LoadCategories(1)
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "Rent" || got[1].Name != "Fun" {
		t.Errorf("order = %s,%s, want Rent,Fun", got[0].Name, got[1].Name)
	}
	if got[1].BudgetID != 1 {
		t.Errorf("BudgetID = %d, want 1", got[1].BudgetID)
	}

	other, err := c.LoadCategories(2)
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	if len(other) != 1 {
		t.Errorf("budget 2 categories touched: %d", len(other))
	}
}

func TestSyncState(t *testing.T) {
	c := openTemp(t)

	if _, ok, err := c.GetState("missing"); err != nil || ok {
		t.Fatalf("GetState(missing) = ok %v, err %v", ok, err)
	}
	last, err := c.LastSync()
	if err != nil {
		t.Fatalf("LastSync: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("LastSync before any save = %v", last)
	}

	if err := c.SetState("theme", "tokyo-night"); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	v, ok, err := c.GetState("theme")
	if err != nil || !ok || v != "tokyo-night" {
		t.Errorf("GetState = %q, %v, %v", v, ok, err)
	}

	before := time.Now().Add(-time.Second)
	if err := c.SaveBudgets(sampleBudgets()); err != nil {
		t.Fatalf("SaveBudgets: %v", err)
	}
	last, err = c.LastSync()
	if err != nil {
		t.Fatalf("LastSync: %v", err)
	}
	if last.Before(before) {
		t.Errorf("LastSync = %v, want after %v", last, before)
	}
}

func TestSnapshots(t *testing.T) {
	c := openTemp(t)

	if _, ok, err := c.LatestSnapshot(); err != nil || ok {
		t.Fatalf("LatestSnapshot on empty = ok %v, err %v", ok, err)
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		err := c.SaveSnapshot(SnapshotRow{
			TakenAt:          base.Add(time.Duration(i) * time.Minute),
			BudgetCount:      i + 1,
			TotalIncomeCents: int64(i) * 1000,
		}, 3)
		if err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}

	n, err := c.SnapshotCount()
	if err != nil {
		t.Fatalf("SnapshotCount: %v", err)
	}
	if n != 3 {
		t.Errorf("SnapshotCount = %d, want 3", n)
	}
	s, ok, err := c.LatestSnapshot()
	if err != nil || !ok {
		t.Fatalf("LatestSnapshot: ok %v, err %v", ok, err)
	}
	if s.BudgetCount != 5 || s.TotalIncomeCents != 4000 {
		t.Errorf("latest = %+v", s)
	}
	if !s.TakenAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("TakenAt = %v", s.TakenAt)
	}
}
