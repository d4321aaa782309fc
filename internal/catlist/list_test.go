package catlist

import (
	"errors"
	"strings"
	"testing"

	"github.com/theirongolddev/tally/internal/model"
)

func sample() []model.BudgetCategory {
	return []model.BudgetCategory{
		{ID: 1, Name: "Rent", AllocatedCents: 150000, Order: 2, CategoryGroup: "Housing", IsActive: 1},
		{ID: 2, Name: "groceries", AllocatedCents: 60000, Order: 1, CategoryGroup: "Food", IsActive: 1},
		{ID: 3, Name: "Dining Out", AllocatedCents: 20000, Order: 4, CategoryGroup: "Food", IsActive: 1},
		{ID: 4, Name: "Gym", AllocatedCents: 5000, Order: 3, IsActive: 1},
		{ID: 5, Name: "Old Hobby", AllocatedCents: 1000, Order: 5, IsActive: 0},
		{ID: 6, Name: "Utilities", AllocatedCents: 20000, Order: 0, CategoryGroup: "Housing", IsActive: 1},
		{ID: 7, Name: "Misc", AllocatedCents: 3000, Order: 6, CategoryGroup: "  ", IsActive: 1},
	}
}

func ids(cats []model.BudgetCategory) []int64 {
	out := make([]int64, len(cats))
	for i, c := range cats {
		out[i] = c.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter(t *testing.T) {
	cats := sample()

	all := Filter(cats, "")
	if len(all) != 6 {
		t.Fatalf("empty search kept %d, want 6 active", len(all))
	}
	for _, c := range all {
		if c.IsActive != 1 {
			t.Errorf("inactive category %q kept", c.Name)
		}
	}

	for _, term := range []string{"O", "out", "RENT", "zzz"} {
		got := Filter(cats, term)
		for _, c := range got {
			if !strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) {
				t.Errorf("Filter(%q) kept %q", term, c.Name)
			}
		}
		// Every active match must be present.
		want := 0
		for _, c := range cats {
			if c.IsActive == 1 && strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) {
				want++
			}
		}
		if len(got) != want {
			t.Errorf("Filter(%q) = %d items, want %d", term, len(got), want)
		}
	}
}

func TestSortOrderedAndIdempotent(t *testing.T) {
	cats := Filter(sample(), "")
	for _, key := range SortKeys {
		for _, desc := range []bool{false, true} {
			once := Sort(cats, key, desc)
			for i := 1; i < len(once); i++ {
				a, b := once[i-1], once[i]
				if desc {
					a, b = b, a
				}
				if less(b, a, key) {
					t.Errorf("key=%s desc=%v out of order at %d: %q before %q", key, desc, i, once[i-1].Name, once[i].Name)
				}
			}
			twice := Sort(once, key, desc)
			if !equalIDs(ids(once), ids(twice)) {
				t.Errorf("key=%s desc=%v not idempotent: %v vs %v", key, desc, ids(once), ids(twice))
			}
		}
	}
}

func TestSortStableTies(t *testing.T) {
	cats := []model.BudgetCategory{
		{ID: 1, AllocatedCents: 100},
		{ID: 2, AllocatedCents: 100},
		{ID: 3, AllocatedCents: 50},
	}
	if got := ids(Sort(cats, SortAllocated, true)); !equalIDs(got, []int64{1, 2, 3}) {
		t.Errorf("desc ties reordered: %v", got)
	}
	if got := ids(Sort(cats, SortAllocated, false)); !equalIDs(got, []int64{3, 1, 2}) {
		t.Errorf("asc ties reordered: %v", got)
	}
}

func TestGroupPartitions(t *testing.T) {
	filtered := Filter(sample(), "")
	groups := Group(filtered, nil)

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	if strings.Join(names, ",") != "Housing,Food,Ungrouped" {
		t.Errorf("group order = %v", names)
	}

	seen := map[int64]int{}
	for _, g := range groups {
		var sum int64
		for _, c := range g.Categories {
			seen[c.ID]++
			sum += c.AllocatedCents
		}
		if sum != g.TotalAllocatedCents {
			t.Errorf("group %s total %d, children sum %d", g.Name, g.TotalAllocatedCents, sum)
		}
		if g.Count != len(g.Categories) {
			t.Errorf("group %s count %d, len %d", g.Name, g.Count, len(g.Categories))
		}
	}
	if len(seen) != len(filtered) {
		t.Errorf("grouped %d categories, filtered %d", len(seen), len(filtered))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("category %d appears %d times", id, n)
		}
	}
}

func TestCollapseKeepsData(t *testing.T) {
	l := New(Options{SortBy: SortOrder, GroupBy: GroupCategory}, Callbacks{})
	l.SetCategories(sample())

	before := l.Items()
	var housingBefore []int64
	for _, it := range before {
		if it.Kind == ItemCategory && it.Category.CategoryGroup == "Housing" {
			housingBefore = append(housingBefore, it.Category.ID)
		}
	}
	if len(housingBefore) != 2 {
		t.Fatalf("expected 2 housing rows, got %v", housingBefore)
	}

	l.ToggleGroup("Housing")
	if !l.IsCollapsed("Housing") {
		t.Fatal("Housing not collapsed")
	}
	if l.Len() != len(before)-2 {
		t.Errorf("collapsed len = %d, want %d", l.Len(), len(before)-2)
	}
	for _, it := range l.Items() {
		if it.Kind == ItemCategory && it.Category.CategoryGroup == "Housing" {
			t.Errorf("collapsed child %q still listed", it.Category.Name)
		}
	}
	if len(l.Filtered()) != 6 {
		t.Errorf("collapse changed data: %d", len(l.Filtered()))
	}

	l.ToggleGroup("Housing")
	var housingAfter []int64
	for _, it := range l.Items() {
		if it.Kind == ItemCategory && it.Category.CategoryGroup == "Housing" {
			housingAfter = append(housingAfter, it.Category.ID)
		}
	}
	if !equalIDs(housingBefore, housingAfter) {
		t.Errorf("expand order %v, want %v", housingAfter, housingBefore)
	}
	if l.Len() != len(before) {
		t.Errorf("expanded len = %d, want %d", l.Len(), len(before))
	}
}

func TestFlatItemsAndEmptyMessage(t *testing.T) {
	l := New(DefaultOptions(), Callbacks{})
	if l.EmptyMessage() != "No categories found" {
		t.Errorf("got %q", l.EmptyMessage())
	}
	l.SetCategories(sample())
	if l.Len() != 6 {
		t.Fatalf("flat len = %d", l.Len())
	}
	if l.Items()[0].Category.Name != "Utilities" {
		t.Errorf("first by order = %q", l.Items()[0].Category.Name)
	}
	l.SetOptions(Options{Search: "nothing", SortBy: SortName})
	if l.Len() != 0 || l.EmptyMessage() != "No categories match your search" {
		t.Errorf("len=%d msg=%q", l.Len(), l.EmptyMessage())
	}
}

func TestRowView(t *testing.T) {
	tests := []struct {
		alloc, spent int64
		progress     float64
		tone         Tone
		over         bool
	}{
		{0, 500, 0, ToneOK, true},
		{1000, 500, 50, ToneOK, false},
		{1000, 950, 95, ToneWarning, false},
		{1000, 1500, 100, ToneOver, true},
	}
	for _, tt := range tests {
		r := RowView(model.BudgetCategory{AllocatedCents: tt.alloc}, tt.spent)
		if r.Progress != tt.progress || r.Tone != tt.tone || r.OverBudget != tt.over {
			t.Errorf("RowView(%d, %d) = %+v", tt.alloc, tt.spent, r)
		}
		if r.RemainingCents != tt.alloc-tt.spent {
			t.Errorf("remaining = %d", r.RemainingCents)
		}
	}
}

func TestInlineEdit(t *testing.T) {
	var updated []model.CategoryUpdate
	var deleted []int64
	l := New(DefaultOptions(), Callbacks{
		OnCategoryUpdate: func(id int64, u model.CategoryUpdate) error {
			updated = append(updated, u)
			return nil
		},
		OnCategoryDelete: func(id int64) error {
			deleted = append(deleted, id)
			return nil
		},
	})
	l.SetCategories(sample())

	if err := l.BeginEdit(1); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable, got %v", err)
	}
	l.Editable = true

	if err := l.BeginEdit(1); err != nil {
		t.Fatal(err)
	}
	if err := l.BeginEdit(2); err != nil {
		t.Fatal(err)
	}
	p, _ := l.Pending(1)
	if p.Text != "1500.00" {
		t.Errorf("seed text = %q", p.Text)
	}

	if err := l.SetPending(1, "1234.565"); err != nil {
		t.Fatal(err)
	}
	if err := l.SaveEdit(1); err != nil {
		t.Fatal(err)
	}
	if len(updated) != 1 || *updated[0].AllocatedCents != 123457 || updated[0].CategoryID != 1 {
		t.Errorf("update = %+v", updated)
	}
	if l.IsEditing(1) {
		t.Error("row 1 still editing after save")
	}
	if !l.IsEditing(2) {
		t.Error("row 2 edit lost")
	}

	l.CancelEdit(2)
	if l.Editing() {
		t.Error("edit not cancelled")
	}
	if len(updated) != 1 {
		t.Error("cancel issued an update")
	}

	if err := l.BeginEdit(3); err != nil {
		t.Fatal(err)
	}
	if err := l.SetPending(3, "abc"); err == nil {
		t.Error("bad amount accepted")
	}
	if err := l.SaveEdit(3); err == nil {
		t.Error("save with bad amount succeeded")
	}

	if err := l.Delete(4); err != nil {
		t.Fatal(err)
	}
	if len(deleted) != 1 || deleted[0] != 4 {
		t.Errorf("deleted = %v", deleted)
	}
}

func TestSaveEditFailureKeepsEdit(t *testing.T) {
	boom := errors.New("boom")
	l := New(DefaultOptions(), Callbacks{
		OnCategoryUpdate: func(int64, model.CategoryUpdate) error { return boom },
	})
	l.Editable = true
	l.SetCategories(sample())
	_ = l.BeginEdit(1)
	if err := l.SaveEdit(1); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if !l.IsEditing(1) {
		t.Error("edit closed after failed save")
	}
}
