package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
)

// fakeBudgets is an in-memory stand-in for the budget endpoints.
type fakeBudgets struct {
	mu      sync.Mutex
	nextID  int64
	nextCat int64
	budgets map[int64]*model.Budget
}

func newFakeBudgets() *fakeBudgets {
	return &fakeBudgets{nextID: 1, nextCat: 100, budgets: map[int64]*model.Budget{}}
}

func (f *fakeBudgets) summary(b *model.Budget) model.BudgetSummary {
	var total int64
	for _, c := range b.Categories {
		total += c.AllocatedCents
	}
	return model.BudgetSummary{
		Budget:              *b,
		TotalAllocatedCents: total,
		RemainingCents:      b.IncomeCents - total,
		IsBalanced:          b.IncomeCents == total,
	}
}

func (f *fakeBudgets) categories(budgetID int64, in []model.CategoryCreate) []model.BudgetCategory {
	out := make([]model.BudgetCategory, 0, len(in))
	for _, c := range in {
		f.nextCat++
		out = append(out, model.BudgetCategory{
			ID:             f.nextCat,
			BudgetID:       budgetID,
			Name:           c.Name,
			AllocatedCents: c.AllocatedCents,
			Order:          c.Order,
			CategoryGroup:  c.CategoryGroup,
			IsActive:       1,
		})
	}
	return out
}

func (f *fakeBudgets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rest := strings.TrimPrefix(r.URL.Path, "/api/budgets")
	switch {
	case rest == "" && r.Method == http.MethodPost:
		var in model.BudgetCreate
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b := &model.Budget{ID: f.nextID, Month: in.Month, Year: in.Year, IncomeCents: in.IncomeCents}
		f.nextID++
		b.Categories = f.categories(b.ID, in.Categories)
		f.budgets[b.ID] = b
		writeJSON(w, f.summary(b))
	case rest == "" && r.Method == http.MethodGet:
		out := make([]model.Budget, 0, len(f.budgets))
		for _, b := range f.budgets {
			out = append(out, *b)
		}
		writeJSON(w, out)
	default:
		id, err := strconv.ParseInt(strings.TrimPrefix(rest, "/"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		b, ok := f.budgets[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Budget not found"}`))
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, f.summary(b))
		case http.MethodPut:
			var in model.BudgetUpdate
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if in.IncomeCents != nil {
				b.IncomeCents = *in.IncomeCents
			}
			if in.Categories != nil {
				b.Categories = f.categories(b.ID, in.Categories)
			}
			writeJSON(w, f.summary(b))
		case http.MethodDelete:
			delete(f.budgets, id)
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func budgetClient(t *testing.T) *Client {
	t.Helper()
	c, _ := budgetServer(t)
	return c
}

func budgetServer(t *testing.T) (*Client, *fakeBudgets) {
	t.Helper()
	fake := newFakeBudgets()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c := New(srv.URL, nil)
	c.Tokens().Seed("test")
	return c, fake
}

func TestCreateBudgetBalance(t *testing.T) {
	tests := []struct {
		name      string
		allocs    []int64
		remaining int64
		balanced  bool
		status    finance.BalanceStatus
	}{
		{"balanced", []int64{200000, 150000, 100000, 50000}, 0, true, finance.Balanced},
		{"unallocated", []int64{200000, 150000, 100000}, 50000, false, finance.Unallocated},
		{"over", []int64{400000, 150000}, -50000, false, finance.OverBudget},
	}

	c := budgetClient(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := model.BudgetCreate{Month: 3, Year: 2024, IncomeCents: 500000}
			for i, a := range tt.allocs {
				in.Categories = append(in.Categories, model.CategoryCreate{
					Name:           "cat" + strconv.Itoa(i),
					AllocatedCents: a,
					Order:          i,
				})
			}

			sum, err := c.CreateBudget(context.Background(), in)
			if err != nil {
				t.Fatalf("CreateBudget: %v", err)
			}
			if sum.RemainingCents != tt.remaining {
				t.Errorf("RemainingCents = %d, want %d", sum.RemainingCents, tt.remaining)
			}
			if sum.IsBalanced != tt.balanced {
				t.Errorf("IsBalanced = %v, want %v", sum.IsBalanced, tt.balanced)
			}

			// The local computation must agree with the server's.
			local := finance.Balance(sum.Budget.IncomeCents, sum.Budget.Categories)
			if local.RemainingCents != sum.RemainingCents {
				t.Errorf("local remaining = %d, server = %d", local.RemainingCents, sum.RemainingCents)
			}
			if local.Status != tt.status {
				t.Errorf("local status = %s, want %s", local.Status, tt.status)
			}
			if got := finance.BalanceOf(in); got.Status != tt.status {
				t.Errorf("draft status = %s, want %s", got.Status, tt.status)
			}

			got, err := c.GetBudget(context.Background(), sum.Budget.ID)
			if err != nil {
				t.Fatalf("GetBudget: %v", err)
			}
			if got.RemainingCents != tt.remaining {
				t.Errorf("GetBudget remaining = %d, want %d", got.RemainingCents, tt.remaining)
			}
		})
	}
}

func TestDeleteCategoryRewritesBudget(t *testing.T) {
	c, fake := budgetServer(t)
	ctx := context.Background()

	sum, err := c.CreateBudget(ctx, model.BudgetCreate{
		Month: 1, Year: 2025, IncomeCents: 300000,
		Categories: []model.CategoryCreate{
			{Name: "Rent", AllocatedCents: 200000},
			{Name: "Food", AllocatedCents: 100000},
			{Name: "Gym", AllocatedCents: 0},
		},
	})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	// Gym is inactive on the server and must not be recreated active.
	fake.mu.Lock()
	for i, cat := range fake.budgets[sum.Budget.ID].Categories {
		if cat.Name == "Gym" {
			fake.budgets[sum.Budget.ID].Categories[i].IsActive = 0
		}
	}
	fake.mu.Unlock()

	var foodID int64
	for _, cat := range sum.Budget.Categories {
		if cat.Name == "Food" {
			foodID = cat.ID
		}
	}
	if err := c.DeleteCategory(ctx, sum.Budget.ID, foodID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	after, err := c.GetBudget(ctx, sum.Budget.ID)
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if len(after.Budget.Categories) != 1 || after.Budget.Categories[0].Name != "Rent" {
		t.Fatalf("categories = %+v, want only Rent", after.Budget.Categories)
	}
	if after.Budget.IncomeCents != 300000 {
		t.Errorf("income changed to %d", after.Budget.IncomeCents)
	}
	if after.RemainingCents != 100000 {
		t.Errorf("RemainingCents = %d, want 100000", after.RemainingCents)
	}

	if err := c.DeleteCategory(ctx, sum.Budget.ID, 99999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing category err = %v, want ErrNotFound", err)
	}
}

func TestDeleteLastCategorySendsEmptyList(t *testing.T) {
	c := budgetClient(t)
	ctx := context.Background()

	sum, err := c.CreateBudget(ctx, model.BudgetCreate{
		Month: 2, Year: 2025, IncomeCents: 1000,
		Categories: []model.CategoryCreate{{Name: "Only", AllocatedCents: 1000}},
	})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if err := c.DeleteCategory(ctx, sum.Budget.ID, sum.Budget.Categories[0].ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	after, err := c.GetBudget(ctx, sum.Budget.ID)
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if len(after.Budget.Categories) != 0 {
		t.Errorf("categories = %+v, want none", after.Budget.Categories)
	}
}

func TestGetMissingBudget(t *testing.T) {
	c := budgetClient(t)
	if _, err := c.GetBudget(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
