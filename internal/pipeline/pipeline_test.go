package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/store"
)

type fakeLister struct {
	budgets []model.Budget
	err     error
}

func (f fakeLister) ListBudgets(context.Context) ([]model.Budget, error) {
	return f.budgets, f.err
}

func budgets() []model.Budget {
	return []model.Budget{
		{ID: 1, Month: 1, Year: 2024, IncomeCents: 500000, Categories: []model.BudgetCategory{
			{ID: 1, BudgetID: 1, Name: "Rent", AllocatedCents: 500000, IsActive: 1},
		}},
		{ID: 2, Month: 2, Year: 2024, IncomeCents: 500000, Categories: []model.BudgetCategory{
			{ID: 2, BudgetID: 2, Name: "Rent", AllocatedCents: 450000, IsActive: 1},
		}},
	}
}

func tempCache(t *testing.T) *store.Cache {
	t.Helper()
	c, err := store.Open(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLoadBudgetsFallsBackToCache(t *testing.T) {
	cache := tempCache(t)
	ctx := context.Background()

	res, err := LoadBudgets(ctx, fakeLister{budgets: budgets()}, cache)
	if err != nil {
		t.Fatalf("LoadBudgets: %v", err)
	}
	if res.Stale || len(res.Budgets) != 2 || res.CacheErr != nil {
		t.Fatalf("fresh load = %+v", res)
	}

	netErr := errors.New("dial tcp: connection refused")
	res, err = LoadBudgets(ctx, fakeLister{err: netErr}, cache)
	if err != nil {
		t.Fatalf("LoadBudgets offline: %v", err)
	}
	if !res.Stale {
		t.Error("offline load not marked stale")
	}
	if len(res.Budgets) != 2 {
		t.Errorf("cached budgets = %d, want 2", len(res.Budgets))
	}
	if !errors.Is(res.FetchErr, netErr) {
		t.Errorf("FetchErr = %v", res.FetchErr)
	}
	if res.SyncedAt.IsZero() {
		t.Error("SyncedAt not set from cache")
	}
}

func TestLoadBudgetsUnauthorizedDoesNotFallBack(t *testing.T) {
	cache := tempCache(t)
	if err := cache.SaveBudgets(budgets()); err != nil {
		t.Fatalf("SaveBudgets: %v", err)
	}
	_, err := LoadBudgets(context.Background(), fakeLister{err: api.ErrUnauthorized}, cache)
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestLoadBudgetsEmptyCache(t *testing.T) {
	netErr := errors.New("timeout")
	if _, err := LoadBudgets(context.Background(), fakeLister{err: netErr}, tempCache(t)); !errors.Is(err, netErr) {
		t.Fatalf("err = %v, want %v", err, netErr)
	}
	if _, err := LoadBudgets(context.Background(), fakeLister{err: netErr}, nil); !errors.Is(err, netErr) {
		t.Fatalf("nil cache err = %v, want %v", err, netErr)
	}
}

type fakeView struct {
	groupsErr error
	calls     atomic.Int64
}

func (f *fakeView) GetBudget(_ context.Context, id int64) (*model.BudgetSummary, error) {
	f.calls.Add(1)
	b := budgets()[1]
	b.ID = id
	return &model.BudgetSummary{Budget: b, TotalAllocatedCents: 450000, RemainingCents: 50000}, nil
}

func (f *fakeView) ListCategories(_ context.Context, budgetID int64, q api.CategoryQuery) (*model.CategoryPage, error) {
	f.calls.Add(1)
	return &model.CategoryPage{Categories: budgets()[1].Categories, Total: 1, Limit: q.Limit}, nil
}

func (f *fakeView) CategoryGroups(context.Context, int64) ([]model.CategoryGroupInfo, error) {
	f.calls.Add(1)
	if f.groupsErr != nil {
		return nil, f.groupsErr
	}
	return []model.CategoryGroupInfo{{Name: "Ungrouped", Count: 1, TotalAllocatedCents: 450000}}, nil
}

func (f *fakeView) BudgetTransactionSummary(_ context.Context, budgetID int64) (*model.TransactionSummary, error) {
	f.calls.Add(1)
	return &model.TransactionSummary{BudgetID: budgetID, Categories: []model.CategorySpend{
		{CategoryID: 2, SpentCents: 12000},
	}}, nil
}

func TestLoadBudgetView(t *testing.T) {
	src := &fakeView{}
	v, err := LoadBudgetView(context.Background(), src, 2)
	if err != nil {
		t.Fatalf("LoadBudgetView: %v", err)
	}
	if src.calls.Load() != 4 {
		t.Errorf("calls = %d, want 4", src.calls.Load())
	}
	if v.Balance.Status != finance.Unallocated || v.Balance.RemainingCents != 50000 {
		t.Errorf("Balance = %+v", v.Balance)
	}
	if got := v.Spent()[2]; got != 12000 {
		t.Errorf("Spent[2] = %d, want 12000", got)
	}
	if len(v.Groups) != 1 || len(v.Categories) != 1 {
		t.Errorf("groups %d categories %d", len(v.Groups), len(v.Categories))
	}
}

func TestLoadBudgetViewFailsAsAWhole(t *testing.T) {
	boom := errors.New("boom")
	_, err := LoadBudgetView(context.Background(), &fakeView{groupsErr: boom}, 2)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

type fakeDash struct {
	fundsErr error
}

func (f fakeDash) DashboardMetrics(context.Context) (*model.MetricsSummary, error) {
	return &model.MetricsSummary{OutstandingCount: 2}, nil
}

func (f fakeDash) ReportsDashboard(_ context.Context, months int) (*model.ReportsDashboard, error) {
	return &model.ReportsDashboard{TotalSpentCents: int64(months) * 100}, nil
}

func (f fakeDash) FundSummary(context.Context) (*model.FundSummary, error) {
	if f.fundsErr != nil {
		return nil, f.fundsErr
	}
	return &model.FundSummary{TotalFunds: 1}, nil
}

func (f fakeDash) NetWorthSummary(context.Context) (*model.NetWorthSummary, error) {
	return &model.NetWorthSummary{CurrentNetWorth: 1000}, nil
}

func TestLoadDashboardPartialFailure(t *testing.T) {
	boom := errors.New("funds down")
	var calls atomic.Int64
	d := LoadDashboard(context.Background(), fakeDash{fundsErr: boom}, 3, func(_, total int) {
		if total != 4 {
			t.Errorf("total = %d", total)
		}
		calls.Add(1)
	})

	if d.Funds != nil {
		t.Error("Funds should be nil")
	}
	if !errors.Is(d.Errors[PartFunds], boom) {
		t.Errorf("Errors[funds] = %v", d.Errors[PartFunds])
	}
	if d.Invoices == nil || d.Reports == nil || d.NetWorth == nil {
		t.Fatalf("other parts missing: %+v", d)
	}
	if d.Reports.TotalSpentCents != 300 {
		t.Errorf("months not passed through: %d", d.Reports.TotalSpentCents)
	}
	if d.Failed() {
		t.Error("Failed() = true with three parts loaded")
	}
	if !errors.Is(d.FirstError(), boom) {
		t.Errorf("FirstError = %v", d.FirstError())
	}
	if calls.Load() != 4 {
		t.Errorf("progress called %d times, want 4", calls.Load())
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(budgets())
	if len(s.Budgets) != 2 {
		t.Fatalf("len = %d", len(s.Budgets))
	}
	if s.Budgets[0].ID != 2 {
		t.Errorf("first = %d, want newest (2)", s.Budgets[0].ID)
	}
	if s.Budgets[0].Period() != "2024-02" {
		t.Errorf("Period = %q", s.Budgets[0].Period())
	}
	if s.TotalIncomeCents != 1000000 || s.TotalAllocatedCents != 950000 {
		t.Errorf("totals = %d / %d", s.TotalIncomeCents, s.TotalAllocatedCents)
	}
	if s.UnbalancedCount != 1 {
		t.Errorf("UnbalancedCount = %d, want 1", s.UnbalancedCount)
	}
}

func TestFindBudget(t *testing.T) {
	if b, ok := FindBudget(budgets(), 2024, 2); !ok || b.ID != 2 {
		t.Errorf("FindBudget(2024,2) = %v, %v", b.ID, ok)
	}
	if _, ok := FindBudget(budgets(), 2023, 2); ok {
		t.Error("FindBudget(2023,2) found a budget")
	}
}

func TestLoadResultSyncedAtFresh(t *testing.T) {
	before := time.Now()
	res, err := LoadBudgets(context.Background(), fakeLister{budgets: budgets()}, nil)
	if err != nil {
		t.Fatalf("LoadBudgets: %v", err)
	}
	if res.SyncedAt.Before(before) {
		t.Errorf("SyncedAt = %v", res.SyncedAt)
	}
}
