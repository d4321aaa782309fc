package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
)

// loadSteps is the budget list plus the four dashboard parts.
const loadSteps = 5

// loadDataCmd runs the initial load in a goroutine and streams progress
// through sub. The returned command yields the first message; the rest are
// pulled by waitForLoadMsg.
func loadDataCmd(b Backend, cache Cache, months int, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()

			// Non-blocking send so workers aren't stalled. A dropped update
			// is caught up by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			res, dash, err := loadAll(ctx, b, cache, months, progressFn)
			sub <- DataLoadedMsg{
				Result:    res,
				Dashboard: dash,
				Err:       err,
				LoadTime:  time.Since(start),
			}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads in the background without progress UI.
func refreshDataCmd(b Backend, cache Cache, months int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		res, dash, err := loadAll(ctx, b, cache, months, nil)
		return RefreshDataMsg{Result: res, Dashboard: dash, Err: err}
	}
}

// loadAll fetches the budget list, then the dashboard. The dashboard is
// skipped when the budgets came from the cache: the API is down and every
// part would fail anyway.
func loadAll(ctx context.Context, b Backend, cache Cache, months int, progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, *pipeline.Dashboard, error) {
	var bc pipeline.BudgetCache
	if cache != nil {
		bc = cache
	}
	res, err := pipeline.LoadBudgets(ctx, b, bc)
	if err != nil {
		return nil, nil, err
	}
	if progressFn != nil {
		progressFn(1, loadSteps)
	}
	if res.Stale {
		return res, nil, nil
	}

	dash := pipeline.LoadDashboard(ctx, b, months, func(current, _ int) {
		if progressFn != nil {
			progressFn(current+1, loadSteps)
		}
	})
	if err := dash.FirstError(); errors.Is(err, api.ErrUnauthorized) {
		return nil, nil, err
	}
	return res, dash, nil
}

// budgetViewMsg carries one budget's detail.
type budgetViewMsg struct {
	budgetID int64
	view     *pipeline.BudgetView
	stale    bool
	err      error
}

// loadViewCmd fetches a budget's detail. When the API fails for a reason
// other than auth, the cached categories are shown instead.
func loadViewCmd(b Backend, cache Cache, budget model.Budget) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		view, err := pipeline.LoadBudgetView(ctx, b, budget.ID)
		if err == nil {
			if cache != nil {
				_ = cache.SaveCategories(budget.ID, view.Categories)
			}
			return budgetViewMsg{budgetID: budget.ID, view: view}
		}
		if errors.Is(err, api.ErrUnauthorized) || cache == nil {
			return budgetViewMsg{budgetID: budget.ID, err: err}
		}

		cats, cerr := cache.LoadCategories(budget.ID)
		if cerr != nil || len(cats) == 0 {
			cats = budget.Categories
		}
		if len(cats) == 0 {
			return budgetViewMsg{budgetID: budget.ID, err: err}
		}
		return budgetViewMsg{budgetID: budget.ID, view: cachedView(budget, cats), stale: true, err: err}
	}
}

// cachedView builds a view from offline data. Spend is unknown offline.
func cachedView(budget model.Budget, cats []model.BudgetCategory) *pipeline.BudgetView {
	budget.Categories = cats
	bal := finance.Balance(budget.IncomeCents, cats)
	return &pipeline.BudgetView{
		Summary: model.BudgetSummary{
			Budget:              budget,
			TotalAllocatedCents: bal.TotalAllocatedCents,
			RemainingCents:      bal.RemainingCents,
			IsBalanced:          bal.RemainingCents == 0,
		},
		Categories: cats,
		Balance:    bal,
	}
}

func (a App) handleBudgetView(msg budgetViewMsg) (tea.Model, tea.Cmd) {
	if msg.budgetID != a.selected {
		return a, nil
	}
	a.budgetViewLoading = false
	if msg.view == nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return a.requireLogin("Session expired, please log in again")
		}
		a.viewErr = msg.err
		return a, nil
	}
	a.view = msg.view
	a.viewErr = nil
	a.viewStale = msg.stale
	a.cats.setView(msg.view, !msg.stale)
	a.cats.scrollToCursor(a.categoryWindow())
	return a, nil
}
