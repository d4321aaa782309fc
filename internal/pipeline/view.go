package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
)

const viewPageSize = 100

// ViewSource is the subset of the API a budget detail page needs.
type ViewSource interface {
	GetBudget(ctx context.Context, id int64) (*model.BudgetSummary, error)
	ListCategories(ctx context.Context, budgetID int64, q api.CategoryQuery) (*model.CategoryPage, error)
	CategoryGroups(ctx context.Context, budgetID int64) ([]model.CategoryGroupInfo, error)
	BudgetTransactionSummary(ctx context.Context, budgetID int64) (*model.TransactionSummary, error)
}

// BudgetView is everything the budget detail page renders.
type BudgetView struct {
	Summary    model.BudgetSummary
	Categories []model.BudgetCategory
	Groups     []model.CategoryGroupInfo
	Spending   model.TransactionSummary
	Balance    finance.BudgetBalance
}

// Spent indexes spend by category ID.
func (v *BudgetView) Spent() map[int64]int64 {
	return v.Spending.SpentByCategory()
}

// LoadBudgetView fetches a budget's summary, categories, groups, and spend
// concurrently. Any single failure fails the whole load.
func LoadBudgetView(ctx context.Context, src ViewSource, budgetID int64) (*BudgetView, error) {
	var (
		view  BudgetView
		sum   *model.BudgetSummary
		page  *model.CategoryPage
		spend *model.TransactionSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if sum, err = src.GetBudget(gctx, budgetID); err != nil {
			return fmt.Errorf("budget: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if page, err = src.ListCategories(gctx, budgetID, api.CategoryQuery{Limit: viewPageSize}); err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if view.Groups, err = src.CategoryGroups(gctx, budgetID); err != nil {
			return fmt.Errorf("category groups: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if spend, err = src.BudgetTransactionSummary(gctx, budgetID); err != nil {
			return fmt.Errorf("transaction summary: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view.Summary = *sum
	view.Categories = page.Categories
	if page.HasMore {
		// The budget carries every category; the page is only a first cut.
		view.Categories = sum.Budget.Categories
	}
	view.Spending = *spend
	view.Balance = finance.Balance(sum.Budget.IncomeCents, sum.Budget.Categories)
	return &view, nil
}
