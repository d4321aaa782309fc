// Package pipeline orchestrates page loads against the API, the offline
// cache fallback, and budget rollups.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/model"
)

// BudgetLister fetches the budget list.
type BudgetLister interface {
	ListBudgets(ctx context.Context) ([]model.Budget, error)
}

// BudgetCache is the offline snapshot used when the API is unreachable.
type BudgetCache interface {
	SaveBudgets(budgets []model.Budget) error
	LoadBudgets() ([]model.Budget, error)
	LastSync() (time.Time, error)
}

// LoadResult holds the output of a budget list load.
type LoadResult struct {
	Budgets []model.Budget
	// Stale is set when Budgets came from the cache after a failed fetch.
	Stale bool
	// SyncedAt is when the returned data was fetched.
	SyncedAt time.Time
	// FetchErr is the API error that forced a cache fallback.
	FetchErr error
	// CacheErr is a non-fatal failure refreshing the cache.
	CacheErr error
}

// LoadBudgets fetches the budget list and refreshes the cache. When the
// fetch fails for any reason other than authentication, the cached snapshot
// is returned instead and marked Stale. cache may be nil.
func LoadBudgets(ctx context.Context, src BudgetLister, cache BudgetCache) (*LoadResult, error) {
	budgets, err := src.ListBudgets(ctx)
	if err == nil {
		res := &LoadResult{Budgets: budgets, SyncedAt: time.Now()}
		if cache != nil {
			if cerr := cache.SaveBudgets(budgets); cerr != nil {
				res.CacheErr = fmt.Errorf("refreshing cache: %w", cerr)
			}
		}
		return res, nil
	}

	if errors.Is(err, api.ErrUnauthorized) || cache == nil || ctx.Err() != nil {
		return nil, err
	}

	cached, cerr := cache.LoadBudgets()
	if cerr != nil || len(cached) == 0 {
		return nil, err
	}
	synced, _ := cache.LastSync()
	return &LoadResult{
		Budgets:  cached,
		Stale:    true,
		SyncedAt: synced,
		FetchErr: err,
	}, nil
}
