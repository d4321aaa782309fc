package pipeline

import (
	"sort"

	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
)

// BudgetRollup is one budget's balance line.
type BudgetRollup struct {
	ID            int64
	Month         int
	Year          int
	CategoryCount int
	Balance       finance.BudgetBalance
}

// Period formats the budget month as "2024-03".
func (r BudgetRollup) Period() string {
	return finance.PeriodKey(r.Year, r.Month)
}

// Summary rolls up a set of budgets.
type Summary struct {
	Budgets             []BudgetRollup
	TotalIncomeCents    int64
	TotalAllocatedCents int64
	UnbalancedCount     int
}

// Summarize computes per-budget balances and totals, newest period first.
func Summarize(budgets []model.Budget) Summary {
	var s Summary
	s.Budgets = make([]BudgetRollup, 0, len(budgets))
	for _, b := range budgets {
		bal := finance.Balance(b.IncomeCents, b.Categories)
		s.Budgets = append(s.Budgets, BudgetRollup{
			ID:            b.ID,
			Month:         b.Month,
			Year:          b.Year,
			CategoryCount: len(b.Categories),
			Balance:       bal,
		})
		s.TotalIncomeCents += bal.IncomeCents
		s.TotalAllocatedCents += bal.TotalAllocatedCents
		if bal.Status != finance.Balanced {
			s.UnbalancedCount++
		}
	}

	sort.SliceStable(s.Budgets, func(i, j int) bool {
		a, b := s.Budgets[i], s.Budgets[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Month > b.Month
	})
	return s
}

// FindBudget returns the budget for a period, if present.
func FindBudget(budgets []model.Budget, year, month int) (model.Budget, bool) {
	for _, b := range budgets {
		if b.Year == year && b.Month == month {
			return b, true
		}
	}
	return model.Budget{}, false
}
