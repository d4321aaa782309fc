package finance

import "github.com/theirongolddev/tally/internal/model"

// BalanceStatus describes whether income is fully allocated.
type BalanceStatus string

const (
	Balanced    BalanceStatus = "balanced"
	Unallocated BalanceStatus = "unallocated"
	OverBudget  BalanceStatus = "over_budget"
)

// Label is the human-readable status.
func (s BalanceStatus) Label() string {
	switch s {
	case Balanced:
		return "Balanced"
	case Unallocated:
		return "Unallocated"
	case OverBudget:
		return "Over Budget"
	}
	return string(s)
}

// BudgetBalance is income minus allocations.
type BudgetBalance struct {
	IncomeCents         int64
	TotalAllocatedCents int64
	RemainingCents      int64
	Status              BalanceStatus
}

// Balance computes the balance of a budget's categories against income.
func Balance(incomeCents int64, cats []model.BudgetCategory) BudgetBalance {
	return balanceOf(incomeCents, TotalAllocated(cats))
}

// BalanceOf is Balance for a draft budget.
func BalanceOf(in model.BudgetCreate) BudgetBalance {
	var total int64
	for _, c := range in.Categories {
		total += c.AllocatedCents
	}
	return balanceOf(in.IncomeCents, total)
}

func balanceOf(income, allocated int64) BudgetBalance {
	b := BudgetBalance{
		IncomeCents:         income,
		TotalAllocatedCents: allocated,
		RemainingCents:      income - allocated,
	}
	switch {
	case b.RemainingCents == 0:
		b.Status = Balanced
	case b.RemainingCents > 0:
		b.Status = Unallocated
	default:
		b.Status = OverBudget
	}
	return b
}

// ValidateNewBudget checks a draft budget before it is posted. The first
// failing rule is returned.
func ValidateNewBudget(in model.BudgetCreate) error {
	if in.Month < 1 || in.Month > 12 {
		return &ValidationError{Field: "month", Message: "Month must be between 1 and 12"}
	}
	if in.Year < 2000 || in.Year > 2100 {
		return &ValidationError{Field: "year", Message: "Year must be between 2000 and 2100"}
	}
	if in.IncomeCents <= 0 {
		return &ValidationError{Field: "income_cents", Message: "Please enter a valid income amount"}
	}
	if len(in.Categories) == 0 {
		return &ValidationError{Field: "categories", Message: "Please add at least one category"}
	}
	for _, c := range in.Categories {
		if err := ValidateCategory(c.Name, c.AllocatedCents, c.Order); err != nil {
			return err
		}
	}
	if BalanceOf(in).Status != Balanced {
		return &ValidationError{Field: "categories", Message: "Budget must be balanced. All income must be allocated."}
	}
	return nil
}
