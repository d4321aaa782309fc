package api

import (
	"context"
	"net/url"
	"strconv"
)

// ExportFilters narrows a CSV export. Zero values are omitted.
type ExportFilters struct {
	BudgetID   int64
	CategoryID int64
	StartDate  string
	EndDate    string
	Year       int
	Month      int
}

func (f ExportFilters) values() url.Values {
	v := url.Values{}
	if f.BudgetID > 0 {
		v.Set("budget_id", strconv.FormatInt(f.BudgetID, 10))
	}
	if f.CategoryID > 0 {
		v.Set("category_id", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.StartDate != "" {
		v.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		v.Set("end_date", f.EndDate)
	}
	if f.Year > 0 {
		v.Set("year", strconv.Itoa(f.Year))
	}
	if f.Month > 0 {
		v.Set("month", strconv.Itoa(f.Month))
	}
	return v
}

// ExportTransactionsCSV downloads transactions as CSV.
func (c *Client) ExportTransactionsCSV(ctx context.Context, f ExportFilters) (*Blob, error) {
	return c.Download(ctx, "/api/exports/transactions/csv", f.values(), "transactions.csv")
}

// ExportSplitsCSV downloads transaction splits as CSV.
func (c *Client) ExportSplitsCSV(ctx context.Context, f ExportFilters) (*Blob, error) {
	return c.Download(ctx, "/api/exports/transactions/splits/csv", f.values(), "transaction_splits.csv")
}

// ExportBudgetCSV downloads the budget summary as CSV.
func (c *Client) ExportBudgetCSV(ctx context.Context, f ExportFilters) (*Blob, error) {
	return c.Download(ctx, "/api/exports/budgets/csv", f.values(), "budget_summary.csv")
}
