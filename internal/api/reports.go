package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

func (c *Client) report(ctx context.Context, kind model.ReportType, path string, req model.ReportRequest, out any) error {
	if req.ReportType == "" {
		req.ReportType = kind
	}
	return c.post(ctx, path, req, out)
}

// SpendingReport totals spend over a date range.
func (c *Client) SpendingReport(ctx context.Context, req model.ReportRequest) (*model.SpendingReport, error) {
	var r model.SpendingReport
	if err := c.report(ctx, model.ReportSpending, "/api/reports/spending", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// IncomeReport totals budgeted income over a date range.
func (c *Client) IncomeReport(ctx context.Context, req model.ReportRequest) (*model.IncomeReport, error) {
	var r model.IncomeReport
	if err := c.report(ctx, model.ReportIncome, "/api/reports/income", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CategoryReport compares allocation and spend per category.
func (c *Client) CategoryReport(ctx context.Context, req model.ReportRequest) ([]model.CategoryReport, error) {
	var r []model.CategoryReport
	if err := c.report(ctx, model.ReportCategory, "/api/reports/category", req, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// TrendReport returns the spend series and growth rate.
func (c *Client) TrendReport(ctx context.Context, req model.ReportRequest) (*model.TrendReport, error) {
	var r model.TrendReport
	if err := c.report(ctx, model.ReportTrend, "/api/reports/trends", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ComparisonReport compares budgets in the range.
func (c *Client) ComparisonReport(ctx context.Context, req model.ReportRequest) (*model.ComparisonReport, error) {
	var r model.ComparisonReport
	if err := c.report(ctx, model.ReportComparison, "/api/reports/comparison", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ReportsDashboard returns the overview for the last months (1-12).
func (c *Client) ReportsDashboard(ctx context.Context, months int) (*model.ReportsDashboard, error) {
	if months <= 0 {
		months = 3
	}
	var d model.ReportsDashboard
	v := url.Values{"months": {strconv.Itoa(months)}}
	if err := c.get(ctx, "/api/reports/dashboard", v, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListSavedReports returns stored report definitions.
func (c *Client) ListSavedReports(ctx context.Context) ([]model.SavedReport, error) {
	var out []model.SavedReport
	if err := c.get(ctx, "/api/reports/saved", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSavedReport returns one saved report.
func (c *Client) GetSavedReport(ctx context.Context, id int64) (*model.SavedReport, error) {
	var r model.SavedReport
	if err := c.get(ctx, fmt.Sprintf("/api/reports/saved/%d", id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateSavedReport stores a report definition.
func (c *Client) CreateSavedReport(ctx context.Context, in model.SavedReportInput) (*model.SavedReport, error) {
	var r model.SavedReport
	if err := c.post(ctx, "/api/reports/saved", in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateSavedReport changes a saved report.
func (c *Client) UpdateSavedReport(ctx context.Context, id int64, in model.SavedReportInput) (*model.SavedReport, error) {
	var r model.SavedReport
	if err := c.put(ctx, fmt.Sprintf("/api/reports/saved/%d", id), in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteSavedReport removes a saved report.
func (c *Client) DeleteSavedReport(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/reports/saved/%d", id), nil)
}

// RunSavedReport executes a saved report. The shape depends on its type,
// so the raw decoded JSON is returned.
func (c *Client) RunSavedReport(ctx context.Context, id int64) (map[string]any, error) {
	out := map[string]any{}
	if err := c.post(ctx, fmt.Sprintf("/api/reports/saved/%d/run", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
