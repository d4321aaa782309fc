package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

// ListBudgets returns all budgets for the user.
func (c *Client) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	var out []model.Budget
	if err := c.get(ctx, "/api/budgets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBudget returns one budget with its categories and balance.
func (c *Client) GetBudget(ctx context.Context, id int64) (*model.BudgetSummary, error) {
	var b model.BudgetSummary
	if err := c.get(ctx, fmt.Sprintf("/api/budgets/%d", id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// BudgetForPeriod returns the budget for a given month.
func (c *Client) BudgetForPeriod(ctx context.Context, year, month int) (*model.BudgetSummary, error) {
	var b model.BudgetSummary
	if err := c.get(ctx, fmt.Sprintf("/api/budgets/period/%d/%d", year, month), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBudget posts a new budget.
func (c *Client) CreateBudget(ctx context.Context, in model.BudgetCreate) (*model.BudgetSummary, error) {
	var b model.BudgetSummary
	if err := c.post(ctx, "/api/budgets", in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBudget replaces a budget's income and categories.
func (c *Client) UpdateBudget(ctx context.Context, id int64, in model.BudgetUpdate) (*model.BudgetSummary, error) {
	var b model.BudgetSummary
	if err := c.put(ctx, fmt.Sprintf("/api/budgets/%d", id), in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBudget removes a budget.
func (c *Client) DeleteBudget(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/budgets/%d", id), nil)
}

// CategoryQuery filters and pages a budget's categories.
type CategoryQuery struct {
	Limit    int
	Offset   int
	Search   string
	Group    string
	SortBy   string
	SortDesc bool
}

func (q CategoryQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Group != "" {
		v.Set("group", q.Group)
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.SortDesc {
		v.Set("sort_desc", "true")
	}
	return v
}

// ListCategories returns a page of a budget's categories.
func (c *Client) ListCategories(ctx context.Context, budgetID int64, q CategoryQuery) (*model.CategoryPage, error) {
	var page model.CategoryPage
	if err := c.get(ctx, fmt.Sprintf("/api/budgets/%d/categories", budgetID), q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// BulkUpdateCategories applies several partial updates. A CategoryID of 0
// creates a new category.
func (c *Client) BulkUpdateCategories(ctx context.Context, budgetID int64, updates []model.CategoryUpdate) (*model.BulkUpdateResult, error) {
	var res model.BulkUpdateResult
	body := map[string]any{"updates": updates}
	if err := c.post(ctx, fmt.Sprintf("/api/budgets/%d/categories/bulk", budgetID), body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateCategory is BulkUpdateCategories for a single change.
func (c *Client) UpdateCategory(ctx context.Context, budgetID int64, u model.CategoryUpdate) error {
	res, err := c.BulkUpdateCategories(ctx, budgetID, []model.CategoryUpdate{u})
	if err != nil {
		return err
	}
	if !res.Success && len(res.Errors) > 0 {
		return &Error{Status: 200, Detail: res.Errors[0]}
	}
	return nil
}

// DeleteCategory removes a category by rewriting the budget without it.
// Income is left alone. The rewrite cannot carry is_active, so inactive
// categories are dropped too rather than coming back active.
func (c *Client) DeleteCategory(ctx context.Context, budgetID, categoryID int64) error {
	sum, err := c.GetBudget(ctx, budgetID)
	if err != nil {
		return err
	}
	keep := make([]model.CategoryCreate, 0, len(sum.Budget.Categories))
	found := false
	for _, cat := range sum.Budget.Categories {
		if cat.ID == categoryID {
			found = true
			continue
		}
		if !cat.Active() {
			continue
		}
		keep = append(keep, model.CategoryCreate{
			Name:           cat.Name,
			AllocatedCents: cat.AllocatedCents,
			Order:          cat.Order,
			Description:    cat.Description,
			CategoryGroup:  cat.CategoryGroup,
		})
	}
	if !found {
		return ErrNotFound
	}
	_, err = c.UpdateBudget(ctx, budgetID, model.BudgetUpdate{Categories: keep})
	return err
}

// ReorderCategories sets the display order of categories.
func (c *Client) ReorderCategories(ctx context.Context, budgetID int64, orders []model.CategoryOrder) (*model.ReorderResult, error) {
	var res model.ReorderResult
	if err := c.post(ctx, fmt.Sprintf("/api/budgets/%d/categories/reorder", budgetID), orders, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CategoryGroups returns server-side group rollups for a budget.
func (c *Client) CategoryGroups(ctx context.Context, budgetID int64) ([]model.CategoryGroupInfo, error) {
	var out []model.CategoryGroupInfo
	if err := c.get(ctx, fmt.Sprintf("/api/budgets/%d/groups", budgetID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategoriesFromTemplates copies the selected templates into a budget
// as new categories.
func (c *Client) CreateCategoriesFromTemplates(ctx context.Context, budgetID int64, templateIDs []int64) (*model.BulkUpdateResult, error) {
	page, err := c.ListTemplates(ctx, TemplateQuery{})
	if err != nil {
		return nil, fmt.Errorf("fetching templates: %w", err)
	}
	want := make(map[int64]bool, len(templateIDs))
	for _, id := range templateIDs {
		want[id] = true
	}

	var updates []model.CategoryUpdate
	for _, t := range page.Templates {
		if !want[t.ID] {
			continue
		}
		name := t.Name
		alloc := t.DefaultAllocationCents
		order := t.Order
		if order == 0 {
			order = len(updates)
		}
		desc := t.Description
		group := t.CategoryGroup
		updates = append(updates, model.CategoryUpdate{
			CategoryID:     0,
			Name:           &name,
			AllocatedCents: &alloc,
			Order:          &order,
			Description:    &desc,
			CategoryGroup:  &group,
		})
	}
	return c.BulkUpdateCategories(ctx, budgetID, updates)
}

// SearchCategories searches categories across all of the user's budgets.
func (c *Client) SearchCategories(ctx context.Context, term string, limit int, budgetID int64) ([]model.BudgetCategory, error) {
	v := url.Values{"search": {term}}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	if budgetID > 0 {
		v.Set("budget_id", strconv.FormatInt(budgetID, 10))
	}
	var out []model.BudgetCategory
	if err := c.get(ctx, "/api/categories/search", v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DuplicateCategories copies categories from source into target. Nil ids
// copies all of them.
func (c *Client) DuplicateCategories(ctx context.Context, sourceID, targetID int64, categoryIDs []int64) (*model.BulkUpdateResult, error) {
	var res model.BulkUpdateResult
	body := map[string]any{"source_budget_id": sourceID, "category_ids": categoryIDs}
	if err := c.post(ctx, fmt.Sprintf("/api/budgets/%d/categories/duplicate", targetID), body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ExportCategories downloads a budget's categories as csv or json.
func (c *Client) ExportCategories(ctx context.Context, budgetID int64, format string) (*Blob, error) {
	if format == "" {
		format = "csv"
	}
	fallback := fmt.Sprintf("budget-%d-categories.%s", budgetID, format)
	return c.Download(ctx, fmt.Sprintf("/api/budgets/%d/categories/export", budgetID), url.Values{"format": {format}}, fallback)
}

// ImportOptions controls how imported rows meet existing categories.
type ImportOptions struct {
	SkipDuplicates bool
	UpdateExisting bool
}

// ImportCategories uploads a CSV of categories into a budget.
func (c *Client) ImportCategories(ctx context.Context, budgetID int64, r io.Reader, filename string, opts ImportOptions) (*model.BulkUpdateResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("api: building upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("api: reading %s: %w", filename, err)
	}
	fields := [][2]string{
		{"skip_duplicates", strconv.FormatBool(opts.SkipDuplicates)},
		{"update_existing", strconv.FormatBool(opts.UpdateExisting)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("api: building upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("api: building upload: %w", err)
	}

	var res model.BulkUpdateResult
	body := formBody{body: &buf, contentType: mw.FormDataContentType()}
	path := fmt.Sprintf("/api/budgets/%d/categories/import", budgetID)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Analytics periods.
const (
	AnalyticsMonth   = "month"
	AnalyticsQuarter = "quarter"
	AnalyticsYear    = "year"
)

// CategoryAnalytics returns usage and allocation rollups across budgets.
// Empty period and group are omitted.
func (c *Client) CategoryAnalytics(ctx context.Context, period, group string) (*model.CategoryAnalytics, error) {
	v := url.Values{}
	if period != "" {
		v.Set("period", period)
	}
	if group != "" {
		v.Set("category_group", group)
	}
	var out model.CategoryAnalytics
	if err := c.get(ctx, "/api/categories/analytics", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
