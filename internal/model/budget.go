// Package model defines the record shapes exchanged with the finance API.
package model

// Budget is a monthly income/category-allocation record.
type Budget struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"user_id,omitempty"`
	Month       int              `json:"month"`
	Year        int              `json:"year"`
	IncomeCents int64            `json:"income_cents"`
	Categories  []BudgetCategory `json:"categories"`
	CreatedAt   string           `json:"created_at,omitempty"`
	UpdatedAt   string           `json:"updated_at,omitempty"`
}

// BudgetCategory is one allocation line inside a budget.
// IsActive is an integer on the wire (1 = active).
type BudgetCategory struct {
	ID             int64  `json:"id"`
	BudgetID       int64  `json:"budget_id"`
	Name           string `json:"name"`
	AllocatedCents int64  `json:"allocated_cents"`
	SpentCents     int64  `json:"spent_cents,omitempty"`
	Order          int    `json:"order"`
	Description    string `json:"description,omitempty"`
	CategoryGroup  string `json:"category_group,omitempty"`
	IsActive       int    `json:"is_active"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// Active reports whether the category is active.
func (c BudgetCategory) Active() bool { return c.IsActive == 1 }

// BudgetCreate is the payload for creating or replacing a budget.
type BudgetCreate struct {
	Month       int              `json:"month"`
	Year        int              `json:"year"`
	IncomeCents int64            `json:"income_cents"`
	Categories  []CategoryCreate `json:"categories"`
}

// CategoryCreate is a category line within BudgetCreate.
type CategoryCreate struct {
	Name           string `json:"name"`
	AllocatedCents int64  `json:"allocated_cents"`
	Order          int    `json:"order,omitempty"`
	Description    string `json:"description,omitempty"`
	CategoryGroup  string `json:"category_group,omitempty"`
}

// BudgetUpdate changes a budget's income or replaces its categories.
type BudgetUpdate struct {
	IncomeCents *int64           `json:"income_cents,omitempty"`
	Categories  []CategoryCreate `json:"categories"`
}

// BudgetSummary is what the budget endpoints return: the budget plus the
// server's balance computation.
type BudgetSummary struct {
	Budget              Budget `json:"budget"`
	TotalAllocatedCents int64  `json:"total_allocated_cents"`
	RemainingCents      int64  `json:"remaining_cents"`
	IsBalanced          bool   `json:"is_balanced"`
}

// CategoryUpdate is a partial category change. Nil fields are left alone.
type CategoryUpdate struct {
	CategoryID     int64   `json:"category_id"`
	Name           *string `json:"name,omitempty"`
	AllocatedCents *int64  `json:"allocated_cents,omitempty"`
	Order          *int    `json:"order,omitempty"`
	Description    *string `json:"description,omitempty"`
	CategoryGroup  *string `json:"category_group,omitempty"`
}

// BulkUpdateResult reports the outcome of a bulk category update.
type BulkUpdateResult struct {
	UpdatedCount int      `json:"updated_count"`
	Errors       []string `json:"errors"`
	Success      bool     `json:"success"`
}

// CategoryAnalytics summarizes category usage across the user's budgets.
type CategoryAnalytics struct {
	MostUsed       []CategoryUsage   `json:"most_used"`
	AvgAllocations []CategoryAverage `json:"avg_allocations"`
	GroupTotals    []GroupTotal      `json:"group_totals"`
}

// CategoryUsage counts how many budgets use a category name.
type CategoryUsage struct {
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
}

// CategoryAverage is a name's mean allocation in cents. The server may
// send a fractional mean.
type CategoryAverage struct {
	Name          string  `json:"name"`
	AvgAllocation float64 `json:"avg_allocation"`
}

// GroupTotal is the allocation in cents summed over a category group.
type GroupTotal struct {
	Group          string  `json:"group"`
	TotalAllocated float64 `json:"total_allocated"`
}

// CategoryOrder assigns a display order to a category.
type CategoryOrder struct {
	ID    int64 `json:"id"`
	Order int   `json:"order"`
}

// ReorderResult is returned by the reorder endpoint.
type ReorderResult struct {
	UpdatedCount int    `json:"updated_count"`
	Message      string `json:"message"`
}

// CategoryPage is one page of a budget's categories.
type CategoryPage struct {
	Categories []BudgetCategory `json:"categories"`
	Total      int              `json:"total"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
	HasMore    bool             `json:"has_more"`
}

// CategoryGroupInfo is a server-computed group rollup.
type CategoryGroupInfo struct {
	Name                string `json:"name"`
	Count               int    `json:"count"`
	TotalAllocatedCents int64  `json:"total_allocated_cents"`
}

// TemplateType classifies a category template.
type TemplateType string

const (
	TemplateIncome  TemplateType = "income"
	TemplateExpense TemplateType = "expense"
	TemplateSavings TemplateType = "savings"
)

// CategoryTemplate is a reusable category definition.
type CategoryTemplate struct {
	ID                     int64        `json:"id"`
	UserID                 int64        `json:"user_id"`
	Name                   string       `json:"name"`
	CategoryType           TemplateType `json:"category_type"`
	Icon                   string       `json:"icon,omitempty"`
	Color                  string       `json:"color,omitempty"`
	DefaultAllocationCents int64        `json:"default_allocation_cents"`
	Description            string       `json:"description,omitempty"`
	CategoryGroup          string       `json:"category_group,omitempty"`
	Tags                   string       `json:"tags,omitempty"`
	IsActive               bool         `json:"is_active"`
	Order                  int          `json:"order"`
	CreatedAt              string       `json:"created_at,omitempty"`
	UpdatedAt              string       `json:"updated_at,omitempty"`
}

// TemplatePage is a page of category templates.
type TemplatePage struct {
	Templates []CategoryTemplate `json:"templates"`
	Total     int                `json:"total"`
	Limit     int                `json:"limit,omitempty"`
	Offset    int                `json:"offset,omitempty"`
	HasMore   bool               `json:"has_more,omitempty"`
}
