package model

// ReportType selects a report generator.
type ReportType string

const (
	ReportSpending   ReportType = "spending"
	ReportIncome     ReportType = "income"
	ReportCategory   ReportType = "category"
	ReportTrend      ReportType = "trend"
	ReportComparison ReportType = "comparison"
)

// ReportFilters narrows a report.
type ReportFilters struct {
	BudgetIDs      []int64  `json:"budget_ids,omitempty"`
	CategoryIDs    []int64  `json:"category_ids,omitempty"`
	CategoryGroups []string `json:"category_groups,omitempty"`
	MinAmountCents *int64   `json:"min_amount_cents,omitempty"`
	MaxAmountCents *int64   `json:"max_amount_cents,omitempty"`
}

// ReportRequest is the body of every report generator.
type ReportRequest struct {
	ReportType     ReportType     `json:"report_type"`
	DateRangeStart string         `json:"date_range_start"`
	DateRangeEnd   string         `json:"date_range_end"`
	Filters        *ReportFilters `json:"filters,omitempty"`
	GroupBy        string         `json:"group_by,omitempty"`
}

// CategorySpending is a category's share of spend.
type CategorySpending struct {
	CategoryID       int64   `json:"category_id"`
	CategoryName     string  `json:"category_name"`
	TotalSpentCents  int64   `json:"total_spent_cents"`
	TransactionCount int     `json:"transaction_count"`
	Percentage       float64 `json:"percentage"`
}

// MonthlyTrend is one period of a spend series.
type MonthlyTrend struct {
	Period              string `json:"period"`
	TotalCents          int64  `json:"total_cents"`
	TransactionCount    int    `json:"transaction_count"`
	AvgTransactionCents int64  `json:"avg_transaction_cents"`
}

// SpendingReport totals spend for a range.
type SpendingReport struct {
	TotalSpentCents     int64              `json:"total_spent_cents"`
	TransactionCount    int                `json:"transaction_count"`
	AvgTransactionCents int64              `json:"avg_transaction_cents"`
	ByCategory          []CategorySpending `json:"by_category"`
	Trends              []MonthlyTrend     `json:"trends"`
}

// IncomeMonth is one month of budgeted income.
type IncomeMonth struct {
	Month       int   `json:"month"`
	Year        int   `json:"year"`
	IncomeCents int64 `json:"income_cents"`
	BudgetID    int64 `json:"budget_id"`
}

// IncomeReport totals budgeted income.
type IncomeReport struct {
	TotalIncomeCents      int64         `json:"total_income_cents"`
	BudgetCount           int           `json:"budget_count"`
	AvgMonthlyIncomeCents int64         `json:"avg_monthly_income_cents"`
	ByMonth               []IncomeMonth `json:"by_month"`
}

// CategoryReport compares allocation with spend for one category.
type CategoryReport struct {
	CategoryID            int64   `json:"category_id"`
	CategoryName          string  `json:"category_name"`
	TotalAllocatedCents   int64   `json:"total_allocated_cents"`
	TotalSpentCents       int64   `json:"total_spent_cents"`
	BudgetCount           int     `json:"budget_count"`
	AvgAllocatedCents     int64   `json:"avg_allocated_cents"`
	AvgSpentCents         int64   `json:"avg_spent_cents"`
	UtilizationPercentage float64 `json:"utilization_percentage"`
}

// TrendForecast is a forecast point of a trend report.
type TrendForecast struct {
	Period         string `json:"period"`
	ProjectedCents int64  `json:"projected_cents"`
}

// TrendReport is a spend series with growth rate.
type TrendReport struct {
	PeriodType string          `json:"period_type"`
	Trends     []MonthlyTrend  `json:"trends"`
	GrowthRate float64         `json:"growth_rate"`
	Forecast   []TrendForecast `json:"forecast,omitempty"`
}

// BudgetComparison is one budget's row of a comparison report.
type BudgetComparison struct {
	BudgetID              int64   `json:"budget_id"`
	Month                 int     `json:"month"`
	Year                  int     `json:"year"`
	IncomeCents           int64   `json:"income_cents"`
	AllocatedCents        int64   `json:"allocated_cents"`
	SpentCents            int64   `json:"spent_cents"`
	RemainingCents        int64   `json:"remaining_cents"`
	UtilizationPercentage float64 `json:"utilization_percentage"`
}

// ComparisonReport compares budgets side by side.
type ComparisonReport struct {
	Budgets          []BudgetComparison `json:"budgets"`
	TotalIncomeCents int64              `json:"total_income_cents"`
	TotalSpentCents  int64              `json:"total_spent_cents"`
	AvgUtilization   float64            `json:"avg_utilization"`
}

// SavedReport is a stored report definition.
type SavedReport struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"user_id"`
	Name           string         `json:"name"`
	ReportType     ReportType     `json:"report_type"`
	DateRangeStart string         `json:"date_range_start"`
	DateRangeEnd   string         `json:"date_range_end"`
	Filters        map[string]any `json:"filters,omitempty"`
	CreatedAt      string         `json:"created_at,omitempty"`
	UpdatedAt      string         `json:"updated_at,omitempty"`
}

// SavedReportInput creates or updates a saved report.
type SavedReportInput struct {
	Name           string         `json:"name,omitempty"`
	ReportType     ReportType     `json:"report_type,omitempty"`
	DateRangeStart string         `json:"date_range_start,omitempty"`
	DateRangeEnd   string         `json:"date_range_end,omitempty"`
	Filters        map[string]any `json:"filters,omitempty"`
}

// NamedTotal is a labelled amount.
type NamedTotal struct {
	Name       string `json:"name"`
	TotalCents int64  `json:"total_cents"`
}

// MonthTotal is a month-labelled amount.
type MonthTotal struct {
	Month      string `json:"month"`
	TotalCents int64  `json:"total_cents"`
}

// ReportsDashboard is the multi-month overview.
type ReportsDashboard struct {
	TotalSpentCents  int64        `json:"total_spent_cents"`
	TotalIncomeCents int64        `json:"total_income_cents"`
	RemainingCents   int64        `json:"remaining_cents"`
	TopCategories    []NamedTotal `json:"top_categories"`
	MonthlyTrend     []MonthTotal `json:"monthly_trend"`
}

// AuthToken is returned by login.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated account.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// RegisterInput creates an account.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}
