package model

// SinkingFund is a named savings target with a contribution history.
type SinkingFund struct {
	ID                       int64  `json:"id"`
	UserID                   int64  `json:"user_id"`
	Name                     string `json:"name"`
	TargetCents              int64  `json:"target_cents"`
	CurrentBalanceCents      int64  `json:"current_balance_cents"`
	MonthlyContributionCents int64  `json:"monthly_contribution_cents"`
	TargetDate               string `json:"target_date,omitempty"`
	Description              string `json:"description,omitempty"`
	Color                    string `json:"color,omitempty"`
	IsActive                 bool   `json:"is_active"`
	CreatedAt                string `json:"created_at,omitempty"`
	UpdatedAt                string `json:"updated_at,omitempty"`

	Contributions []Contribution `json:"contributions,omitempty"`
}

// Contribution is a deposit into a sinking fund.
type Contribution struct {
	ID               int64  `json:"id"`
	FundID           int64  `json:"fund_id"`
	AmountCents      int64  `json:"amount_cents"`
	ContributionDate string `json:"contribution_date"`
	Notes            string `json:"notes,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// FundInput is the create/update payload for a sinking fund.
type FundInput struct {
	Name                     string `json:"name,omitempty"`
	TargetCents              int64  `json:"target_cents,omitempty"`
	MonthlyContributionCents int64  `json:"monthly_contribution_cents"`
	TargetDate               string `json:"target_date,omitempty"`
	Description              string `json:"description,omitempty"`
	Color                    string `json:"color,omitempty"`
	IsActive                 *bool  `json:"is_active,omitempty"`
}

// ContributionInput is the payload for adding a contribution.
type ContributionInput struct {
	AmountCents      int64  `json:"amount_cents"`
	ContributionDate string `json:"contribution_date,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// FundProgress is the server's progress view of a fund.
type FundProgress struct {
	Fund                  SinkingFund `json:"fund"`
	ProgressPercentage    float64     `json:"progress_percentage"`
	RemainingCents        int64       `json:"remaining_cents"`
	MonthsToTarget        *int        `json:"months_to_target,omitempty"`
	OnTrack               bool        `json:"on_track"`
	TotalContributedCents int64       `json:"total_contributed_cents"`
	ContributionCount     int         `json:"contribution_count"`
}

// FundSummary aggregates all of a user's funds.
type FundSummary struct {
	TotalFunds                int     `json:"total_funds"`
	TotalTargetCents          int64   `json:"total_target_cents"`
	TotalSavedCents           int64   `json:"total_saved_cents"`
	TotalRemainingCents       int64   `json:"total_remaining_cents"`
	OverallProgressPercentage float64 `json:"overall_progress_percentage"`
	ActiveFunds               int     `json:"active_funds"`
}

// PaycheckFrequency is how often a paycheck arrives.
type PaycheckFrequency string

const (
	FrequencyWeekly      PaycheckFrequency = "weekly"
	FrequencyBiweekly    PaycheckFrequency = "biweekly"
	FrequencySemimonthly PaycheckFrequency = "semimonthly"
	FrequencyMonthly     PaycheckFrequency = "monthly"
	FrequencyCustom      PaycheckFrequency = "custom"
)

// PaycheckAllocation routes part of a paycheck to a budget category.
type PaycheckAllocation struct {
	ID          int64 `json:"id,omitempty"`
	CategoryID  int64 `json:"category_id"`
	AmountCents int64 `json:"amount_cents"`
	Order       int   `json:"order"`
}

// Paycheck is a recurring income source.
type Paycheck struct {
	ID          int64                `json:"id"`
	UserID      int64                `json:"user_id"`
	Name        string               `json:"name"`
	AmountCents int64                `json:"amount_cents"`
	Frequency   PaycheckFrequency    `json:"frequency"`
	NextDate    string               `json:"next_date"`
	IsActive    bool                 `json:"is_active"`
	CreatedAt   string               `json:"created_at,omitempty"`
	UpdatedAt   string               `json:"updated_at,omitempty"`
	Allocations []PaycheckAllocation `json:"allocations"`
}

// PaycheckInput is the create/update payload for a paycheck.
type PaycheckInput struct {
	Name        string               `json:"name,omitempty"`
	AmountCents int64                `json:"amount_cents,omitempty"`
	Frequency   PaycheckFrequency    `json:"frequency,omitempty"`
	NextDate    string               `json:"next_date,omitempty"`
	IsActive    *bool                `json:"is_active,omitempty"`
	Allocations []PaycheckAllocation `json:"allocations,omitempty"`
}

// PaycheckInstance is one concrete paycheck landing in a budget month.
type PaycheckInstance struct {
	ID          int64                `json:"id"`
	PaycheckID  int64                `json:"paycheck_id"`
	BudgetID    int64                `json:"budget_id"`
	AmountCents int64                `json:"amount_cents"`
	Date        string               `json:"date"`
	IsReceived  bool                 `json:"is_received"`
	CreatedAt   string               `json:"created_at,omitempty"`
	Allocations []PaycheckAllocation `json:"allocations"`
}

// PaycheckInstanceInput creates a paycheck instance.
type PaycheckInstanceInput struct {
	PaycheckID  int64                `json:"paycheck_id"`
	BudgetID    int64                `json:"budget_id"`
	AmountCents int64                `json:"amount_cents"`
	Date        string               `json:"date"`
	Allocations []PaycheckAllocation `json:"allocations,omitempty"`
}

// PaycheckSchedule lists upcoming pay dates.
type PaycheckSchedule struct {
	Paycheck        Paycheck `json:"paycheck"`
	UpcomingDates   []string `json:"upcoming_dates"`
	NextAmountCents int64    `json:"next_amount_cents"`
}

// FundingPlan shows how a budget month is funded by paychecks.
type FundingPlan struct {
	BudgetID                 int64              `json:"budget_id"`
	Month                    int                `json:"month"`
	Year                     int                `json:"year"`
	TotalIncomeCents         int64              `json:"total_income_cents"`
	TotalAllocatedCents      int64              `json:"total_allocated_cents"`
	Paychecks                []PaycheckInstance `json:"paychecks"`
	AvailableToAllocateCents int64              `json:"available_to_allocate_cents"`
	IsFullyFunded            bool               `json:"is_fully_funded"`
}

// FundingSource is one paycheck instance contributing to a category.
type FundingSource struct {
	InstanceID  int64 `json:"instance_id"`
	AmountCents int64 `json:"amount_cents"`
}

// CategoryFundingStatus tracks whether a category is covered by received income.
type CategoryFundingStatus struct {
	CategoryID     int64           `json:"category_id"`
	CategoryName   string          `json:"category_name"`
	AllocatedCents int64           `json:"allocated_cents"`
	FundedCents    int64           `json:"funded_cents"`
	RemainingCents int64           `json:"remaining_cents"`
	IsFullyFunded  bool            `json:"is_fully_funded"`
	FundingSources []FundingSource `json:"funding_sources"`
}
