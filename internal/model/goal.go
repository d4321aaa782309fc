package model

// GoalType classifies a financial goal.
type GoalType string

const (
	GoalSavings       GoalType = "savings"
	GoalDebtRepayment GoalType = "debt_repayment"
	GoalInvestment    GoalType = "investment"
	GoalEmergencyFund GoalType = "emergency_fund"
	GoalRetirement    GoalType = "retirement"
	GoalEducation     GoalType = "education"
	GoalHomePurchase  GoalType = "home_purchase"
	GoalVehicle       GoalType = "vehicle"
	GoalVacation      GoalType = "vacation"
	GoalOther         GoalType = "other"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
	GoalCancelled GoalStatus = "cancelled"
)

// FinancialGoal amounts are dollars, not cents.
type FinancialGoal struct {
	ID                  int64              `json:"id"`
	UserID              int64              `json:"user_id"`
	Name                string             `json:"name"`
	Description         string             `json:"description,omitempty"`
	GoalType            GoalType           `json:"goal_type"`
	TargetAmount        float64            `json:"target_amount"`
	CurrentAmount       float64            `json:"current_amount"`
	MonthlyContribution float64            `json:"monthly_contribution"`
	TargetDate          string             `json:"target_date"`
	StartDate           string             `json:"start_date"`
	Status              GoalStatus         `json:"status"`
	Priority            int                `json:"priority"`
	Notes               string             `json:"notes,omitempty"`
	CreatedAt           string             `json:"created_at,omitempty"`
	UpdatedAt           string             `json:"updated_at,omitempty"`
	Contributions       []GoalContribution `json:"contributions"`
	Milestones          []GoalMilestone    `json:"milestones"`
}

// GoalInput is the create/update payload for a goal.
type GoalInput struct {
	Name                string     `json:"name,omitempty"`
	Description         string     `json:"description,omitempty"`
	GoalType            GoalType   `json:"goal_type,omitempty"`
	TargetAmount        float64    `json:"target_amount,omitempty"`
	CurrentAmount       *float64   `json:"current_amount,omitempty"`
	MonthlyContribution float64    `json:"monthly_contribution,omitempty"`
	TargetDate          string     `json:"target_date,omitempty"`
	StartDate           string     `json:"start_date,omitempty"`
	Status              GoalStatus `json:"status,omitempty"`
	Priority            int        `json:"priority,omitempty"`
	Notes               string     `json:"notes,omitempty"`
}

// GoalContribution is a payment toward a goal.
type GoalContribution struct {
	ID               int64   `json:"id"`
	GoalID           int64   `json:"goal_id"`
	Amount           float64 `json:"amount"`
	ContributionDate string  `json:"contribution_date"`
	Notes            string  `json:"notes,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

// GoalContributionInput adds a contribution.
type GoalContributionInput struct {
	Amount           float64 `json:"amount"`
	ContributionDate string  `json:"contribution_date"`
	Notes            string  `json:"notes,omitempty"`
}

// GoalMilestone is an intermediate checkpoint of a goal.
type GoalMilestone struct {
	ID           int64   `json:"id"`
	GoalID       int64   `json:"goal_id"`
	Name         string  `json:"name"`
	TargetAmount float64 `json:"target_amount"`
	TargetDate   string  `json:"target_date"`
	Achieved     bool    `json:"achieved"`
	AchievedDate string  `json:"achieved_date,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// MilestoneInput creates or updates a milestone.
type MilestoneInput struct {
	Name         string  `json:"name,omitempty"`
	TargetAmount float64 `json:"target_amount,omitempty"`
	TargetDate   string  `json:"target_date,omitempty"`
	Achieved     *bool   `json:"achieved,omitempty"`
}

// GoalProjection is the server's completion forecast.
type GoalProjection struct {
	GoalID                      int64   `json:"goal_id"`
	ProjectedCompletionDate     string  `json:"projected_completion_date"`
	MonthsRemaining             int     `json:"months_remaining"`
	OnTrack                     bool    `json:"on_track"`
	RequiredMonthlyContribution float64 `json:"required_monthly_contribution"`
	ProjectedFinalAmount        float64 `json:"projected_final_amount"`
	Shortfall                   float64 `json:"shortfall"`
}

// GoalSummary aggregates all goals.
type GoalSummary struct {
	TotalGoals                int     `json:"total_goals"`
	ActiveGoals               int     `json:"active_goals"`
	CompletedGoals            int     `json:"completed_goals"`
	TotalTargetAmount         float64 `json:"total_target_amount"`
	TotalCurrentAmount        float64 `json:"total_current_amount"`
	TotalMonthlyContributions float64 `json:"total_monthly_contributions"`
	OverallProgressPercentage float64 `json:"overall_progress_percentage"`
}
