package finance

import (
	"strings"

	"github.com/theirongolddev/tally/internal/model"
)

// GoalProgress is current/target as a percentage, clamped to 100.
func GoalProgress(g model.FinancialGoal) float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	pct := g.CurrentAmount / g.TargetAmount * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// GoalTypeLabel renders "debt_repayment" as "Debt Repayment".
func GoalTypeLabel(t model.GoalType) string {
	return titleWords(string(t))
}

// GoalStatusLabel renders a goal status for display.
func GoalStatusLabel(s model.GoalStatus) string {
	return titleWords(string(s))
}

func titleWords(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
