package finance

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/theirongolddev/tally/internal/model"
)

// FundProgress returns current/target as a percentage, clamped to 100.
// A zero target yields 0.
func FundProgress(currentCents, targetCents int64) float64 {
	if targetCents == 0 {
		return 0
	}
	pct := float64(currentCents) / float64(targetCents) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// MonthsToTarget returns how many monthly contributions cover remaining.
// ok is false when there is nothing left or no positive contribution.
func MonthsToTarget(remainingCents, monthlyCents int64) (months int, ok bool) {
	if monthlyCents <= 0 || remainingCents <= 0 {
		return 0, false
	}
	return int((remainingCents + monthlyCents - 1) / monthlyCents), true
}

// Tier buckets a progress percentage for coloring.
type Tier int

const (
	TierMinimal Tier = iota
	TierLow
	TierMid
	TierHigh
	TierComplete
)

// ProgressTier maps a percentage onto a Tier.
func ProgressTier(pct float64) Tier {
	switch {
	case pct >= 100:
		return TierComplete
	case pct >= 75:
		return TierHigh
	case pct >= 50:
		return TierMid
	case pct >= 25:
		return TierLow
	}
	return TierMinimal
}

// ValidateFund checks a fund before create or update.
func ValidateFund(in model.FundInput) error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Message: "Fund name is required"})
	}
	if utf8.RuneCountInString(in.Name) > maxNameLen {
		errs = append(errs, &ValidationError{Field: "name", Message: "Fund name must be less than 255 characters"})
	}
	if in.TargetCents <= 0 {
		errs = append(errs, &ValidationError{Field: "target_cents", Message: "Target amount must be greater than 0"})
	}
	if in.MonthlyContributionCents < 0 {
		errs = append(errs, &ValidationError{Field: "monthly_contribution_cents", Message: "Monthly contribution cannot be negative"})
	}
	return errs.Err()
}

// Fund sort keys.
const (
	SortFundName     = "name"
	SortFundProgress = "progress"
	SortFundTarget   = "target"
	SortFundCreated  = "created"
)

// SortFunds returns a sorted copy. Unknown keys sort by creation time.
func SortFunds(funds []model.SinkingFund, by string, desc bool) []model.SinkingFund {
	out := make([]model.SinkingFund, len(funds))
	copy(out, funds)

	less := func(a, b model.SinkingFund) bool {
		switch by {
		case SortFundName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortFundProgress:
			return rawProgress(a) < rawProgress(b)
		case SortFundTarget:
			return a.TargetCents < b.TargetCents
		default:
			return a.CreatedAt < b.CreatedAt
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func rawProgress(f model.SinkingFund) float64 {
	if f.TargetCents == 0 {
		return 0
	}
	return float64(f.CurrentBalanceCents) / float64(f.TargetCents)
}
