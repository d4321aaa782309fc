// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/tally/internal/finance"
)

// FormatCents formats integer cents as dollars with separators.
// e.g., 123456 -> "$1,234.56", -500 -> "-$5.00"
func FormatCents(cents int64) string {
	if cents < 0 {
		return "-" + FormatCents(-cents)
	}
	return fmt.Sprintf("$%s.%02d", FormatNumber(cents/100), cents%100)
}

// FormatSignedCents is FormatCents with an explicit plus sign.
func FormatSignedCents(cents int64) string {
	if cents > 0 {
		return "+" + FormatCents(cents)
	}
	return FormatCents(cents)
}

// FormatDollars formats a float dollar amount, as used by the goal and
// net-worth endpoints.
func FormatDollars(v float64) string {
	return FormatCents(finance.DollarsToCents(v))
}

// FormatCompactCents abbreviates large amounts.
// e.g., 123456 -> "$1.2K", 123456789 -> "$1.2M"
func FormatCompactCents(cents int64) string {
	if cents < 0 {
		return "-" + FormatCompactCents(-cents)
	}
	dollars := float64(cents) / 100
	switch {
	case dollars >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", dollars/1_000_000_000)
	case dollars >= 1_000_000:
		return fmt.Sprintf("$%.1fM", dollars/1_000_000)
	case dollars >= 1_000:
		return fmt.Sprintf("$%.1fK", dollars/1_000)
	default:
		return FormatCents(cents)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 percentage value.
func FormatPercent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatRatio formats a 0-1 ratio as a percentage.
func FormatRatio(f float64) string {
	return FormatPercent(f * 100)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders an API date or timestamp as "Mar 5, 2024". Values
// that do not parse are returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return s
}

// FormatMonth renders a budget period.
func FormatMonth(year, month int) string {
	return finance.PeriodLabel(year, month)
}

// StatusLabel is the display text of a budget balance status.
func StatusLabel(s finance.BalanceStatus) string {
	return s.Label()
}

// BalanceLine describes a budget balance in one sentence.
// e.g., "$500.00 left to allocate", "$20.00 over budget"
func BalanceLine(b finance.BudgetBalance) string {
	switch b.Status {
	case finance.Balanced:
		return "Balanced"
	case finance.Unallocated:
		return FormatCents(b.RemainingCents) + " left to allocate"
	default:
		return FormatCents(-b.RemainingCents) + " over budget"
	}
}

// FormatBool renders a yes/no cell.
func FormatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
