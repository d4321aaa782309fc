package finance

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// FormatPeriod turns report period keys into labels: "2024-03" becomes
// "Mar 2024" and "2024-W05" becomes "2024 Week 05". Anything else is
// returned as-is.
func FormatPeriod(period string) string {
	if year, week, ok := strings.Cut(period, "W"); ok {
		return strings.TrimRight(year, "- ") + " Week " + week
	}
	if t, err := time.Parse("2006-01", period); err == nil {
		return t.Format("Jan 2006")
	}
	return period
}

// PeriodKey formats a budget month as "2024-03".
func PeriodKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// PeriodLabel formats a budget month as "Mar 2024".
func PeriodLabel(year, month int) string {
	return FormatPeriod(PeriodKey(year, month))
}

// DateRange is an inclusive pair of YYYY-MM-DD dates.
type DateRange struct {
	Label string
	Start string
	End   string
}

// DateRangePresets returns the standard report ranges relative to now.
func DateRangePresets(now time.Time) []DateRange {
	today := now.Format(dateLayout)
	year := now.Year()
	loc := now.Location()
	return []DateRange{
		{Label: "Last 30 Days", Start: now.AddDate(0, 0, -30).Format(dateLayout), End: today},
		{Label: "Last 3 Months", Start: now.AddDate(0, -3, 0).Format(dateLayout), End: today},
		{Label: "Last 6 Months", Start: now.AddDate(0, -6, 0).Format(dateLayout), End: today},
		{Label: "This Year", Start: time.Date(year, 1, 1, 0, 0, 0, 0, loc).Format(dateLayout), End: today},
		{
			Label: "Last Year",
			Start: time.Date(year-1, 1, 1, 0, 0, 0, 0, loc).Format(dateLayout),
			End:   time.Date(year-1, 12, 31, 0, 0, 0, 0, loc).Format(dateLayout),
		},
	}
}

// PresetByLabel finds a preset case-insensitively, also accepting
// hyphenated forms such as "last-3-months".
func PresetByLabel(now time.Time, label string) (DateRange, bool) {
	want := strings.ToLower(strings.ReplaceAll(label, "-", " "))
	for _, p := range DateRangePresets(now) {
		if strings.ToLower(p.Label) == want {
			return p, true
		}
	}
	return DateRange{}, false
}
