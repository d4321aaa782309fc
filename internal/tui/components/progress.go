package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

// ProgressBar renders a block progress bar for a 0-1 fraction with a
// percentage suffix. Used by the loading screen.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = min(max(pct, 0), 1)
	width = max(width, 0)
	filled := min(int(pct*float64(width)), width)

	barColor := t.Cyan
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// TierColor maps a funding tier onto the theme.
func TierColor(tier finance.Tier) lipgloss.Color {
	t := theme.Active
	switch tier {
	case finance.TierComplete:
		return t.GreenBright
	case finance.TierHigh:
		return t.Green
	case finance.TierMid:
		return t.Yellow
	case finance.TierLow:
		return t.Orange
	default:
		return t.Red
	}
}

// FundBar renders a labelled bar for a 0-100 funding percentage, colored
// by its tier.
func FundBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active
	pct = min(max(pct, 0), 100)
	color := TierColor(finance.ProgressTier(pct))

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct/100) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct))
}

// SpendBar renders spent against allocated. The color follows the
// unclamped ratio so an overspent category reads as over even though the
// bar itself stops at full.
func SpendBar(spentCents, allocatedCents int64, width int) string {
	t := theme.Active
	width = max(width, 0)
	var ratio float64
	if allocatedCents > 0 {
		ratio = float64(spentCents) / float64(allocatedCents)
	}
	color := t.Green
	switch {
	case ratio > 1:
		color = t.Red
	case ratio > 0.9:
		color = t.Orange
	}
	filled := min(max(int(min(ratio, 1)*float64(width)), 0), width)

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(strings.Repeat("─", width-filled))
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
