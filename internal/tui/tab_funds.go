package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

var fundSortKeys = []string{finance.SortFundProgress, finance.SortFundName, finance.SortFundTarget, finance.SortFundCreated}

type fundsMsg struct {
	funds []model.SinkingFund
	err   error
}

func loadFundsCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		funds, err := b.ListFunds(ctx, false)
		return fundsMsg{funds: funds, err: err}
	}
}

func (a App) handleFunds(msg fundsMsg) (tea.Model, tea.Cmd) {
	a.fundsLoading = false
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return a.requireLogin("Session expired, please log in again")
		}
		a.fundsErr = msg.err
		return a, nil
	}
	a.funds = finance.SortFunds(msg.funds, a.fundSort, a.fundDesc)
	a.fundsErr = nil
	a.fundsLoaded = true
	a.fundCursor = clampIndex(a.fundCursor, len(a.funds))
	return a, nil
}

func nextFundSort(cur string) string {
	for i, k := range fundSortKeys {
		if k == cur {
			return fundSortKeys[(i+1)%len(fundSortKeys)]
		}
	}
	return fundSortKeys[0]
}

func (a App) updateFundsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.fundCursor = clampIndex(a.fundCursor+1, len(a.funds))
	case "k", "up":
		a.fundCursor = clampIndex(a.fundCursor-1, len(a.funds))
	case "s":
		a.fundSort = nextFundSort(a.fundSort)
		a.funds = finance.SortFunds(a.funds, a.fundSort, a.fundDesc)
	case "S":
		a.fundDesc = !a.fundDesc
		a.funds = finance.SortFunds(a.funds, a.fundSort, a.fundDesc)
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderFundsTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	switch {
	case a.fundsErr != nil && len(a.funds) == 0:
		return components.ContentCard("Sinking funds",
			lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render("Could not load funds: "+a.fundsErr.Error()), cw)
	case !a.fundsLoaded:
		return components.ContentCard("Sinking funds", muted.Render(a.spinner.View()+" Loading funds..."), cw)
	case len(a.funds) == 0:
		return components.ContentCard("Sinking funds", muted.Render("No active funds. Create one with `tally funds create`."), cw)
	}

	var saved, target int64
	for _, f := range a.funds {
		saved += f.CurrentBalanceCents
		target += f.TargetCents
	}
	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Saved", Value: cli.FormatCents(saved)},
		{Label: "Target", Value: cli.FormatCents(target)},
		{Label: "Progress", Value: cli.FormatPercent(finance.FundProgress(saved, target)),
			Tone: components.TierColor(finance.ProgressTier(finance.FundProgress(saved, target)))},
		{Label: "Funds", Value: cli.FormatNumber(int64(len(a.funds)))},
	}, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	rows := max((h-4-4)/2, 1)
	start := 0
	if a.fundCursor >= rows {
		start = a.fundCursor - rows + 1
	}

	var lines []string
	for i := start; i < len(a.funds) && i < start+rows; i++ {
		lines = append(lines, a.renderFundRow(a.funds[i], i == a.fundCursor, innerW)...)
	}
	dir := "asc"
	if a.fundDesc {
		dir = "desc"
	}
	lines = append(lines, dim.Render(fmt.Sprintf("[s] sort: %s %s  [S] reverse", a.fundSort, dir)))
	b.WriteString(components.ContentCard("Sinking funds", strings.Join(lines, "\n"), cw))
	return b.String()
}

func (a App) renderFundRow(f model.SinkingFund, selected bool, innerW int) []string {
	t := theme.Active
	bg := t.Surface
	marker := "  "
	if selected {
		bg = t.SurfaceBright
		marker = "▸ "
	}
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
	fill := func(s string) string {
		return s + lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", max(innerW-lipgloss.Width(s), 0)))
	}

	pct := finance.FundProgress(f.CurrentBalanceCents, f.TargetCents)
	labelW := min(24, innerW/3)
	barW := max(innerW-2-labelW-7, 4)
	line1 := lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg).Render(marker) +
		components.FundBar(f.Name, pct, labelW, barW)

	eta := "no monthly contribution"
	remaining := f.TargetCents - f.CurrentBalanceCents
	if remaining <= 0 {
		eta = "target reached"
	} else if months, ok := finance.MonthsToTarget(remaining, f.MonthlyContributionCents); ok {
		eta = fmt.Sprintf("%d months at %s/mo", months, cli.FormatCents(f.MonthlyContributionCents))
	}
	detail := fmt.Sprintf("  %s of %s · %s", cli.FormatCents(f.CurrentBalanceCents), cli.FormatCents(f.TargetCents), eta)
	if f.TargetDate != "" {
		detail += " · due " + cli.FormatDate(f.TargetDate)
	}
	return []string{fill(line1), fill(muted.Render(truncStr(detail, innerW)))}
}
