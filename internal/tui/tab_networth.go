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

// trendMonths is how much history the Net Worth tab charts.
const trendMonths = 12

type netWorthState struct {
	trends  []model.NetWorthTrend
	alerts  []model.NetWorthAlert
	err     error
	loaded  bool
	loading bool
}

type netWorthMsg struct {
	trends []model.NetWorthTrend
	alerts []model.NetWorthAlert
	err    error
}

// loadNetWorthCmd fetches trends and alerts. Alerts are optional: their
// failure leaves the list empty.
func loadNetWorthCmd(b Backend, months int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		trends, err := b.NetWorthTrends(ctx, months)
		if err != nil {
			return netWorthMsg{err: err}
		}
		alerts, _ := b.NetWorthAlerts(ctx)
		return netWorthMsg{trends: trends, alerts: alerts}
	}
}

func (a App) handleNetWorth(msg netWorthMsg) (tea.Model, tea.Cmd) {
	a.netWorth.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return a.requireLogin("Session expired, please log in again")
		}
		a.netWorth.err = msg.err
		return a, nil
	}
	a.netWorth.trends = msg.trends
	a.netWorth.alerts = msg.alerts
	a.netWorth.err = nil
	a.netWorth.loaded = true
	return a, nil
}

func (a App) renderNetWorthTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	if a.dashboard != nil && a.dashboard.NetWorth != nil {
		b.WriteString(components.MetricCardRow(netWorthMetrics(*a.dashboard.NetWorth), cw))
		b.WriteString("\n")
		h -= 5
	}

	switch {
	case a.netWorth.err != nil:
		b.WriteString(components.ContentCard("Trend",
			lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render("Could not load net worth: "+a.netWorth.err.Error()), cw))
		return b.String()
	case !a.netWorth.loaded:
		b.WriteString(components.ContentCard("Trend", muted.Render(a.spinner.View()+" Loading history..."), cw))
		return b.String()
	}

	alertsBody := a.renderAlerts(components.CardInnerWidth(cw))
	alertsH := lipgloss.Height(alertsBody) + 3
	chartH := max(h-alertsH-4, 3)

	var chart string
	if len(a.netWorth.trends) == 0 {
		chart = muted.Render("No snapshots yet")
	} else {
		vals := make([]float64, len(a.netWorth.trends))
		labels := make([]string, len(a.netWorth.trends))
		for i, p := range a.netWorth.trends {
			vals[i] = p.NetWorth
			labels[i] = monthAbbrev(trendPeriod(p.Date))
		}
		chart = components.BarChart(vals, labels, t.Accent, components.CardInnerWidth(cw), chartH)
	}
	b.WriteString(components.ContentCard(fmt.Sprintf("Net worth · last %d months", trendMonths), chart, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Alerts", alertsBody, cw))
	return b.String()
}

// trendPeriod cuts a "2024-03-01" date to its "2024-03" month.
func trendPeriod(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}

func netWorthMetrics(n model.NetWorthSummary) []components.Metric {
	t := theme.Active
	change := ""
	tone := lipgloss.Color("")
	if n.MonthlyChange != nil {
		cents := finance.DollarsToCents(*n.MonthlyChange)
		change = cli.FormatSignedCents(cents) + " this month"
		if n.MonthlyChangePct != nil {
			change += " (" + finance.FormatSignedPercent(*n.MonthlyChangePct) + ")"
		}
		tone = t.Positive()
		if cents < 0 {
			tone = t.Negative()
		}
	}
	return []components.Metric{
		{Label: "Net worth", Value: cli.FormatCents(finance.DollarsToCents(n.CurrentNetWorth)), Delta: change, Tone: tone},
		{Label: "Assets", Value: cli.FormatCents(finance.DollarsToCents(n.TotalAssets)), Delta: fmt.Sprintf("%d accounts", n.AssetCount)},
		{Label: "Liabilities", Value: cli.FormatCents(finance.DollarsToCents(n.TotalLiabilities)), Delta: fmt.Sprintf("%d debts", n.LiabilityCount)},
		{Label: "Liquid", Value: cli.FormatCents(finance.DollarsToCents(n.LiquidAssets))},
	}
}

func (a App) renderAlerts(innerW int) string {
	t := theme.Active
	if len(a.netWorth.alerts) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No alerts")
	}
	var lines []string
	for _, al := range a.netWorth.alerts {
		color := t.Cyan
		switch al.Severity {
		case "high", "critical":
			color = t.Red
		case "medium", "warning":
			color = t.Orange
		}
		badge := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true).Render("● ")
		msg := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Render(truncStr(al.Message, innerW-2))
		lines = append(lines, badge+msg)
	}
	return strings.Join(lines, "\n")
}
