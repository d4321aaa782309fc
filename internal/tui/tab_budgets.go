package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/pipeline"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

type budgetsState struct {
	cursor int
	offset int
}

func (s *budgetsState) move(delta, n int) {
	s.cursor = clampIndex(s.cursor+delta, n)
}

func (a App) updateBudgetsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.budgetState.move(1, len(a.budgets))
	case "k", "up":
		a.budgetState.move(-1, len(a.budgets))
	case "enter":
		if len(a.budgets) == 0 {
			return a, nil, true
		}
		id := a.budgets[a.budgetState.cursor].ID
		if id != a.selected {
			a.selected = id
			a.resetBudgetData()
		}
		a.activeTab = tabCategories
		cmd := a.ensureTabData()
		return a, cmd, true
	case "*":
		if len(a.budgets) == 0 {
			return a, nil, true
		}
		b := a.budgets[a.budgetState.cursor]
		a.cfg.General.DefaultBudgetID = b.ID
		if err := config.SaveTo(a.cfgPath, a.cfg); err != nil {
			a.errMsg = "Could not save config: " + err.Error()
		} else {
			a.message = "Default budget: " + finance.PeriodLabel(b.Year, b.Month)
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderBudgetsTab(cw, h int) string {
	t := theme.Active
	var b strings.Builder

	if len(a.budgets) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		msg := "No budgets yet. Create one with `tally budgets create`."
		if a.loadErr != nil {
			msg = "Could not load budgets: " + a.loadErr.Error()
		}
		return components.ContentCard("Budgets", muted.Render(msg), cw)
	}

	cursorBudget := a.budgets[a.budgetState.cursor]
	b.WriteString(components.MetricCardRow(balanceMetrics(finance.Balance(cursorBudget.IncomeCents, cursorBudget.Categories)), cw))
	b.WriteString("\n")

	// Fixed rows: metric row (4), bottom cards (~7).
	midH := max(h-4-7, 6)
	widths := components.LayoutRow(cw, 2)
	listW := min(widths[0], 48)
	chartW := cw - listW

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Budgets", a.renderBudgetList(components.CardInnerWidth(listW), midH-3), listW),
		components.ContentCard("Monthly spending", a.renderTrendChart(components.CardInnerWidth(chartW), midH-4), chartW),
	}))
	b.WriteString("\n")
	b.WriteString(a.renderDashboardCards(cw))
	return b.String()
}

func (a App) renderBudgetList(innerW, rows int) string {
	t := theme.Active
	rows = max(rows, 1)

	// Keep the cursor visible.
	offset := a.budgetState.offset
	if a.budgetState.cursor < offset {
		offset = a.budgetState.cursor
	}
	if a.budgetState.cursor >= offset+rows {
		offset = a.budgetState.cursor - rows + 1
	}

	var lines []string
	for i := offset; i < len(a.budgets) && i < offset+rows; i++ {
		bud := a.budgets[i]
		bal := finance.Balance(bud.IncomeCents, bud.Categories)
		bg := t.Surface
		marker := "  "
		if i == a.budgetState.cursor {
			bg = t.SurfaceBright
			marker = "▸ "
		}
		star := " "
		if bud.ID == a.selected {
			star = "●"
		}
		statusColor := t.Positive()
		switch bal.Status {
		case finance.Unallocated:
			statusColor = t.Warning()
		case finance.OverBudget:
			statusColor = t.Negative()
		}

		period := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg).
			Render(fmt.Sprintf("%-9s", finance.PeriodLabel(bud.Year, bud.Month)))
		income := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg).
			Render(fmt.Sprintf("%13s", cli.FormatCents(bud.IncomeCents)))
		status := lipgloss.NewStyle().Foreground(statusColor).Background(bg).
			Render(" " + truncStr(bal.Status.Label(), 12))
		line := lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg).Render(marker+star+" ") +
			period + income + status
		line += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", max(innerW-lipgloss.Width(line), 0)))
		lines = append(lines, line)
	}
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	lines = append(lines, dim.Render("[enter] open  [*] default"))
	return strings.Join(lines, "\n")
}

func (a App) renderTrendChart(innerW, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if a.dashboard == nil || a.dashboard.Reports == nil {
		return muted.Render(dashboardGap(a.dashboard, pipeline.PartReports))
	}
	trend := a.dashboard.Reports.MonthlyTrend
	if len(trend) == 0 {
		return muted.Render("No spending recorded yet")
	}
	vals := make([]float64, len(trend))
	labels := make([]string, len(trend))
	for i, m := range trend {
		vals[i] = float64(m.TotalCents) / 100
		labels[i] = monthAbbrev(m.Month)
	}
	return components.BarChart(vals, labels, t.Accent, innerW, max(h-1, 3))
}

// monthAbbrev turns "2024-03" into "Mar".
func monthAbbrev(period string) string {
	label := finance.FormatPeriod(period)
	if name, _, ok := strings.Cut(label, " "); ok && len(name) == 3 {
		return name
	}
	return label
}

// dashboardGap explains a missing dashboard part.
func dashboardGap(d *pipeline.Dashboard, part string) string {
	if d == nil {
		return "Unavailable offline"
	}
	if err := d.Errors[part]; err != nil {
		return "Unavailable: " + err.Error()
	}
	return "No data"
}

func (a App) renderDashboardCards(cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	kv := func(k, v string) string { return label.Render(fmt.Sprintf("%-12s", k)) + value.Render(v) }

	widths := components.LayoutRow(cw, 4)
	d := a.dashboard

	var reports, funds, nw, inv string
	if d != nil && d.Reports != nil {
		r := d.Reports
		reports = strings.Join([]string{
			kv("Income", cli.FormatCompactCents(r.TotalIncomeCents)),
			kv("Spent", cli.FormatCompactCents(r.TotalSpentCents)),
			kv("Remaining", cli.FormatCompactCents(r.RemainingCents)),
		}, "\n")
		if len(r.TopCategories) > 0 {
			reports += "\n" + kv("Top", truncStr(r.TopCategories[0].Name, components.CardInnerWidth(widths[0])-12))
		}
	} else {
		reports = label.Render(dashboardGap(d, pipeline.PartReports))
	}

	if d != nil && d.Funds != nil {
		f := d.Funds
		funds = strings.Join([]string{
			kv("Saved", cli.FormatCompactCents(f.TotalSavedCents)),
			kv("Target", cli.FormatCompactCents(f.TotalTargetCents)),
			components.FundBar("", f.OverallProgressPercentage, 0, max(components.CardInnerWidth(widths[1])-7, 4)),
		}, "\n")
	} else {
		funds = label.Render(dashboardGap(d, pipeline.PartFunds))
	}

	if d != nil && d.NetWorth != nil {
		n := d.NetWorth
		change := "-"
		if n.MonthlyChangePct != nil {
			change = finance.FormatSignedPercent(*n.MonthlyChangePct)
		}
		nw = strings.Join([]string{
			kv("Net worth", cli.FormatCompactCents(finance.DollarsToCents(n.CurrentNetWorth))),
			kv("Assets", cli.FormatCompactCents(finance.DollarsToCents(n.TotalAssets))),
			kv("Debts", cli.FormatCompactCents(finance.DollarsToCents(n.TotalLiabilities))),
			kv("Month", change),
		}, "\n")
	} else {
		nw = label.Render(dashboardGap(d, pipeline.PartNetWorth))
	}

	if d != nil && d.Invoices != nil {
		m := d.Invoices
		inv = strings.Join([]string{
			kv("Outstanding", fmt.Sprintf("%d · %s", m.OutstandingCount, cli.FormatCompactCents(m.OutstandingTotalCents))),
			kv("Overdue", fmt.Sprintf("%d · %s", m.OverdueCount, cli.FormatCompactCents(m.OverdueTotalCents))),
		}, "\n")
	} else {
		inv = label.Render(dashboardGap(d, pipeline.PartInvoices))
	}

	return components.CardRow([]string{
		components.ContentCard(fmt.Sprintf("Last %d months", max(a.cfg.General.ReportMonths, 1)), reports, widths[0]),
		components.ContentCard("Sinking funds", funds, widths[1]),
		components.ContentCard("Net worth", nw, widths[2]),
		components.ContentCard("Invoices", inv, widths[3]),
	})
}
