package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/catlist"
	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

const (
	settingsFieldTheme = iota
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldReportMonths
	settingsFieldDefaultBudget
	settingsFieldCategorySort
	settingsFieldCategoryGroup
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func (a App) updateSettingsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		next, cmd := a.settingsStartEdit()
		return next, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (App, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "30 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	case settingsFieldReportMonths:
		ti.Placeholder = "3"
		ti.SetValue(strconv.Itoa(a.cfg.General.ReportMonths))
	case settingsFieldDefaultBudget:
		ti.Placeholder = "budget ID, empty for newest"
		if a.cfg.General.DefaultBudgetID != 0 {
			ti.SetValue(strconv.FormatInt(a.cfg.General.DefaultBudgetID, 10))
		}
	case settingsFieldCategorySort:
		ti.Placeholder = "order, name or allocated_cents; add ' desc' to reverse"
		opts := a.cats.list.Options()
		v := string(opts.SortBy)
		if opts.SortDesc {
			v += " desc"
		}
		ti.SetValue(v)
	case settingsFieldCategoryGroup:
		ti.Placeholder = "none or category_group"
		ti.SetValue(string(a.cats.list.Options().GroupBy))
	}

	ti.CursorEnd()
	a.settings.input = ti
	cmd := a.settings.input.Focus()
	return a, cmd
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited field to the live app and persists the
// config. Invalid values are rejected without saving.
func (a *App) settingsSave() {
	val := strings.TrimSpace(a.settings.input.Value())
	a.settings.saveErr = nil

	switch a.settings.cursor {
	case settingsFieldTheme:
		if !theme.Valid(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		a.cfg.Appearance.Theme = val
		theme.SetActive(val)
		a.spinner.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)
	case settingsFieldAutoRefresh:
		on, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("expected true or false")
			return
		}
		a.cfg.TUI.AutoRefresh = on
		a.autoRefresh = on
	case settingsFieldRefreshInterval:
		sec, err := strconv.Atoi(val)
		if err != nil || time.Duration(sec)*time.Second < minRefreshPeriod {
			a.settings.saveErr = fmt.Errorf("interval must be at least %d seconds", int(minRefreshPeriod.Seconds()))
			return
		}
		a.cfg.TUI.RefreshIntervalSec = sec
		a.refreshInterval = time.Duration(sec) * time.Second
	case settingsFieldReportMonths:
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 || n > 24 {
			a.settings.saveErr = fmt.Errorf("months must be between 1 and 24")
			return
		}
		a.cfg.General.ReportMonths = n
	case settingsFieldDefaultBudget:
		if val == "" {
			a.cfg.General.DefaultBudgetID = 0
			break
		}
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("budget ID must be a number")
			return
		}
		if _, ok := a.findBudget(id); !ok {
			a.settings.saveErr = fmt.Errorf("no budget with ID %d", id)
			return
		}
		a.cfg.General.DefaultBudgetID = id
	case settingsFieldCategorySort:
		key, dir, _ := strings.Cut(val, " ")
		sortKey := catlist.SortKey(key)
		switch sortKey {
		case catlist.SortOrder, catlist.SortName, catlist.SortAllocated:
		default:
			a.settings.saveErr = fmt.Errorf("unknown sort %q", key)
			return
		}
		desc := strings.TrimSpace(dir) == "desc"
		a.cfg.Categories.SortBy = string(sortKey)
		a.cfg.Categories.SortDesc = desc
		a.cats.setOptions(func(o *catlist.Options) {
			o.SortBy = sortKey
			o.SortDesc = desc
		})
	case settingsFieldCategoryGroup:
		mode := catlist.GroupMode(val)
		if mode != catlist.GroupNone && mode != catlist.GroupCategory {
			a.settings.saveErr = fmt.Errorf("group must be none or category_group")
			return
		}
		a.cfg.Categories.GroupBy = val
		a.cats.setOptions(func(o *catlist.Options) { o.GroupBy = mode })
	}

	a.settings.saveErr = config.SaveTo(a.cfgPath, a.cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	type field struct {
		label string
		value string
	}

	defaultBudget := "(newest)"
	if id := a.cfg.General.DefaultBudgetID; id != 0 {
		defaultBudget = fmt.Sprintf("#%d", id)
		if b, ok := a.findBudget(id); ok {
			defaultBudget += " " + finance.PeriodLabel(b.Year, b.Month)
		}
	}
	opts := a.cats.list.Options()
	sortValue := string(opts.SortBy)
	if opts.SortDesc {
		sortValue += " desc"
	}

	fields := []field{
		{"Theme", a.cfg.Appearance.Theme},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
		{"Report Months", strconv.Itoa(a.cfg.General.ReportMonths)},
		{"Default Budget", defaultBudget},
		{"Category Sort", sortValue},
		{"Category Group", string(opts.GroupBy)},
	}

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker)
			formBody.WriteString(label)
			formBody.WriteString(value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := components.CardInnerWidth(cw) - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	synced := "-"
	if !a.syncedAt.IsZero() {
		synced = a.syncedAt.Format("Jan 2 15:04")
	}
	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("API:             ") + valueStyle.Render(a.backend.BaseURL()) + "\n")
	infoBody.WriteString(labelStyle.Render("Budgets loaded:  ") + valueStyle.Render(cli.FormatNumber(int64(len(a.budgets)))) + "\n")
	infoBody.WriteString(labelStyle.Render("Last sync:       ") + valueStyle.Render(synced) + "\n")
	infoBody.WriteString(labelStyle.Render("Load time:       ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(a.cfgPath))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
