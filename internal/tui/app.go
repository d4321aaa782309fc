// Package tui provides the interactive Bubble Tea dashboard for tally.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/catlist"
	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/logging"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

// Backend is the part of the API client the dashboard talks to.
type Backend interface {
	pipeline.BudgetLister
	pipeline.ViewSource
	pipeline.DashboardSource
	UpdateCategory(ctx context.Context, budgetID int64, u model.CategoryUpdate) error
	DeleteCategory(ctx context.Context, budgetID, categoryID int64) error
	ListTransactions(ctx context.Context, q api.TransactionQuery) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, in model.TransactionCreate) (*model.Transaction, error)
	SuggestCategories(ctx context.Context, req model.SuggestionRequest, limit int) ([]model.CategorySuggestion, error)
	SuggestionFeedback(ctx context.Context, fb model.SuggestionFeedback) error
	ListFunds(ctx context.Context, includeInactive bool) ([]model.SinkingFund, error)
	NetWorthTrends(ctx context.Context, months int) ([]model.NetWorthTrend, error)
	NetWorthAlerts(ctx context.Context) ([]model.NetWorthAlert, error)
	Login(ctx context.Context, email, password string) error
	BaseURL() string
	Tokens() *api.TokenStore
}

// Cache is the offline snapshot. Budgets and categories are written after
// every successful fetch and read back when the API cannot be reached.
type Cache interface {
	pipeline.BudgetCache
	SaveCategories(budgetID int64, cats []model.BudgetCategory) error
	LoadCategories(budgetID int64) ([]model.BudgetCategory, error)
}

// Options configure NewApp.
type Options struct {
	// Cache may be nil, which disables the offline fallback.
	Cache      Cache
	Config     config.Config
	ConfigPath string
	Logger     *logging.Logger
}

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Result    *pipeline.LoadResult
	Dashboard *pipeline.Dashboard
	Err       error
	LoadTime  time.Duration
}

// ProgressMsg reports initial load progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background refresh completes.
type RefreshDataMsg struct {
	Result    *pipeline.LoadResult
	Dashboard *pipeline.Dashboard
	Err       error
}

// Tab indices, in components.Tabs order.
const (
	tabBudgets = iota
	tabCategories
	tabTransactions
	tabFunds
	tabNetWorth
	tabSettings
)

// App is the root Bubble Tea model.
type App struct {
	backend Backend
	cache   Cache
	log     *logging.Logger
	cfg     config.Config
	cfgPath string

	// Data
	budgets   []model.Budget
	dashboard *pipeline.Dashboard
	loaded    bool
	loadErr   error
	loadTime  time.Duration
	stale     bool
	syncedAt  time.Time

	// selected is the budget the Categories and Transactions tabs show.
	selected          int64
	view              *pipeline.BudgetView
	viewErr           error
	viewStale         bool
	budgetViewLoading bool

	txns        []model.Transaction
	txnsErr     error
	txnsLoaded  bool
	txnsLoading bool

	funds        []model.SinkingFund
	fundsErr     error
	fundsLoaded  bool
	fundsLoading bool
	fundCursor   int
	fundSort     string
	fundDesc     bool

	netWorth netWorthState

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	message   string
	errMsg    string

	// Per-tab state
	budgetState budgetsState
	cats        categoriesState
	quick       quickAddState
	settings    settingsState

	// Login (huh form), shown when no token is stored
	setupForm *huh.Form
	setupVals *loginValues
	needLogin bool
	loggingIn bool
	loginErr  string

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 180

	headerHeight     = 2 // tab bar + context line
	statusHeight     = 1
	minContentHeight = 5

	loadTimeout      = 60 * time.Second
	minRefreshPeriod = 10 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(backend Backend, opts Options) App {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.Path()
	}
	cfg := opts.Config
	theme.SetActive(cfg.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	refreshInterval := cfg.RefreshInterval()
	if refreshInterval < minRefreshPeriod {
		refreshInterval = minRefreshPeriod
	}

	a := App{
		backend:         backend,
		cache:           opts.Cache,
		log:             log.WithComponent(logging.ComponentTUI),
		cfg:             cfg,
		cfgPath:         cfgPath,
		selected:        cfg.General.DefaultBudgetID,
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
		needLogin:       !backend.Tokens().LoggedIn(),
		cats:            newCategoriesState(cfg.Categories),
		quick:           newQuickAddState(),
		fundSort:        finance.SortFundProgress,
		fundDesc:        true,
	}
	if a.needLogin {
		a.setupVals = &loginValues{}
		a.setupForm = newLoginForm(backend.BaseURL(), "", a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		tickCmd(),
	}
	if a.needLogin {
		cmds = append(cmds, a.setupForm.Init())
	} else {
		cmds = append(cmds, loadDataCmd(a.backend, a.cache, a.cfg.General.ReportMonths, a.loadSub))
	}
	return tea.Batch(cmds...)
}

// inputActive reports whether the user is typing somewhere. Auto-refresh
// waits while it is true so data does not shift under an edit.
func (a App) inputActive() bool {
	return a.cats.searching || a.cats.editing || a.cats.confirmDelete ||
		a.quick.active || a.settings.editing || a.needLogin
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(min(msg.Width, 72)).WithHeight(msg.Height)
		}
		a.cats.scrollToCursor(a.categoryWindow())
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case loginDoneMsg:
		return a.handleLogin(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		if msg.Err != nil {
			return a.handleLoadError(msg.Err)
		}
		return a.applyData(msg.Result, msg.Dashboard)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		if msg.Err != nil {
			return a.handleLoadError(msg.Err)
		}
		next, cmd := a.applyData(msg.Result, msg.Dashboard)
		return next, tea.Batch(cmd, next.(App).reloadTabData())

	case budgetViewMsg:
		return a.handleBudgetView(msg)

	case categoryMutationMsg:
		return a.handleCategoryMutation(msg)

	case transactionsMsg:
		return a.handleTransactions(msg)

	case suggestTickMsg:
		return a.handleSuggestTick(msg)

	case suggestionsMsg:
		return a.handleSuggestions(msg)

	case transactionCreatedMsg:
		return a.handleTransactionCreated(msg)

	case fundsMsg:
		return a.handleFunds(msg)

	case netWorthMsg:
		return a.handleNetWorth(msg)

	case spinner.TickMsg:
		if !a.loaded || a.loggingIn {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.shouldAutoRefresh(time.Now()) {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.backend, a.cache, a.cfg.General.ReportMonths))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks) to whichever input owns them.
	switch {
	case a.needLogin && a.setupForm != nil:
		return a.updateSetupForm(msg)
	case a.cats.searching:
		var cmd tea.Cmd
		a.cats.search, cmd = a.cats.search.Update(msg)
		return a, cmd
	case a.cats.editing:
		var cmd tea.Cmd
		a.cats.input, cmd = a.cats.input.Update(msg)
		return a, cmd
	case a.settings.editing:
		var cmd tea.Cmd
		a.settings.input, cmd = a.settings.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) shouldAutoRefresh(now time.Time) bool {
	return a.loaded && a.autoRefresh && !a.refreshing && !a.inputActive() &&
		now.Sub(a.lastRefresh) >= a.refreshInterval
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// The login form intercepts all keys
	if a.needLogin && a.setupForm != nil {
		if a.loggingIn {
			return a, nil
		}
		return a.updateSetupForm(msg)
	}

	if !a.loaded {
		if key == "q" {
			return a, tea.Quit
		}
		return a, nil
	}

	// Modal inputs own the keyboard while open
	switch {
	case a.activeTab == tabSettings && a.settings.editing:
		return a.updateSettingsInput(msg)
	case a.activeTab == tabCategories && a.cats.searching:
		return a.updateCategorySearch(msg)
	case a.activeTab == tabCategories && a.cats.editing:
		return a.updateCategoryEdit(msg)
	case a.activeTab == tabCategories && a.cats.confirmDelete:
		return a.updateCategoryConfirm(msg)
	case a.activeTab == tabTransactions && a.quick.active:
		return a.updateQuickAdd(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	var (
		next    App
		cmd     tea.Cmd
		handled bool
	)
	switch a.activeTab {
	case tabBudgets:
		next, cmd, handled = a.updateBudgetsKey(key)
	case tabCategories:
		next, cmd, handled = a.updateCategoriesKey(key)
	case tabTransactions:
		next, cmd, handled = a.updateTransactionsKey(key)
	case tabFunds:
		next, cmd, handled = a.updateFundsKey(key)
	case tabSettings:
		next, cmd, handled = a.updateSettingsKey(key)
	}
	if handled {
		return next, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			a.message, a.errMsg = "", ""
			return a, refreshDataCmd(a.backend, a.cache, a.cfg.General.ReportMonths)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		a.cfg.TUI.AutoRefresh = a.autoRefresh
		if err := config.SaveTo(a.cfgPath, a.cfg); err != nil {
			a.errMsg = "Could not save config: " + err.Error()
		}
		return a, nil
	case "left", "shift+tab":
		return a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
	case "right", "tab":
		return a.switchTab((a.activeTab + 1) % len(components.Tabs))
	}

	if r := []rune(key); len(r) == 1 {
		if idx := components.TabIdxByKey(r[0]); idx >= 0 {
			return a.switchTab(idx)
		}
	}
	return a, nil
}

// switchTab activates a tab and starts any load it still needs.
func (a App) switchTab(idx int) (tea.Model, tea.Cmd) {
	a.activeTab = idx
	cmd := a.ensureTabData()
	return a, cmd
}

// ensureTabData returns the command that fills the active tab, or nil when
// its data is already present or loading.
func (a *App) ensureTabData() tea.Cmd {
	switch a.activeTab {
	case tabCategories:
		if a.view == nil && !a.budgetViewLoading && a.selected != 0 {
			a.budgetViewLoading = true
			return loadViewCmd(a.backend, a.cache, a.selectedBudget())
		}
	case tabTransactions:
		if !a.txnsLoaded && !a.txnsLoading && a.selected != 0 {
			a.txnsLoading = true
			return loadTransactionsCmd(a.backend, a.selected)
		}
	case tabFunds:
		if !a.fundsLoaded && !a.fundsLoading {
			a.fundsLoading = true
			return loadFundsCmd(a.backend)
		}
	case tabNetWorth:
		if !a.netWorth.loaded && !a.netWorth.loading {
			a.netWorth.loading = true
			return loadNetWorthCmd(a.backend, trendMonths)
		}
	}
	return nil
}

// reloadTabData refetches everything that has been loaded once, after a
// refresh.
func (a App) reloadTabData() tea.Cmd {
	var cmds []tea.Cmd
	if a.selected != 0 && a.view != nil {
		cmds = append(cmds, loadViewCmd(a.backend, a.cache, a.selectedBudget()))
	}
	if a.txnsLoaded && a.selected != 0 {
		cmds = append(cmds, loadTransactionsCmd(a.backend, a.selected))
	}
	if a.fundsLoaded {
		cmds = append(cmds, loadFundsCmd(a.backend))
	}
	if a.netWorth.loaded {
		cmds = append(cmds, loadNetWorthCmd(a.backend, trendMonths))
	}
	return tea.Batch(cmds...)
}

// applyData installs a fresh budget list and keeps the selection when the
// selected budget still exists.
func (a App) applyData(res *pipeline.LoadResult, dash *pipeline.Dashboard) (tea.Model, tea.Cmd) {
	a.loadErr = nil
	if dash != nil {
		a.dashboard = dash
	}
	if res == nil {
		return a, nil
	}
	a.budgets = sortBudgets(res.Budgets)
	a.stale = res.Stale
	a.syncedAt = res.SyncedAt
	if res.Stale && res.FetchErr != nil {
		a.log.Warn("showing cached budgets", logging.FieldError, res.FetchErr)
	}
	if res.CacheErr != nil {
		a.log.Warn("cache refresh failed", logging.FieldError, res.CacheErr)
	}

	if _, ok := a.findBudget(a.selected); !ok {
		a.selected = 0
		if len(a.budgets) > 0 {
			a.selected = a.budgets[0].ID
		}
		a.resetBudgetData()
	}
	a.budgetState.cursor = min(a.budgetState.cursor, max(len(a.budgets)-1, 0))
	cmd := a.ensureTabData()
	return a, cmd
}

// handleLoadError records a failed load. An expired session sends the
// user back to the login form.
func (a App) handleLoadError(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, api.ErrUnauthorized) {
		return a.requireLogin("Session expired, please log in again")
	}
	a.loadErr = err
	a.errMsg = err.Error()
	a.log.Warn("load failed", logging.FieldError, err)
	return a, nil
}

func (a *App) resetBudgetData() {
	a.view, a.viewErr, a.viewStale, a.budgetViewLoading = nil, nil, false, false
	a.txns, a.txnsErr, a.txnsLoaded, a.txnsLoading = nil, nil, false, false
	a.cats.reset()
	a.quick.reset()
}

func (a App) findBudget(id int64) (model.Budget, bool) {
	for _, b := range a.budgets {
		if b.ID == id {
			return b, true
		}
	}
	return model.Budget{}, false
}

func (a App) selectedBudget() model.Budget {
	b, _ := a.findBudget(a.selected)
	return b
}

// sortBudgets orders budgets newest period first.
func sortBudgets(budgets []model.Budget) []model.Budget {
	out := make([]model.Budget, len(budgets))
	copy(out, budgets)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) contentHeight() int {
	return max(a.height-headerHeight-statusHeight, minContentHeight)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needLogin && a.setupForm != nil {
		return a.viewLogin()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  tally needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ tally"))
	b.WriteString(subtitleStyle.Render(" · budgets, funds, net worth"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	if a.progressMax > 0 {
		b.WriteString(subtitleStyle.Render(" Loading your data\n\n"))
		barW := min(max(a.width-30, 20), 40)
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
	} else {
		b.WriteString(subtitleStyle.Render(" Connecting to " + a.backend.BaseURL()))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"b c t f n x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move in lists"},
			{"Enter", "Open budget / toggle group"},
		}},
		{"Categories", []struct{ key, desc string }{
			{"/", "Search"},
			{"s S", "Cycle sort / reverse"},
			{"g", "Group by category group"},
			{"e", "Edit allocation"},
			{"d", "Delete category"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"a", "Quick-add transaction"},
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-12s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderContextLine(w)

	statusBar := components.RenderStatusBar(w, components.Status{
		Message:     a.message,
		Err:         a.errMsg,
		LastRefresh: a.lastRefresh,
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Stale:       a.stale || a.viewStale,
	})

	contentH := a.contentHeight()

	var content string
	switch a.activeTab {
	case tabBudgets:
		content = a.renderBudgetsTab(cw, contentH)
	case tabCategories:
		content = a.renderCategoriesTab(cw, contentH)
	case tabTransactions:
		content = a.renderTransactionsTab(cw, contentH)
	case tabFunds:
		content = a.renderFundsTab(cw, contentH)
	case tabNetWorth:
		content = a.renderNetWorthTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderContextLine shows which budget the budget-scoped tabs are on.
func (a App) renderContextLine(w int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	line := dim.Render(" budget ")
	if b, ok := a.findBudget(a.selected); ok {
		line += accent.Render(cli.FormatMonth(b.Year, b.Month))
	} else {
		line += dim.Render("none")
	}
	line += dim.Render("  ·  " + a.backend.BaseURL())
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(line)
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.needLogin || a.inputActive() {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		next, cmd, _ := a.moveCursor(-1)
		return next, cmd
	case tea.MouseButtonWheelDown:
		next, cmd, _ := a.moveCursor(1)
		return next, cmd
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				return a.switchTab(tab)
			}
		}
	}
	return a, nil
}

// moveCursor moves the list cursor of the active tab.
func (a App) moveCursor(delta int) (App, tea.Cmd, bool) {
	switch a.activeTab {
	case tabBudgets:
		a.budgetState.move(delta, len(a.budgets))
	case tabCategories:
		a.cats.move(delta, a.categoryWindow())
	case tabTransactions:
		a.quick.listCursor = clampIndex(a.quick.listCursor+delta, len(a.txns))
	case tabFunds:
		a.fundCursor = clampIndex(a.fundCursor+delta, len(a.funds))
	default:
		return a, nil, false
	}
	return a, nil, true
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the same widths RenderTabBar draws.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}

func clampIndex(i, n int) int {
	return min(max(i, 0), max(n-1, 0))
}

// categoryWindow is the catlist viewport for the current terminal size.
func (a App) categoryWindow() catlist.Window {
	return catlist.Window{
		Height:     max(a.contentHeight()-categoryChrome, categoryItemHeight),
		ItemHeight: categoryItemHeight,
	}
}
