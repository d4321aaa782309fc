package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/catlist"
	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
)

type fakeBackend struct {
	mu          sync.Mutex
	tokens      *api.TokenStore
	budgets     []model.Budget
	cats        []model.BudgetCategory
	updates     []model.CategoryUpdate
	deletes     []int64
	created     []model.TransactionCreate
	feedback    []model.SuggestionFeedback
	suggestions []model.CategorySuggestion
	updateErr   error
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	tokens := api.NewTokenStore(filepath.Join(t.TempDir(), "token"))
	tokens.Seed("test-token")
	return &fakeBackend{
		tokens: tokens,
		budgets: []model.Budget{
			{ID: 1, Year: 2024, Month: 1, IncomeCents: 500000},
			{ID: 2, Year: 2024, Month: 3, IncomeCents: 600000},
		},
		cats: []model.BudgetCategory{
			{ID: 10, BudgetID: 2, Name: "Rent", AllocatedCents: 200000, Order: 1, CategoryGroup: "Housing", IsActive: 1},
			{ID: 11, BudgetID: 2, Name: "Groceries", AllocatedCents: 60000, Order: 2, CategoryGroup: "Food", IsActive: 1},
			{ID: 12, BudgetID: 2, Name: "Coffee", AllocatedCents: 5000, Order: 3, IsActive: 1},
		},
		suggestions: []model.CategorySuggestion{
			{CategoryID: 11, CategoryName: "Groceries", Confidence: 0.9, Reason: model.ReasonKeywordMatch},
			{CategoryID: 12, CategoryName: "Coffee", Confidence: 0.4, Reason: model.ReasonFrequentlyUsed},
		},
	}
}

func (f *fakeBackend) ListBudgets(context.Context) ([]model.Budget, error) {
	return f.budgets, nil
}

func (f *fakeBackend) GetBudget(_ context.Context, id int64) (*model.BudgetSummary, error) {
	for _, b := range f.budgets {
		if b.ID == id {
			b.Categories = f.cats
			return &model.BudgetSummary{Budget: b}, nil
		}
	}
	return nil, api.ErrNotFound
}

func (f *fakeBackend) ListCategories(context.Context, int64, api.CategoryQuery) (*model.CategoryPage, error) {
	return &model.CategoryPage{Categories: f.cats, Total: len(f.cats)}, nil
}

func (f *fakeBackend) CategoryGroups(context.Context, int64) ([]model.CategoryGroupInfo, error) {
	return nil, nil
}

func (f *fakeBackend) BudgetTransactionSummary(_ context.Context, id int64) (*model.TransactionSummary, error) {
	return &model.TransactionSummary{BudgetID: id}, nil
}

func (f *fakeBackend) DashboardMetrics(context.Context) (*model.MetricsSummary, error) {
	return &model.MetricsSummary{}, nil
}

func (f *fakeBackend) ReportsDashboard(context.Context, int) (*model.ReportsDashboard, error) {
	return &model.ReportsDashboard{}, nil
}

func (f *fakeBackend) FundSummary(context.Context) (*model.FundSummary, error) {
	return &model.FundSummary{}, nil
}

func (f *fakeBackend) NetWorthSummary(context.Context) (*model.NetWorthSummary, error) {
	return &model.NetWorthSummary{}, nil
}

func (f *fakeBackend) UpdateCategory(_ context.Context, _ int64, u model.CategoryUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	return f.updateErr
}

func (f *fakeBackend) DeleteCategory(_ context.Context, _, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeBackend) ListTransactions(context.Context, api.TransactionQuery) ([]model.Transaction, error) {
	return nil, nil
}

func (f *fakeBackend) CreateTransaction(_ context.Context, in model.TransactionCreate) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return &model.Transaction{ID: 99, BudgetID: in.BudgetID, CategoryID: in.CategoryID, AmountCents: in.AmountCents}, nil
}

func (f *fakeBackend) SuggestCategories(context.Context, model.SuggestionRequest, int) ([]model.CategorySuggestion, error) {
	return f.suggestions, nil
}

func (f *fakeBackend) SuggestionFeedback(_ context.Context, fb model.SuggestionFeedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, fb)
	return nil
}

func (f *fakeBackend) ListFunds(context.Context, bool) ([]model.SinkingFund, error) {
	return nil, nil
}

func (f *fakeBackend) NetWorthTrends(context.Context, int) ([]model.NetWorthTrend, error) {
	return nil, nil
}

func (f *fakeBackend) NetWorthAlerts(context.Context) ([]model.NetWorthAlert, error) {
	return nil, nil
}

func (f *fakeBackend) Login(context.Context, string, string) error { return nil }
func (f *fakeBackend) BaseURL() string                              { return "http://test" }
func (f *fakeBackend) Tokens() *api.TokenStore                      { return f.tokens }

// newLoadedApp returns an App that has received its initial data.
func newLoadedApp(t *testing.T, fb *fakeBackend, cfg config.Config) App {
	t.Helper()
	a := NewApp(fb, Options{Config: cfg, ConfigPath: filepath.Join(t.TempDir(), "config.toml")})
	a = update(t, a, tea.WindowSizeMsg{Width: 140, Height: 40})
	return update(t, a, DataLoadedMsg{Result: &pipeline.LoadResult{Budgets: fb.budgets}})
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	next, _ := a.Update(msg)
	return next.(App)
}

func updateCmd(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	next, cmd := a.Update(msg)
	return next.(App), cmd
}

// runCmd executes cmd and any batched commands, returning their messages.
// Tick commands would block, so callers only pass commands that do I/O.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func keys(t *testing.T, a App, ks ...string) App {
	t.Helper()
	for _, k := range ks {
		a = update(t, a, keyMsg(k))
	}
	return a
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// withView opens the Categories tab on budget 2 with its detail loaded.
func withView(t *testing.T, fb *fakeBackend, a App) App {
	t.Helper()
	view, err := pipeline.LoadBudgetView(context.Background(), fb, a.selected)
	if err != nil {
		t.Fatalf("LoadBudgetView: %v", err)
	}
	a = update(t, a, budgetViewMsg{budgetID: a.selected, view: view})
	return keys(t, a, "c")
}

func TestDataLoadedSelectsNewestBudget(t *testing.T) {
	fb := newFakeBackend(t)
	a := newLoadedApp(t, fb, config.DefaultConfig())
	if a.selected != 2 {
		t.Fatalf("selected = %d, want 2 (March is newest)", a.selected)
	}
	if a.budgets[0].ID != 2 {
		t.Errorf("budgets not sorted newest first: %+v", a.budgets)
	}
}

func TestDataLoadedKeepsDefaultBudget(t *testing.T) {
	fb := newFakeBackend(t)
	cfg := config.DefaultConfig()
	cfg.General.DefaultBudgetID = 1
	a := newLoadedApp(t, fb, cfg)
	if a.selected != 1 {
		t.Fatalf("selected = %d, want configured default 1", a.selected)
	}
}

func TestCategorySortAndGroupKeys(t *testing.T) {
	fb := newFakeBackend(t)
	a := withView(t, fb, newLoadedApp(t, fb, config.DefaultConfig()))

	if a.activeTab != tabCategories {
		t.Fatalf("activeTab = %d", a.activeTab)
	}
	if got := a.cats.list.Len(); got != 3 {
		t.Fatalf("list has %d rows, want 3", got)
	}

	a = keys(t, a, "s")
	if got := a.cats.list.Options().SortBy; got != catlist.SortName {
		t.Errorf("after s, SortBy = %q, want name", got)
	}
	if first := a.cats.list.Items()[0].Category.Name; first != "Coffee" {
		t.Errorf("first by name = %q", first)
	}

	a = keys(t, a, "S")
	if !a.cats.list.Options().SortDesc {
		t.Error("S should reverse the sort")
	}

	a = keys(t, a, "g")
	items := a.cats.list.Items()
	if items[0].Kind != catlist.ItemHeader {
		t.Fatalf("grouped list should start with a header, got %+v", items[0])
	}
	last := items[len(items)-2]
	if last.Kind != catlist.ItemHeader || last.Group.Name != "Ungrouped" {
		t.Errorf("Ungrouped should be the last group, got %+v", last)
	}

	// Folding the first group drops its category row.
	before := a.cats.list.Len()
	a = keys(t, a, "enter")
	if a.cats.list.Len() != before-1 {
		t.Errorf("fold: %d rows, want %d", a.cats.list.Len(), before-1)
	}
}

func TestCategorySearchFiltersLive(t *testing.T) {
	fb := newFakeBackend(t)
	a := withView(t, fb, newLoadedApp(t, fb, config.DefaultConfig()))

	a = keys(t, a, "/", "g", "R", "o")
	if !a.cats.searching {
		t.Fatal("search should stay open while typing")
	}
	if got := a.cats.list.Options().Search; got != "gRo" {
		t.Fatalf("search = %q", got)
	}
	if n := a.cats.list.Len(); n != 1 || a.cats.list.Items()[0].Category.Name != "Groceries" {
		t.Fatalf("filtered rows = %+v", a.cats.list.Items())
	}
	if !a.inputActive() {
		t.Error("an open search is input")
	}

	a = keys(t, a, "esc")
	if a.cats.searching || a.cats.list.Options().Search != "" || a.cats.list.Len() != 3 {
		t.Errorf("esc should clear the search: searching=%v len=%d", a.cats.searching, a.cats.list.Len())
	}
}

func TestCategoryEditSavesThroughBackend(t *testing.T) {
	fb := newFakeBackend(t)
	a := withView(t, fb, newLoadedApp(t, fb, config.DefaultConfig()))

	a = keys(t, a, "e")
	if !a.cats.editing || a.cats.editID != 10 {
		t.Fatalf("editing=%v id=%d", a.cats.editing, a.cats.editID)
	}
	// Replace "2000.00" with "1,500".
	for range len("2000.00") {
		a = keys(t, a, "backspace")
	}
	a = keys(t, a, "1", ",", "5", "0", "0")
	st, ok := a.cats.list.Pending(10)
	if !ok || st.Err != nil || st.Cents != 150000 {
		t.Fatalf("pending = %+v ok=%v", st, ok)
	}

	a, cmd := updateCmd(t, a, keyMsg("enter"))
	if a.cats.editing {
		t.Error("edit should close after save")
	}
	msgs := runCmd(cmd)
	if len(fb.updates) != 1 || *fb.updates[0].AllocatedCents != 150000 {
		t.Fatalf("backend updates = %+v", fb.updates)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages", len(msgs))
	}
	a = update(t, a, msgs[0])
	if !strings.HasPrefix(a.message, "Saved") {
		t.Errorf("message = %q", a.message)
	}
	if !a.budgetViewLoading {
		t.Error("a successful save reloads the view")
	}
}

func TestCategoryEditRejectsInvalidAmount(t *testing.T) {
	fb := newFakeBackend(t)
	a := withView(t, fb, newLoadedApp(t, fb, config.DefaultConfig()))

	a = keys(t, a, "e", "x", "enter")
	if !a.cats.editing {
		t.Fatal("invalid text must keep the edit open")
	}
	if a.errMsg == "" {
		t.Error("expected an error message")
	}
	if len(fb.updates) != 0 {
		t.Errorf("nothing should be sent, got %+v", fb.updates)
	}
}

func TestFailedSaveReopensEdit(t *testing.T) {
	fb := newFakeBackend(t)
	a := withView(t, fb, newLoadedApp(t, fb, config.DefaultConfig()))

	a = update(t, a, categoryMutationMsg{
		budgetID:   a.selected,
		categoryID: 11,
		cents:      12345,
		err:        errors.New("server said no"),
	})
	if !a.cats.editing || a.cats.editID != 11 {
		t.Fatalf("edit not reopened: editing=%v id=%d", a.cats.editing, a.cats.editID)
	}
	st, _ := a.cats.list.Pending(11)
	if st.Text != "123.45" {
		t.Errorf("pending text = %q, want 123.45", st.Text)
	}
	if !strings.Contains(a.errMsg, "server said no") {
		t.Errorf("errMsg = %q", a.errMsg)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	fb := newFakeBackend(t)
	a := withView(t, fb, newLoadedApp(t, fb, config.DefaultConfig()))

	a = keys(t, a, "d", "n")
	if a.cats.confirmDelete || len(fb.deletes) != 0 {
		t.Fatal("n should cancel the delete")
	}

	a = keys(t, a, "d")
	a, cmd := updateCmd(t, a, keyMsg("y"))
	runCmd(cmd)
	if len(fb.deletes) != 1 || fb.deletes[0] != 10 {
		t.Fatalf("deletes = %v", fb.deletes)
	}
}

func TestOfflineViewIsReadOnly(t *testing.T) {
	fb := newFakeBackend(t)
	a := newLoadedApp(t, fb, config.DefaultConfig())
	view := cachedView(fb.budgets[1], fb.cats)
	a = update(t, a, budgetViewMsg{budgetID: a.selected, view: view, stale: true})
	a = keys(t, a, "c", "e")
	if a.cats.editing {
		t.Fatal("cached categories must not be editable")
	}
	if !strings.Contains(a.errMsg, "read-only") {
		t.Errorf("errMsg = %q", a.errMsg)
	}
}

func TestSuggestionDebounceIgnoresStaleTicks(t *testing.T) {
	fb := newFakeBackend(t)
	a := newLoadedApp(t, fb, config.DefaultConfig())
	a = keys(t, a, "t", "a", "tab", "c", "o")
	if !a.quick.active || a.quick.field != 1 {
		t.Fatalf("quick add not on notes: active=%v field=%d", a.quick.active, a.quick.field)
	}
	if a.quick.seq != 2 {
		t.Fatalf("seq = %d, want 2", a.quick.seq)
	}

	a, cmd := updateCmd(t, a, suggestTickMsg{seq: 1})
	if cmd != nil || a.quick.looking {
		t.Fatal("a stale tick must not start a lookup")
	}

	a, cmd = updateCmd(t, a, suggestTickMsg{seq: 2})
	if cmd == nil || !a.quick.looking {
		t.Fatal("the latest tick should start a lookup")
	}
	msgs := runCmd(cmd)
	a = update(t, a, msgs[0])
	if len(a.quick.suggestions) != 2 {
		t.Fatalf("suggestions = %+v", a.quick.suggestions)
	}

	// A late answer to an older request is dropped.
	a = update(t, a, suggestionsMsg{seq: 1, suggestions: nil})
	if len(a.quick.suggestions) != 2 {
		t.Error("stale suggestions replaced fresh ones")
	}
}

func TestQuickAddCreatesAndSendsFeedback(t *testing.T) {
	fb := newFakeBackend(t)
	a := newLoadedApp(t, fb, config.DefaultConfig())
	a = keys(t, a, "t", "a", "1", "2", ".", "5", "0", "tab", "m", "i", "l", "k")
	a = update(t, a, suggestionsMsg{seq: a.quick.seq, suggestions: fb.suggestions})

	// Pick the second suggestion, then save.
	a = update(t, a, tea.KeyMsg{Type: tea.KeyDown})
	a, cmd := updateCmd(t, a, keyMsg("enter"))
	if !a.quick.saving {
		t.Fatal("expected saving state")
	}
	msgs := runCmd(cmd)
	if len(fb.created) != 1 {
		t.Fatalf("created = %+v", fb.created)
	}
	in := fb.created[0]
	if in.AmountCents != 1250 || in.Notes != "milk" || in.CategoryID == nil || *in.CategoryID != 12 {
		t.Errorf("create payload = %+v", in)
	}
	if len(fb.feedback) != 1 || fb.feedback[0].SuggestedCategoryID != 11 || fb.feedback[0].ActualCategoryID != 12 {
		t.Errorf("feedback = %+v", fb.feedback)
	}

	a = update(t, a, msgs[0])
	if a.quick.active {
		t.Error("form should close after a successful add")
	}
}

func TestQuickAddRejectsZeroAmount(t *testing.T) {
	fb := newFakeBackend(t)
	a := newLoadedApp(t, fb, config.DefaultConfig())
	a = keys(t, a, "t", "a", "0", "enter")
	if a.quick.saving || a.quick.formErr == "" {
		t.Fatalf("zero amount accepted: saving=%v err=%q", a.quick.saving, a.quick.formErr)
	}
}

func TestAutoRefreshWaitsForInput(t *testing.T) {
	fb := newFakeBackend(t)
	a := newLoadedApp(t, fb, config.DefaultConfig())
	now := time.Now()
	a.lastRefresh = now.Add(-time.Hour)

	if !a.shouldAutoRefresh(now) {
		t.Fatal("expected a due refresh")
	}
	a.cats.editing = true
	if a.shouldAutoRefresh(now) {
		t.Error("refresh must wait while a category is being edited")
	}
	a.cats.editing = false
	a.refreshing = true
	if a.shouldAutoRefresh(now) {
		t.Error("refresh must not overlap a running one")
	}
}

func TestUnauthorizedLoadShowsLogin(t *testing.T) {
	fb := newFakeBackend(t)
	a := NewApp(fb, Options{Config: config.DefaultConfig(), ConfigPath: filepath.Join(t.TempDir(), "config.toml")})
	a = update(t, a, DataLoadedMsg{Err: api.ErrUnauthorized})
	if !a.needLogin || a.setupForm == nil {
		t.Fatal("expected the login form")
	}
	if fb.tokens.LoggedIn() {
		t.Error("the rejected token should be cleared")
	}
	if !a.inputActive() {
		t.Error("login counts as input")
	}
}

func TestSettingsRejectsShortInterval(t *testing.T) {
	fb := newFakeBackend(t)
	a := newLoadedApp(t, fb, config.DefaultConfig())
	a = keys(t, a, "x", "j", "j", "enter")
	if !a.settings.editing || a.settings.cursor != settingsFieldRefreshInterval {
		t.Fatalf("editing=%v cursor=%d", a.settings.editing, a.settings.cursor)
	}
	a.settings.input.SetValue("5")
	a = keys(t, a, "enter")
	if a.settings.saveErr == nil {
		t.Error("5s should be rejected")
	}
	if a.refreshInterval != 30*time.Second {
		t.Errorf("interval changed to %v", a.refreshInterval)
	}
}
