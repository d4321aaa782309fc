package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/logging"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

const (
	recentTxnLimit = 50
	// suggestDelay debounces suggestion lookups while notes are typed.
	suggestDelay = 500 * time.Millisecond
	dateLayout   = "2006-01-02"
)

// quickAddState is the transaction form plus the recent list cursor.
type quickAddState struct {
	listCursor int

	active bool
	field  int // 0 amount, 1 notes
	amount textinput.Model
	notes  textinput.Model

	// seq increments on every notes edit. A debounce tick or a lookup
	// result carrying an older seq is discarded.
	seq         int
	suggestions []model.CategorySuggestion
	suggestErr  error
	suggestCur  int
	looking     bool
	saving      bool
	formErr     string
}

func newQuickAddState() quickAddState {
	amount := textinput.New()
	amount.Prompt = "$ "
	amount.Placeholder = "0.00"
	amount.CharLimit = 16
	amount.Width = 14

	notes := textinput.New()
	notes.Prompt = "› "
	notes.Placeholder = "what was it for?"
	notes.CharLimit = 200
	notes.Width = 40

	return quickAddState{amount: amount, notes: notes}
}

func (s *quickAddState) reset() {
	*s = newQuickAddState()
}

func (s *quickAddState) open() tea.Cmd {
	s.active = true
	s.field = 0
	s.formErr = ""
	s.suggestions = nil
	s.suggestErr = nil
	s.suggestCur = 0
	s.amount.SetValue("")
	s.notes.SetValue("")
	s.notes.Blur()
	return s.amount.Focus()
}

func (s *quickAddState) focusField(i int) tea.Cmd {
	s.field = i
	if i == 0 {
		s.notes.Blur()
		return s.amount.Focus()
	}
	s.amount.Blur()
	return s.notes.Focus()
}

// chosen returns the highlighted suggestion.
func (s quickAddState) chosen() (model.CategorySuggestion, bool) {
	if s.suggestCur < 0 || s.suggestCur >= len(s.suggestions) {
		return model.CategorySuggestion{}, false
	}
	return s.suggestions[s.suggestCur], true
}

type transactionsMsg struct {
	budgetID int64
	txns     []model.Transaction
	err      error
}

type suggestTickMsg struct {
	seq int
}

type suggestionsMsg struct {
	seq         int
	suggestions []model.CategorySuggestion
	err         error
}

type transactionCreatedMsg struct {
	txn *model.Transaction
	err error
}

func loadTransactionsCmd(b Backend, budgetID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		txns, err := b.ListTransactions(ctx, api.TransactionQuery{BudgetID: budgetID, Limit: recentTxnLimit})
		return transactionsMsg{budgetID: budgetID, txns: txns, err: err}
	}
}

func suggestTick(seq int) tea.Cmd {
	return tea.Tick(suggestDelay, func(time.Time) tea.Msg {
		return suggestTickMsg{seq: seq}
	})
}

func suggestCmd(b Backend, seq int, req model.SuggestionRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		s, err := b.SuggestCategories(ctx, req, api.DefaultSuggestionLimit)
		return suggestionsMsg{seq: seq, suggestions: s, err: err}
	}
}

// createTransactionCmd records the transaction and then reports which
// suggestion the user took. Feedback failure does not fail the create.
func createTransactionCmd(b Backend, in model.TransactionCreate, suggested *model.CategorySuggestion, log *logging.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		txn, err := b.CreateTransaction(ctx, in)
		if err != nil {
			return transactionCreatedMsg{err: err}
		}
		if suggested != nil && in.CategoryID != nil {
			fb := model.SuggestionFeedback{
				TransactionID:       &txn.ID,
				SuggestedCategoryID: suggested.CategoryID,
				ActualCategoryID:    *in.CategoryID,
				PatternText:         in.Notes,
			}
			if ferr := b.SuggestionFeedback(ctx, fb); ferr != nil {
				log.Warn("suggestion feedback failed", logging.FieldError, ferr)
			}
		}
		return transactionCreatedMsg{txn: txn}
	}
}

func (a App) handleTransactions(msg transactionsMsg) (tea.Model, tea.Cmd) {
	if msg.budgetID != a.selected {
		return a, nil
	}
	a.txnsLoading = false
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return a.requireLogin("Session expired, please log in again")
		}
		a.txnsErr = msg.err
		return a, nil
	}
	a.txns = msg.txns
	a.txnsErr = nil
	a.txnsLoaded = true
	a.quick.listCursor = clampIndex(a.quick.listCursor, len(a.txns))
	return a, nil
}

func (a App) handleSuggestTick(msg suggestTickMsg) (tea.Model, tea.Cmd) {
	if !a.quick.active || msg.seq != a.quick.seq {
		return a, nil
	}
	notes := strings.TrimSpace(a.quick.notes.Value())
	if notes == "" {
		a.quick.suggestions = nil
		return a, nil
	}
	req := model.SuggestionRequest{BudgetID: a.selected, Notes: notes}
	if cents, err := finance.ParseDollars(a.quick.amount.Value()); err == nil && cents > 0 {
		req.AmountCents = cents
	}
	a.quick.looking = true
	return a, suggestCmd(a.backend, msg.seq, req)
}

func (a App) handleSuggestions(msg suggestionsMsg) (tea.Model, tea.Cmd) {
	if msg.seq != a.quick.seq {
		return a, nil
	}
	a.quick.looking = false
	a.quick.suggestErr = msg.err
	a.quick.suggestions = msg.suggestions
	a.quick.suggestCur = 0
	return a, nil
}

func (a App) handleTransactionCreated(msg transactionCreatedMsg) (tea.Model, tea.Cmd) {
	a.quick.saving = false
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return a.requireLogin("Session expired, please log in again")
		}
		a.quick.formErr = msg.err.Error()
		return a, nil
	}
	a.quick.active = false
	a.message = "Added " + cli.FormatCents(msg.txn.AmountCents)
	a.txnsLoading = true
	cmds := []tea.Cmd{loadTransactionsCmd(a.backend, a.selected)}
	if a.view != nil {
		a.budgetViewLoading = true
		cmds = append(cmds, loadViewCmd(a.backend, a.cache, a.selectedBudget()))
	}
	return a, tea.Batch(cmds...)
}

func (a App) updateTransactionsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.quick.listCursor = clampIndex(a.quick.listCursor+1, len(a.txns))
	case "k", "up":
		a.quick.listCursor = clampIndex(a.quick.listCursor-1, len(a.txns))
	case "a":
		if a.selected == 0 {
			a.errMsg = "No budget selected"
			return a, nil, true
		}
		if a.stale {
			a.errMsg = "Offline: cannot add transactions"
			return a, nil, true
		}
		cmd := a.quick.open()
		return a, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateQuickAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.quick.saving {
		return a, nil
	}
	switch msg.String() {
	case "esc":
		a.quick.active = false
		a.quick.seq++
		return a, nil
	case "tab", "shift+tab":
		cmd := a.quick.focusField(1 - a.quick.field)
		return a, cmd
	case "up", "ctrl+p":
		if len(a.quick.suggestions) > 0 {
			a.quick.suggestCur = (a.quick.suggestCur - 1 + len(a.quick.suggestions)) % len(a.quick.suggestions)
		}
		return a, nil
	case "down", "ctrl+n":
		if len(a.quick.suggestions) > 0 {
			a.quick.suggestCur = (a.quick.suggestCur + 1) % len(a.quick.suggestions)
		}
		return a, nil
	case "enter":
		return a.submitQuickAdd()
	}

	var cmd tea.Cmd
	if a.quick.field == 0 {
		a.quick.amount, cmd = a.quick.amount.Update(msg)
		return a, cmd
	}
	before := a.quick.notes.Value()
	a.quick.notes, cmd = a.quick.notes.Update(msg)
	if a.quick.notes.Value() == before {
		return a, cmd
	}
	a.quick.seq++
	return a, tea.Batch(cmd, suggestTick(a.quick.seq))
}

func (a App) submitQuickAdd() (tea.Model, tea.Cmd) {
	cents, err := finance.ParseDollars(a.quick.amount.Value())
	if err != nil || cents <= 0 {
		a.quick.formErr = "Enter an amount greater than zero"
		cmd := a.quick.focusField(0)
		return a, cmd
	}
	notes := strings.TrimSpace(a.quick.notes.Value())
	in := model.TransactionCreate{
		BudgetID:    a.selected,
		AmountCents: cents,
		Date:        time.Now().Format(dateLayout),
		Notes:       notes,
	}
	var top *model.CategorySuggestion
	if len(a.quick.suggestions) > 0 {
		first := a.quick.suggestions[0]
		top = &first
	}
	if s, ok := a.quick.chosen(); ok {
		id := s.CategoryID
		in.CategoryID = &id
	}
	a.quick.saving = true
	a.quick.formErr = ""
	a.quick.seq++
	return a, createTransactionCmd(a.backend, in, top, a.log)
}

// ─── Rendering ──────────────────────────────────────────────────

func (a App) renderTransactionsTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if a.selected == 0 {
		return components.ContentCard("Transactions", muted.Render("No budget selected"), cw)
	}

	var b strings.Builder
	listH := h - 3
	if a.quick.active {
		form := a.renderQuickAdd(cw)
		b.WriteString(form)
		b.WriteString("\n")
		listH -= lipgloss.Height(form)
	}

	var body string
	switch {
	case a.txnsErr != nil && len(a.txns) == 0:
		body = lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render("Could not load transactions: " + a.txnsErr.Error())
	case !a.txnsLoaded:
		body = muted.Render(a.spinner.View() + " Loading transactions...")
	case len(a.txns) == 0:
		body = muted.Render("No transactions yet. Press [a] to add one.")
	default:
		body = a.renderTransactionRows(components.CardInnerWidth(cw), max(listH-1, 1))
	}
	body += "\n" + lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("[a] add  [j/k] move")

	title := "Recent transactions"
	if bud, ok := a.findBudget(a.selected); ok {
		title += " · " + finance.PeriodLabel(bud.Year, bud.Month)
	}
	b.WriteString(components.ContentCard(title, body, cw))
	return b.String()
}

func (a App) categoryName(id *int64) string {
	if id == nil {
		return "Uncategorized"
	}
	if a.view != nil {
		for _, c := range a.view.Categories {
			if c.ID == *id {
				return c.Name
			}
		}
	}
	if b, ok := a.findBudget(a.selected); ok {
		for _, c := range b.Categories {
			if c.ID == *id {
				return c.Name
			}
		}
	}
	return fmt.Sprintf("#%d", *id)
}

func (a App) renderTransactionRows(innerW, rows int) string {
	t := theme.Active
	start := 0
	if a.quick.listCursor >= rows {
		start = a.quick.listCursor - rows + 1
	}
	catW := 20
	notesW := max(innerW-2-11-catW-14, 8)

	var lines []string
	for i := start; i < len(a.txns) && i < start+rows; i++ {
		tx := a.txns[i]
		bg := t.Surface
		marker := "  "
		if i == a.quick.listCursor {
			bg = t.SurfaceBright
			marker = "▸ "
		}
		text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
		line := lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg).Render(marker) +
			muted.Render(fmt.Sprintf("%-11s", cli.FormatDate(tx.Date))) +
			text.Render(fmt.Sprintf("%-*s", notesW, truncStr(tx.NoteText(), notesW))) +
			muted.Render(fmt.Sprintf(" %-*s", catW-1, truncStr(a.categoryName(tx.CategoryID), catW-1))) +
			text.Render(fmt.Sprintf("%14s", cli.FormatCents(tx.AmountCents)))
		line += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", max(innerW-lipgloss.Width(line), 0)))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a App) renderQuickAdd(cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	var b strings.Builder
	b.WriteString(label.Render("Amount ") + a.quick.amount.View())
	b.WriteString("\n")
	b.WriteString(label.Render("Notes  ") + a.quick.notes.View())
	b.WriteString("\n\n")

	switch {
	case a.quick.looking:
		b.WriteString(dim.Render("Finding categories..."))
	case a.quick.suggestErr != nil:
		b.WriteString(errStyle.Render("Suggestions unavailable: " + a.quick.suggestErr.Error()))
	case len(a.quick.suggestions) == 0:
		b.WriteString(dim.Render("Type notes to get category suggestions"))
	default:
		for i, s := range a.quick.suggestions {
			bg := t.Surface
			marker := "  "
			if i == a.quick.suggestCur {
				bg = t.SurfaceBright
				marker = "▸ "
			}
			b.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg).Render(marker))
			b.WriteString(lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg).
				Render(fmt.Sprintf("%-24s", truncStr(s.CategoryName, 24))))
			b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg).
				Render(fmt.Sprintf(" %s · %s", cli.FormatRatio(s.Confidence), reasonLabel(s.Reason))))
			if i < len(a.quick.suggestions)-1 {
				b.WriteString("\n")
			}
		}
	}

	if a.quick.formErr != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(a.quick.formErr))
	}
	b.WriteString("\n")
	hint := "[tab] switch field  [↑/↓] pick category  [enter] save  [esc] cancel"
	if a.quick.saving {
		hint = "Saving..."
	}
	b.WriteString(dim.Render(hint))

	return components.ContentCard("Quick add", b.String(), cw)
}

func reasonLabel(r model.SuggestionReason) string {
	switch r {
	case model.ReasonExactMatch:
		return "exact match"
	case model.ReasonKeywordMatch:
		return "keyword"
	case model.ReasonSimilarAmount:
		return "similar amount"
	case model.ReasonFrequentlyUsed:
		return "frequently used"
	}
	return string(r)
}
