package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
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

const (
	// categoryItemHeight is lines per row: the figures and the spend bar.
	categoryItemHeight = 2
	// categoryChrome is the metric row, the toolbar, and the list card's
	// border, title and hint line.
	categoryChrome = 9

	amountColW = 13
)

// categoryOps queues the list's outbound changes. The catlist callbacks
// run synchronously inside Update, so they only record the request and
// Update turns the queue into commands.
type categoryOps struct {
	updates []model.CategoryUpdate
	deletes []int64
}

func (o *categoryOps) drain() ([]model.CategoryUpdate, []int64) {
	u, d := o.updates, o.deletes
	o.updates, o.deletes = nil, nil
	return u, d
}

// categoriesState is the Categories tab.
type categoriesState struct {
	list   *catlist.List
	ops    *categoryOps
	cursor int
	offset int

	searching bool
	search    textinput.Model

	editing bool
	editID  int64
	input   textinput.Model

	confirmDelete bool
	deleteID      int64
	deleteName    string
}

func newCategoriesState(cfg config.CategoriesConfig) categoriesState {
	ops := &categoryOps{}
	opts := catlist.DefaultOptions()
	if cfg.SortBy != "" {
		opts.SortBy = catlist.SortKey(cfg.SortBy)
	}
	opts.SortDesc = cfg.SortDesc
	if cfg.GroupBy == string(catlist.GroupCategory) {
		opts.GroupBy = catlist.GroupCategory
	}

	list := catlist.New(opts, catlist.Callbacks{
		OnCategoryUpdate: func(_ int64, u model.CategoryUpdate) error {
			ops.updates = append(ops.updates, u)
			return nil
		},
		OnCategoryDelete: func(id int64) error {
			ops.deletes = append(ops.deletes, id)
			return nil
		},
	})

	search := textinput.New()
	search.Placeholder = "search categories"
	search.Prompt = "/ "
	search.CharLimit = 64

	return categoriesState{list: list, ops: ops, search: search}
}

// reset forgets everything tied to the previous budget except the display
// options.
func (s *categoriesState) reset() {
	s.list.SetCategories(nil)
	s.list.SetSpent(nil)
	s.cursor, s.offset = 0, 0
	s.editing, s.editID = false, 0
	s.confirmDelete, s.deleteID = false, 0
	s.ops.drain()
}

// setView loads a budget view. Offline views are read-only.
func (s *categoriesState) setView(v *pipeline.BudgetView, editable bool) {
	s.list.Editable = editable
	s.list.SetCategories(v.Categories)
	s.list.SetSpent(v.Spent())
	s.cursor = clampIndex(s.cursor, s.list.Len())
	if s.editing && !s.list.IsEditing(s.editID) {
		s.editing = false
	}
}

func (s *categoriesState) move(delta int, w catlist.Window) {
	s.cursor = clampIndex(s.cursor+delta, s.list.Len())
	s.scrollToCursor(w)
}

func (s *categoriesState) scrollToCursor(w catlist.Window) {
	s.offset = w.ClampOffset(w.ScrollToItem(s.offset, s.cursor), s.list.Len())
}

func (s categoriesState) current() (catlist.Item, bool) {
	items := s.list.Items()
	if s.cursor < 0 || s.cursor >= len(items) {
		return catlist.Item{}, false
	}
	return items[s.cursor], true
}

func (s *categoriesState) setOptions(fn func(*catlist.Options)) {
	opts := s.list.Options()
	fn(&opts)
	s.list.SetOptions(opts)
	s.cursor = clampIndex(s.cursor, s.list.Len())
}

// categoryMutationMsg reports an update or delete result.
type categoryMutationMsg struct {
	budgetID   int64
	categoryID int64
	deleted    bool
	cents      int64
	err        error
}

func updateCategoryCmd(b Backend, budgetID int64, u model.CategoryUpdate) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		var cents int64
		if u.AllocatedCents != nil {
			cents = *u.AllocatedCents
		}
		err := b.UpdateCategory(ctx, budgetID, u)
		return categoryMutationMsg{budgetID: budgetID, categoryID: u.CategoryID, cents: cents, err: err}
	}
}

func deleteCategoryCmd(b Backend, budgetID, categoryID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		err := b.DeleteCategory(ctx, budgetID, categoryID)
		return categoryMutationMsg{budgetID: budgetID, categoryID: categoryID, deleted: true, err: err}
	}
}

// flushCategoryOps turns queued list callbacks into API commands.
func (a App) flushCategoryOps() tea.Cmd {
	updates, deletes := a.cats.ops.drain()
	var cmds []tea.Cmd
	for _, u := range updates {
		cmds = append(cmds, updateCategoryCmd(a.backend, a.selected, u))
	}
	for _, id := range deletes {
		cmds = append(cmds, deleteCategoryCmd(a.backend, a.selected, id))
	}
	return tea.Batch(cmds...)
}

func (a App) handleCategoryMutation(msg categoryMutationMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return a.requireLogin("Session expired, please log in again")
		}
		a.log.Warn("category change failed",
			logging.FieldBudgetID, msg.budgetID,
			logging.FieldError, msg.err)
		if msg.deleted {
			a.errMsg = "Delete failed: " + msg.err.Error()
			return a, nil
		}
		a.errMsg = "Save failed: " + msg.err.Error()
		// Reopen the edit with the rejected amount so it can be retried.
		if msg.budgetID == a.selected && !a.cats.editing && a.cats.list.BeginEdit(msg.categoryID) == nil {
			text := finance.FormatDollars(msg.cents)
			_ = a.cats.list.SetPending(msg.categoryID, text)
			a.cats.editing = true
			a.cats.editID = msg.categoryID
			a.cats.input = newAmountInput(text)
			cmd := a.cats.input.Focus()
			return a, cmd
		}
		return a, nil
	}

	a.errMsg = ""
	if msg.deleted {
		a.message = "Category deleted"
	} else {
		a.message = "Saved " + cli.FormatCents(msg.cents)
	}
	if msg.budgetID != a.selected {
		return a, nil
	}
	a.budgetViewLoading = true
	return a, loadViewCmd(a.backend, a.cache, a.selectedBudget())
}

func newAmountInput(value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "$"
	ti.CharLimit = 16
	ti.Width = amountColW - 2
	ti.SetValue(value)
	ti.CursorEnd()
	return ti
}

func (a App) updateCategoriesKey(key string) (App, tea.Cmd, bool) {
	w := a.categoryWindow()
	switch key {
	case "j", "down":
		a.cats.move(1, w)
	case "k", "up":
		a.cats.move(-1, w)
	case "home":
		a.cats.move(-a.cats.list.Len(), w)
	case "end":
		a.cats.move(a.cats.list.Len(), w)
	case "pgdown":
		a.cats.move(w.Visible(), w)
	case "pgup":
		a.cats.move(-w.Visible(), w)
	case "/":
		a.cats.searching = true
		a.cats.search.SetValue(a.cats.list.Options().Search)
		a.cats.search.CursorEnd()
		cmd := a.cats.search.Focus()
		return a, cmd, true
	case "esc":
		if a.cats.list.Options().Search == "" {
			return a, nil, false
		}
		a.cats.setOptions(func(o *catlist.Options) { o.Search = "" })
		a.cats.scrollToCursor(w)
	case "s":
		a.cats.setOptions(func(o *catlist.Options) { o.SortBy = o.SortBy.Next() })
	case "S":
		a.cats.setOptions(func(o *catlist.Options) { o.SortDesc = !o.SortDesc })
	case "g":
		a.cats.setOptions(func(o *catlist.Options) {
			if o.GroupBy == catlist.GroupCategory {
				o.GroupBy = catlist.GroupNone
			} else {
				o.GroupBy = catlist.GroupCategory
			}
		})
		a.cats.scrollToCursor(w)
	case "enter", " ":
		item, ok := a.cats.current()
		if !ok || item.Kind != catlist.ItemHeader {
			return a, nil, true
		}
		a.cats.list.ToggleGroup(item.Group.Name)
		a.cats.cursor = clampIndex(a.cats.cursor, a.cats.list.Len())
		a.cats.scrollToCursor(w)
	case "e":
		item, ok := a.cats.current()
		if !ok || item.Kind != catlist.ItemCategory {
			return a, nil, true
		}
		id := item.Category.ID
		if err := a.cats.list.BeginEdit(id); err != nil {
			if errors.Is(err, catlist.ErrNotEditable) {
				a.errMsg = "Offline: categories are read-only"
			} else {
				a.errMsg = err.Error()
			}
			return a, nil, true
		}
		st, _ := a.cats.list.Pending(id)
		a.cats.editing = true
		a.cats.editID = id
		a.cats.input = newAmountInput(st.Text)
		a.errMsg = ""
		cmd := a.cats.input.Focus()
		return a, cmd, true
	case "d":
		item, ok := a.cats.current()
		if !ok || item.Kind != catlist.ItemCategory {
			return a, nil, true
		}
		if !a.cats.list.Editable {
			a.errMsg = "Offline: categories are read-only"
			return a, nil, true
		}
		a.cats.confirmDelete = true
		a.cats.deleteID = item.Category.ID
		a.cats.deleteName = item.Category.Name
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateCategorySearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.cats.searching = false
		a.cats.search.Blur()
		a.cats.search.SetValue("")
		a.cats.setOptions(func(o *catlist.Options) { o.Search = "" })
		a.cats.scrollToCursor(a.categoryWindow())
		return a, nil
	case "enter":
		a.cats.searching = false
		a.cats.search.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.cats.search, cmd = a.cats.search.Update(msg)
	term := a.cats.search.Value()
	if term != a.cats.list.Options().Search {
		a.cats.setOptions(func(o *catlist.Options) { o.Search = term })
		a.cats.cursor, a.cats.offset = 0, 0
	}
	return a, cmd
}

func (a App) updateCategoryEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := a.cats.editID
	switch msg.String() {
	case "esc":
		a.cats.list.CancelEdit(id)
		a.cats.editing = false
		return a, nil
	case "enter":
		if err := a.cats.list.SaveEdit(id); err != nil {
			a.errMsg = err.Error()
			return a, nil
		}
		a.cats.editing = false
		a.errMsg = ""
		a.message = "Saving..."
		return a, a.flushCategoryOps()
	}

	var cmd tea.Cmd
	a.cats.input, cmd = a.cats.input.Update(msg)
	// Invalid text is kept in the edit state and shown inline.
	_ = a.cats.list.SetPending(id, a.cats.input.Value())
	return a, cmd
}

func (a App) updateCategoryConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		a.cats.confirmDelete = false
		if err := a.cats.list.Delete(a.cats.deleteID); err != nil {
			a.errMsg = err.Error()
			return a, nil
		}
		a.message = "Deleting " + a.cats.deleteName + "..."
		return a, a.flushCategoryOps()
	case "n", "N", "esc":
		a.cats.confirmDelete = false
	}
	return a, nil
}

// ─── Rendering ──────────────────────────────────────────────────

func (a App) renderCategoriesTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	switch {
	case a.selected == 0:
		return components.ContentCard("Categories", muted.Render("No budgets yet. Create one with `tally budgets create`."), cw)
	case a.view == nil && a.viewErr != nil:
		return components.ContentCard("Categories",
			lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render("Could not load budget: "+a.viewErr.Error()), cw)
	case a.view == nil:
		return components.ContentCard("Categories", muted.Render(a.spinner.View()+" Loading budget..."), cw)
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(balanceMetrics(a.view.Balance), cw))
	b.WriteString("\n")
	b.WriteString(a.renderCategoryToolbar(cw))
	b.WriteString("\n")

	w := a.categoryWindow()
	title := fmt.Sprintf("Categories · %s", cli.FormatMonth(a.view.Summary.Budget.Year, a.view.Summary.Budget.Month))
	body := a.renderCategoryRows(components.CardInnerWidth(cw), w) + "\n" + a.renderCategoryHint()
	b.WriteString(components.ContentCard(title, body, cw))
	return b.String()
}

func balanceMetrics(bal finance.BudgetBalance) []components.Metric {
	t := theme.Active
	tone := t.Positive()
	switch bal.Status {
	case finance.Unallocated:
		tone = t.Warning()
	case finance.OverBudget:
		tone = t.Negative()
	}
	return []components.Metric{
		{Label: "Income", Value: cli.FormatCents(bal.IncomeCents)},
		{Label: "Allocated", Value: cli.FormatCents(bal.TotalAllocatedCents)},
		{Label: bal.Status.Label(), Value: cli.FormatSignedCents(bal.RemainingCents), Tone: tone},
	}
}

func (a App) renderCategoryToolbar(cw int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background)
	val := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Background)

	opts := a.cats.list.Options()
	dir := "↑"
	if opts.SortDesc {
		dir = "↓"
	}
	group := "off"
	if opts.GroupBy == catlist.GroupCategory {
		group = "on"
	}

	var search string
	switch {
	case a.cats.searching:
		search = a.cats.search.View()
	case opts.Search != "":
		search = dim.Render("filter ") + val.Render(opts.Search) + dim.Render(" (esc clears)")
	default:
		search = dim.Render("[/] search")
	}

	right := dim.Render("sort ") + val.Render(string(opts.SortBy)+dir) +
		dim.Render("  group ") + val.Render(group) +
		dim.Render(fmt.Sprintf("  %d shown", len(a.cats.list.Filtered())))
	gap := max(cw-lipgloss.Width(search)-lipgloss.Width(right)-2, 1)
	return dim.Render(" ") + search + dim.Render(strings.Repeat(" ", gap)) + right + dim.Render(" ")
}

func (a App) renderCategoryHint() string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)

	switch {
	case a.cats.confirmDelete:
		return warn.Render(fmt.Sprintf("Delete %q? [y/n]", a.cats.deleteName))
	case a.cats.editing:
		return dim.Render("[enter] save  [esc] cancel")
	case a.viewStale:
		return dim.Render("offline copy · read-only")
	}
	return dim.Render("[j/k] move  [e] edit  [d] delete  [s/S] sort  [g] group  [enter] fold")
}

// renderCategoryRows renders the window's slice of rows.
func (a App) renderCategoryRows(innerW int, w catlist.Window) string {
	t := theme.Active
	items := a.cats.list.Items()
	if len(items) == 0 {
		msg := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(a.cats.list.EmptyMessage())
		return padHeight(msg, w.Height)
	}

	offset := w.ClampOffset(a.cats.offset, len(items))
	start, end := w.Range(offset, len(items))

	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, a.renderCategoryItem(items[i], i == a.cats.cursor, innerW)...)
	}

	// Lines before offset belong to rows scrolled partly out of view.
	skip := offset - start*w.ItemHeight
	if skip > 0 && skip < len(lines) {
		lines = lines[skip:]
	}
	if len(lines) > w.Height {
		lines = lines[:w.Height]
	}
	return padHeight(strings.Join(lines, "\n"), w.Height)
}

func (a App) renderCategoryItem(item catlist.Item, selected bool, innerW int) []string {
	t := theme.Active
	bg := t.Surface
	if selected {
		bg = t.SurfaceBright
	}
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(bg)
	marker := dim.Render("  ")
	if selected {
		marker = lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg).Render("▸ ")
	}
	fill := func(s string) string {
		return s + lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", max(innerW-lipgloss.Width(s), 0)))
	}

	if item.Kind == catlist.ItemHeader {
		g := item.Group
		fold := "▾"
		if g.Collapsed {
			fold = "▸"
		}
		head := lipgloss.NewStyle().Foreground(t.Accent).Background(bg).Bold(true).
			Render(fmt.Sprintf("%s %s", fold, g.Name))
		meta := muted.Render(fmt.Sprintf("  %d · %s", g.Count, cli.FormatCents(g.TotalAllocatedCents)))
		rule := dim.Render(strings.Repeat("─", max(innerW-2, 0)))
		return []string{fill(marker + head + meta), fill(dim.Render("  ") + rule)}
	}

	c := item.Category
	row := a.cats.list.Row(c)
	nameW := max(innerW-2-3*amountColW, 8)

	alloc := fmt.Sprintf("%*s", amountColW, cli.FormatCents(c.AllocatedCents))
	allocCell := text.Render(alloc)
	if a.cats.list.IsEditing(c.ID) {
		st, _ := a.cats.list.Pending(c.ID)
		if a.cats.editing && a.cats.editID == c.ID {
			allocCell = a.cats.input.View()
		} else {
			allocCell = text.Render(fmt.Sprintf("%*s", amountColW, "$"+st.Text))
		}
		if st.Err != nil {
			allocCell += lipgloss.NewStyle().Foreground(t.Red).Background(bg).Render(" !")
		}
		allocCell = lipgloss.PlaceHorizontal(amountColW, lipgloss.Right, allocCell,
			lipgloss.WithWhitespaceBackground(bg))
	}

	remainColor := t.Positive()
	switch row.Tone {
	case catlist.ToneWarning:
		remainColor = t.Warning()
	case catlist.ToneOver:
		remainColor = t.Negative()
	}
	remain := lipgloss.NewStyle().Foreground(remainColor).Background(bg).
		Render(fmt.Sprintf("%*s", amountColW, cli.FormatSignedCents(row.RemainingCents)))

	line1 := marker +
		text.Render(fmt.Sprintf("%-*s", nameW, truncStr(c.Name, nameW))) +
		allocCell +
		muted.Render(fmt.Sprintf("%*s", amountColW, cli.FormatCents(row.SpentCents))) +
		remain

	barW := max(innerW-12, 4)
	line2 := dim.Render("  ") + components.SpendBar(row.SpentCents, c.AllocatedCents, barW) +
		muted.Render(fmt.Sprintf(" %5.0f%%", row.Progress))

	return []string{fill(line1), fill(line2)}
}
