// Package catlist implements the filterable, sortable, groupable category
// list with a fixed-row-height window. It holds view state only and never
// persists anything; changes leave through Callbacks.
package catlist

import (
	"sort"
	"strings"

	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
)

// SortKey selects the sort comparator.
type SortKey string

const (
	SortName      SortKey = "name"
	SortAllocated SortKey = "allocated_cents"
	SortOrder     SortKey = "order"
)

// SortKeys lists the keys in cycling order.
var SortKeys = []SortKey{SortOrder, SortName, SortAllocated}

// Next returns the key after k in SortKeys.
func (k SortKey) Next() SortKey {
	for i, s := range SortKeys {
		if s == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortKeys[0]
}

// GroupMode selects flat or grouped presentation.
type GroupMode string

const (
	GroupNone     GroupMode = "none"
	GroupCategory GroupMode = "category_group"
)

// Options are the list's display inputs.
type Options struct {
	Search   string
	SortBy   SortKey
	SortDesc bool
	GroupBy  GroupMode
}

// DefaultOptions sorts by order with no grouping.
func DefaultOptions() Options {
	return Options{SortBy: SortOrder, GroupBy: GroupNone}
}

// Filter keeps active categories whose name contains search,
// case-insensitively.
func Filter(cats []model.BudgetCategory, search string) []model.BudgetCategory {
	term := strings.ToLower(search)
	out := make([]model.BudgetCategory, 0, len(cats))
	for _, c := range cats {
		if !c.Active() {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(c.Name), term) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Sort returns a stably sorted copy. desc flips the comparator, so equal
// elements keep their input order either way.
func Sort(cats []model.BudgetCategory, key SortKey, desc bool) []model.BudgetCategory {
	out := make([]model.BudgetCategory, len(cats))
	copy(out, cats)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i], key)
		}
		return less(out[i], out[j], key)
	})
	return out
}

func less(a, b model.BudgetCategory, key SortKey) bool {
	switch key {
	case SortName:
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	case SortAllocated:
		return a.AllocatedCents < b.AllocatedCents
	default:
		return a.Order < b.Order
	}
}

// GroupInfo is one bucket of the grouped view.
type GroupInfo struct {
	Name                string
	Categories          []model.BudgetCategory
	TotalAllocatedCents int64
	Count               int
	Collapsed           bool
}

// Group partitions cats by category_group. Named groups keep their first
// appearance order and Ungrouped goes last.
func Group(cats []model.BudgetCategory, collapsed map[string]bool) []GroupInfo {
	idx := map[string]int{}
	var groups []GroupInfo
	var ungrouped *GroupInfo

	for _, c := range cats {
		// Blank groups are trimmed into Ungrouped rather than getting a
		// bucket of their own.
		name := finance.GroupName(c)
		var g *GroupInfo
		if name == finance.UngroupedName {
			if ungrouped == nil {
				ungrouped = &GroupInfo{Name: name}
			}
			g = ungrouped
		} else {
			i, ok := idx[name]
			if !ok {
				i = len(groups)
				idx[name] = i
				groups = append(groups, GroupInfo{Name: name})
			}
			g = &groups[i]
		}
		g.Categories = append(g.Categories, c)
		g.TotalAllocatedCents += c.AllocatedCents
		g.Count++
	}
	if ungrouped != nil {
		groups = append(groups, *ungrouped)
	}
	for i := range groups {
		groups[i].Collapsed = collapsed[groups[i].Name]
	}
	return groups
}

// ItemKind distinguishes rows of the flat item list.
type ItemKind int

const (
	ItemCategory ItemKind = iota
	ItemHeader
)

// Item is one row: either a group header or a category.
type Item struct {
	Kind     ItemKind
	Group    *GroupInfo
	Category model.BudgetCategory
}

// Callbacks receive the list's outbound changes.
type Callbacks struct {
	OnCategoryUpdate func(id int64, u model.CategoryUpdate) error
	OnCategoryDelete func(id int64) error
}

// List is the stateful component. It is not safe for concurrent use.
type List struct {
	Editable bool

	cats      []model.BudgetCategory
	opts      Options
	collapsed map[string]bool
	spent     map[int64]int64
	cb        Callbacks
	edits     map[int64]*EditState

	filtered []model.BudgetCategory
	groups   []GroupInfo
	items    []Item
}

// New creates an empty list.
func New(opts Options, cb Callbacks) *List {
	l := &List{
		opts:      opts,
		collapsed: map[string]bool{},
		spent:     map[int64]int64{},
		cb:        cb,
		edits:     map[int64]*EditState{},
	}
	l.recompute()
	return l
}

// SetCategories replaces the data. Collapse state survives.
func (l *List) SetCategories(cats []model.BudgetCategory) {
	l.cats = cats
	for id := range l.edits {
		if _, ok := l.find(id); !ok {
			delete(l.edits, id)
		}
	}
	l.recompute()
}

// SetSpent sets per-category spend used by RowView.
func (l *List) SetSpent(spent map[int64]int64) {
	if spent == nil {
		spent = map[int64]int64{}
	}
	l.spent = spent
}

// Spent returns recorded spend for a category.
func (l *List) Spent(id int64) int64 { return l.spent[id] }

// Options returns the current options.
func (l *List) Options() Options { return l.opts }

// SetOptions changes search, sort or grouping.
func (l *List) SetOptions(opts Options) {
	l.opts = opts
	l.recompute()
}

// ToggleGroup collapses or expands a group.
func (l *List) ToggleGroup(name string) {
	l.collapsed[name] = !l.collapsed[name]
	l.recompute()
}

// IsCollapsed reports whether a group is collapsed.
func (l *List) IsCollapsed(name string) bool { return l.collapsed[name] }

// Items is the derived flat row list.
func (l *List) Items() []Item { return l.items }

// Len is len(Items()).
func (l *List) Len() int { return len(l.items) }

// Groups returns the grouped view. It is empty in GroupNone mode.
func (l *List) Groups() []GroupInfo { return l.groups }

// Filtered returns the filtered, sorted categories regardless of collapse.
func (l *List) Filtered() []model.BudgetCategory { return l.filtered }

// EmptyMessage is shown when Items is empty.
func (l *List) EmptyMessage() string {
	if l.opts.Search != "" {
		return "No categories match your search"
	}
	return "No categories found"
}

func (l *List) recompute() {
	l.filtered = Sort(Filter(l.cats, l.opts.Search), l.opts.SortBy, l.opts.SortDesc)
	l.items = make([]Item, 0, len(l.filtered))
	l.groups = nil

	if l.opts.GroupBy != GroupCategory {
		for _, c := range l.filtered {
			l.items = append(l.items, Item{Kind: ItemCategory, Category: c})
		}
		return
	}

	l.groups = Group(l.filtered, l.collapsed)
	for i := range l.groups {
		g := &l.groups[i]
		l.items = append(l.items, Item{Kind: ItemHeader, Group: g})
		if g.Collapsed {
			continue
		}
		for _, c := range g.Categories {
			l.items = append(l.items, Item{Kind: ItemCategory, Category: c})
		}
	}
}

func (l *List) find(id int64) (model.BudgetCategory, bool) {
	for _, c := range l.cats {
		if c.ID == id {
			return c, true
		}
	}
	return model.BudgetCategory{}, false
}
