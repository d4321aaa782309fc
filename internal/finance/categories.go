package finance

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/theirongolddev/tally/internal/model"
)

// UngroupedName is the bucket for categories without a group.
const UngroupedName = "Ungrouped"

const maxNameLen = 255

// TotalAllocated sums allocations.
func TotalAllocated(cats []model.BudgetCategory) int64 {
	var total int64
	for _, c := range cats {
		total += c.AllocatedCents
	}
	return total
}

// GroupName returns the category's group, or UngroupedName. A group of
// only whitespace counts as no group, so "" and " " share one bucket.
func GroupName(c model.BudgetCategory) string {
	if g := strings.TrimSpace(c.CategoryGroup); g != "" {
		return g
	}
	return UngroupedName
}

// CategoryGroup is a named bucket of categories.
type CategoryGroup struct {
	Name       string
	Categories []model.BudgetCategory
}

// GroupCategories buckets categories by group, with groups sorted by name.
func GroupCategories(cats []model.BudgetCategory) []CategoryGroup {
	idx := map[string]int{}
	var groups []CategoryGroup
	for _, c := range cats {
		name := GroupName(c)
		i, ok := idx[name]
		if !ok {
			i = len(groups)
			idx[name] = i
			groups = append(groups, CategoryGroup{Name: name})
		}
		groups[i].Categories = append(groups[i].Categories, c)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

// FilterCategories keeps categories whose name, description or group
// contains term, case-insensitively.
func FilterCategories(cats []model.BudgetCategory, term string) []model.BudgetCategory {
	if term == "" {
		return cats
	}
	term = strings.ToLower(term)
	var out []model.BudgetCategory
	for _, c := range cats {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Description), term) ||
			strings.Contains(strings.ToLower(c.CategoryGroup), term) {
			out = append(out, c)
		}
	}
	return out
}

// ValidateCategory checks a category's user-editable fields.
func ValidateCategory(name string, allocatedCents int64, order int) error {
	var errs ValidationErrors
	if strings.TrimSpace(name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Message: "Category name is required"})
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		errs = append(errs, &ValidationError{Field: "name", Message: "Category name must be less than 255 characters"})
	}
	if allocatedCents < 0 {
		errs = append(errs, &ValidationError{Field: "allocated_cents", Message: "Allocated amount cannot be negative"})
	}
	if order < 0 {
		errs = append(errs, &ValidationError{Field: "order", Message: "Order cannot be negative"})
	}
	return errs.Err()
}
