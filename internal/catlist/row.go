package catlist

import "github.com/theirongolddev/tally/internal/model"

// Tone is the color class of a category's progress.
type Tone int

const (
	ToneOK Tone = iota
	ToneWarning
	ToneOver
)

// Row is the computed view of one category.
type Row struct {
	Category       model.BudgetCategory
	SpentCents     int64
	RemainingCents int64
	// Progress is spent/allocated in percent, clamped to 100.
	Progress   float64
	OverBudget bool
	Tone       Tone
}

// RowView computes progress and remaining for a category. Tone uses the
// unclamped ratio so overspent rows still show as over.
func RowView(c model.BudgetCategory, spentCents int64) Row {
	r := Row{
		Category:       c,
		SpentCents:     spentCents,
		RemainingCents: c.AllocatedCents - spentCents,
	}
	var raw float64
	if c.AllocatedCents > 0 {
		raw = float64(spentCents) / float64(c.AllocatedCents) * 100
	}
	r.Progress = min(raw, 100)
	r.OverBudget = r.RemainingCents < 0

	switch {
	case raw > 100:
		r.Tone = ToneOver
	case raw > 90:
		r.Tone = ToneWarning
	default:
		r.Tone = ToneOK
	}
	return r
}

// Row returns the RowView for a category using the list's spend data.
func (l *List) Row(c model.BudgetCategory) Row {
	return RowView(c, l.spent[c.ID])
}
