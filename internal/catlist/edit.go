package catlist

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	// ErrNotEditable is returned when editing is disabled.
	ErrNotEditable = errors.New("catlist: list is not editable")
	// ErrNotEditing is returned for a row that has no edit in progress.
	ErrNotEditing = errors.New("catlist: category is not being edited")
)

// EditState is the pending inline edit of one row.
type EditState struct {
	Text  string
	Cents int64
	Err   error
}

// BeginEdit opens an inline edit seeded with the current allocation.
// Several rows may be edited at once.
func (l *List) BeginEdit(id int64) error {
	if !l.Editable {
		return ErrNotEditable
	}
	c, ok := l.find(id)
	if !ok {
		return fmt.Errorf("catlist: unknown category %d", id)
	}
	l.edits[id] = &EditState{Text: finance.FormatDollars(c.AllocatedCents), Cents: c.AllocatedCents}
	return nil
}

// IsEditing reports whether a row has an open edit.
func (l *List) IsEditing(id int64) bool {
	_, ok := l.edits[id]
	return ok
}

// Editing reports whether any row has an open edit.
func (l *List) Editing() bool { return len(l.edits) > 0 }

// Pending returns the open edit for a row.
func (l *List) Pending(id int64) (EditState, bool) {
	e, ok := l.edits[id]
	if !ok {
		return EditState{}, false
	}
	return *e, true
}

// SetPending updates the edit text. Unparseable text is kept with Err set
// so the input can still show it.
func (l *List) SetPending(id int64, text string) error {
	e, ok := l.edits[id]
	if !ok {
		return ErrNotEditing
	}
	e.Text = text
	cents, err := finance.ParseDollars(text)
	if err != nil {
		e.Err = err
		return err
	}
	if cents < 0 {
		e.Err = &finance.ValidationError{Field: "allocated_cents", Message: "Allocated amount cannot be negative"}
		return e.Err
	}
	e.Cents = cents
	e.Err = nil
	return nil
}

// SaveEdit sends the pending amount through OnCategoryUpdate and closes
// the edit. A category without an ID just closes. When the callback fails
// the edit stays open.
func (l *List) SaveEdit(id int64) error {
	e, ok := l.edits[id]
	if !ok {
		return ErrNotEditing
	}
	if e.Err != nil {
		return e.Err
	}
	if id != 0 && l.cb.OnCategoryUpdate != nil {
		cents := e.Cents
		if err := l.cb.OnCategoryUpdate(id, model.CategoryUpdate{CategoryID: id, AllocatedCents: &cents}); err != nil {
			return err
		}
	}
	delete(l.edits, id)
	return nil
}

// CancelEdit discards the pending value.
func (l *List) CancelEdit(id int64) {
	delete(l.edits, id)
}

// Delete forwards a delete request.
func (l *List) Delete(id int64) error {
	if !l.Editable {
		return ErrNotEditable
	}
	if id == 0 || l.cb.OnCategoryDelete == nil {
		return nil
	}
	if err := l.cb.OnCategoryDelete(id); err != nil {
		return err
	}
	delete(l.edits, id)
	return nil
}
