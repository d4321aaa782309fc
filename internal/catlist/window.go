package catlist

// Window describes a fixed-row-height viewport. Units are arbitrary but
// must match: pixels in the web client, lines in the TUI.
type Window struct {
	Height     int
	ItemHeight int
	Overscan   int
}

// DefaultWindow is 600 high with 120-high rows and 5 rows of overscan.
func DefaultWindow() Window {
	return Window{Height: 600, ItemHeight: 120, Overscan: 5}
}

func (w Window) itemHeight() int {
	if w.ItemHeight <= 0 {
		return 1
	}
	return w.ItemHeight
}

// Visible is how many whole rows fit in the viewport, at least one.
func (w Window) Visible() int {
	return max(1, w.Height/w.itemHeight())
}

// TotalHeight is the scrollable extent of count rows.
func (w Window) TotalHeight(count int) int {
	return count * w.itemHeight()
}

// Range returns the half-open [start, end) of rows to render for the
// given scroll offset: rows intersecting the viewport plus Overscan on each
// side, clamped to [0, count).
func (w Window) Range(offset, count int) (start, end int) {
	if count <= 0 {
		return 0, 0
	}
	ih := w.itemHeight()
	offset = w.ClampOffset(offset, count)

	first := offset / ih
	last := (offset + max(w.Height, 0) + ih - 1) / ih // exclusive

	start = max(0, first-w.Overscan)
	end = min(count, last+w.Overscan)
	return start, end
}

// ClampOffset bounds offset to [0, TotalHeight-Height].
func (w Window) ClampOffset(offset, count int) int {
	maxOff := max(0, w.TotalHeight(count)-w.Height)
	return min(max(offset, 0), maxOff)
}

// ScrollToItem returns the smallest change to offset that brings row
// index fully into view.
func (w Window) ScrollToItem(offset, index int) int {
	ih := w.itemHeight()
	top := index * ih
	bottom := top + ih
	switch {
	case top < offset:
		return top
	case bottom > offset+w.Height:
		return max(0, bottom-w.Height)
	}
	return offset
}
