package catlist

import "testing"

func TestWindowRange(t *testing.T) {
	w := DefaultWindow()
	tests := []struct {
		name              string
		offset, count     int
		wantStart, wantEnd int
	}{
		{"empty", 0, 0, 0, 0},
		{"top", 0, 100, 0, 10},
		{"middle", 1200, 100, 5, 20},
		{"partial row", 1260, 100, 5, 21},
		{"bottom clamps", 1 << 20, 100, 90, 100},
		{"short list", 0, 3, 0, 3},
		{"negative offset", -50, 100, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := w.Range(tt.offset, tt.count)
			if s != tt.wantStart || e != tt.wantEnd {
				t.Errorf("Range(%d, %d) = [%d, %d), want [%d, %d)", tt.offset, tt.count, s, e, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestWindowClampAndScroll(t *testing.T) {
	w := Window{Height: 10, ItemHeight: 2, Overscan: 0}

	if got := w.ClampOffset(100, 20); got != 30 {
		t.Errorf("ClampOffset = %d, want 30", got)
	}
	if got := w.ClampOffset(5, 3); got != 0 {
		t.Errorf("ClampOffset short = %d, want 0", got)
	}

	if got := w.ScrollToItem(0, 2); got != 0 {
		t.Errorf("visible row moved offset to %d", got)
	}
	if got := w.ScrollToItem(0, 7); got != 6 {
		t.Errorf("ScrollToItem down = %d, want 6", got)
	}
	if got := w.ScrollToItem(10, 1); got != 2 {
		t.Errorf("ScrollToItem up = %d, want 2", got)
	}
	if w.Visible() != 5 {
		t.Errorf("Visible = %d", w.Visible())
	}
}
