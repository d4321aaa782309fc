package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/tally/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{100, 3}, {81, 4}, {7, 7}, {10, 1}} {
		ws := LayoutRow(tc.total, tc.n)
		sum := 0
		for _, w := range ws {
			sum += w
		}
		if sum != tc.total || len(ws) != tc.n {
			t.Errorf("LayoutRow(%d, %d) = %v", tc.total, tc.n, ws)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}

	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		if lipgloss.Width(line) != width {
			t.Errorf("line %d width = %d, want %d", i, lipgloss.Width(line), width)
		}
		if !strings.Contains(line, "\x1b[") {
			t.Errorf("line %d has no styling: %q", i, line)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Income", Value: "$5,000.00"},
		{Label: "Allocated", Value: "$4,500.00", Delta: "90%"},
		{Label: "Remaining", Value: "$500.00", Tone: theme.Active.Orange},
	}, 90)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestSparkline(t *testing.T) {
	got := Sparkline([]float64{-5, 0, 5, 10}, theme.Active.Accent)
	if lipgloss.Width(got) != 4 {
		t.Fatalf("width = %d", lipgloss.Width(got))
	}
	if !strings.ContainsRune(got, '▁') || !strings.ContainsRune(got, '█') {
		t.Errorf("sparkline %q should span floor to peak", got)
	}
	if Sparkline(nil, theme.Active.Accent) != "" {
		t.Error("empty series should render nothing")
	}
}

func TestBarChartFallsBackWhenSmall(t *testing.T) {
	vals := []float64{100, 200, 300}
	if got := BarChart(vals, nil, theme.Active.Accent, 10, 8); lipgloss.Height(got) != 1 {
		t.Errorf("narrow chart should be a sparkline, got %d lines", lipgloss.Height(got))
	}
	got := BarChart(vals, []string{"Jan", "Feb", "Mar"}, theme.Active.Accent, 40, 5)
	// 5 plot rows, the axis, and the label row
	if h := lipgloss.Height(got); h != 7 {
		t.Errorf("chart height = %d, want 7", h)
	}
	if !strings.Contains(got, "Jan") {
		t.Error("missing x label")
	}
}

func TestChartLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{950, "$950"},
		{1500, "$1.5k"},
		{2_500_000, "$2.5M"},
		{-1500, "-$1.5k"},
	}
	for _, tt := range tests {
		if got := ChartLabel(tt.in); got != tt.want {
			t.Errorf("ChartLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpendBarWidth(t *testing.T) {
	for _, tc := range []struct{ spent, alloc int64 }{
		{0, 1000}, {500, 1000}, {2000, 1000}, {-100, 1000}, {100, 0},
	} {
		if w := lipgloss.Width(SpendBar(tc.spent, tc.alloc, 20)); w != 20 {
			t.Errorf("SpendBar(%d, %d) width = %d", tc.spent, tc.alloc, w)
		}
	}
}

func TestFundBarClamps(t *testing.T) {
	got := FundBar("Vacation", 150, 12, 20)
	if !strings.Contains(got, "100%") {
		t.Errorf("expected clamped 100%%, got %q", got)
	}
}

func TestTabVisualWidth(t *testing.T) {
	settings := Tabs[len(Tabs)-1]
	if TabVisualWidth(settings, false) != TabVisualWidth(settings, true)+3 {
		t.Error("inactive Settings tab should carry its [x] hint")
	}
	if got := TabVisualWidth(Tabs[0], false); got != len("Budgets")+2 {
		t.Errorf("Budgets width = %d", got)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('n') != 4 {
		t.Errorf("n -> %d", TabIdxByKey('n'))
	}
	if TabIdxByKey('z') != -1 {
		t.Error("unknown key should be -1")
	}
}

func TestStatusBarFillsWidth(t *testing.T) {
	bar := RenderStatusBar(120, Status{
		Message:     "Saved",
		LastRefresh: time.Now().Add(-2 * time.Minute),
		AutoRefresh: true,
		Stale:       true,
	})
	if w := lipgloss.Width(bar); w != 120 {
		t.Errorf("status bar width = %d, want 120", w)
	}
	if !strings.Contains(bar, "offline") || !strings.Contains(bar, "2m ago") {
		t.Errorf("status bar missing state: %q", bar)
	}
}
