package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/tally/internal/finance"
)

func TestFormatCents(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{123456, "$1,234.56"},
		{-500, "-$5.00"},
		{100000000, "$1,000,000.00"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.in); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSignedCents(t *testing.T) {
	if got := FormatSignedCents(2500); got != "+$25.00" {
		t.Errorf("got %q", got)
	}
	if got := FormatSignedCents(-2500); got != "-$25.00" {
		t.Errorf("got %q", got)
	}
	if got := FormatSignedCents(0); got != "$0.00" {
		t.Errorf("got %q", got)
	}
}

func TestFormatCompactCents(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{99900, "$999.00"},
		{123456, "$1.2K"},
		{123456789, "$1.2M"},
		{-250000, "-$2.5K"},
	}
	for _, tt := range tests {
		if got := FormatCompactCents(tt.in); got != tt.want {
			t.Errorf("FormatCompactCents(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(42.25); got != "42.2%" && got != "42.3%" {
		t.Errorf("FormatPercent(42.25) = %q", got)
	}
	if got := FormatRatio(0.5); got != "50.0%" {
		t.Errorf("FormatRatio(0.5) = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-05", "Mar 5, 2024"},
		{"2024-03-05T14:30:00", "Mar 5, 2024"},
		{"2024-03-05T14:30:00.123456", "Mar 5, 2024"},
		{"2024-03-05T14:30:00Z", "Mar 5, 2024"},
		{"", "-"},
		{"soon", "soon"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBalanceLine(t *testing.T) {
	tests := []struct {
		b    finance.BudgetBalance
		want string
	}{
		{finance.BudgetBalance{Status: finance.Balanced}, "Balanced"},
		{finance.BudgetBalance{RemainingCents: 50000, Status: finance.Unallocated}, "$500.00 left to allocate"},
		{finance.BudgetBalance{RemainingCents: -2000, Status: finance.OverBudget}, "$20.00 over budget"},
	}
	for _, tt := range tests {
		if got := BalanceLine(tt.b); got != tt.want {
			t.Errorf("BalanceLine(%+v) = %q, want %q", tt.b, got, tt.want)
		}
	}
	if StatusLabel(finance.OverBudget) != "Over Budget" {
		t.Errorf("StatusLabel = %q", StatusLabel(finance.OverBudget))
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Allocated"},
		Rows: [][]string{
			{"Rent", "$1,500.00"},
			{"---"},
			{"Total", "$1,500.00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// top, header, header rule, row, separator, row, bottom
	if len(lines) != 7 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != width {
			t.Errorf("line %d width %d, want %d: %q", i, lipgloss.Width(l), width, l)
		}
	}
	if !strings.Contains(out, "Rent") || !strings.Contains(out, "Total") {
		t.Errorf("missing cells:\n%s", out)
	}
	if RenderTable(Table{}) != "" {
		t.Error("empty table rendered output")
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8}))
	if len(got) != 8 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0] != '▁' || got[7] != '█' {
		t.Errorf("sparkline = %q", string(got))
	}
	neg := []rune(RenderSparkline([]float64{-10, 0, 10}))
	if neg[0] != '▁' || neg[2] != '█' {
		t.Errorf("negative sparkline = %q", string(neg))
	}
	if RenderSparkline(nil) != "" {
		t.Error("nil series rendered output")
	}
}
