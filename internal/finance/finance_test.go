package finance

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/tally/internal/model"
)

func TestParseDollars(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"12", 1200},
		{"12.5", 1250},
		{"$1,234.56", 123456},
		{"0.005", 1},
		{"0.004", 0},
		{"-0.005", -1},
		{" 3.10 ", 310},
		{"-$5", -500},
		{".5", 50},
		{"92233720368547758.07", 9223372036854775807},
	}
	for _, tt := range tests {
		got, err := ParseDollars(tt.in)
		if err != nil {
			t.Errorf("ParseDollars(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDollars(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	bad := []string{
		"", "abc", "$", "1.2.3", ".",
		"--5", "- -5", "+5", "$-5",
		"1e20", "1E2",
		"99999999999999999999", "92233720368547758.08",
	}
	for _, bad := range bad {
		if _, err := ParseDollars(bad); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseDollars(%q) err = %v, want ErrInvalidAmount", bad, err)
		}
	}
}

func TestFormatDollars(t *testing.T) {
	if got := FormatDollars(123456); got != "1234.56" {
		t.Errorf("got %q", got)
	}
	if got := FormatDollars(-5); got != "-0.05" {
		t.Errorf("got %q", got)
	}
}

func TestFundProgress(t *testing.T) {
	tests := []struct {
		current, target int64
		want            float64
	}{
		{0, 0, 0},
		{500, 0, 0},
		{50, 100, 50},
		{250, 100, 100},
		{100, 100, 100},
	}
	for _, tt := range tests {
		if got := FundProgress(tt.current, tt.target); got != tt.want {
			t.Errorf("FundProgress(%d, %d) = %v, want %v", tt.current, tt.target, got, tt.want)
		}
	}
}

func TestMonthsToTarget(t *testing.T) {
	tests := []struct {
		remaining, monthly int64
		want               int
		ok                 bool
	}{
		{1000, 0, 0, false},
		{0, 100, 0, false},
		{-50, 100, 0, false},
		{1000, -10, 0, false},
		{1000, 100, 10, true},
		{1001, 100, 11, true},
		{1, 100, 1, true},
	}
	for _, tt := range tests {
		got, ok := MonthsToTarget(tt.remaining, tt.monthly)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MonthsToTarget(%d, %d) = (%d, %v), want (%d, %v)",
				tt.remaining, tt.monthly, got, ok, tt.want, tt.ok)
		}
	}
}

func TestProgressTier(t *testing.T) {
	tests := map[float64]Tier{
		0: TierMinimal, 24.9: TierMinimal, 25: TierLow, 50: TierMid,
		74.99: TierMid, 75: TierHigh, 100: TierComplete,
	}
	for pct, want := range tests {
		if got := ProgressTier(pct); got != want {
			t.Errorf("ProgressTier(%v) = %v, want %v", pct, got, want)
		}
	}
}

func TestValidateFund(t *testing.T) {
	err := ValidateFund(model.FundInput{Name: " ", TargetCents: 0, MonthlyContributionCents: -1})
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}
	if errs[0].Message != "Fund name is required" {
		t.Errorf("first message = %q", errs[0].Message)
	}

	if err := ValidateFund(model.FundInput{Name: "Car", TargetCents: 100}); err != nil {
		t.Errorf("valid fund rejected: %v", err)
	}
}

func TestNameLimitCountsCharacters(t *testing.T) {
	wide := strings.Repeat("預", 255)
	if err := ValidateFund(model.FundInput{Name: wide, TargetCents: 100}); err != nil {
		t.Errorf("255-character fund name rejected: %v", err)
	}
	if err := ValidateCategory(wide, 0, 0); err != nil {
		t.Errorf("255-character category name rejected: %v", err)
	}

	long := strings.Repeat("預", 256)
	if err := ValidateFund(model.FundInput{Name: long, TargetCents: 100}); err == nil {
		t.Error("256-character fund name accepted")
	}
	if err := ValidateCategory(long, 0, 0); err == nil {
		t.Error("256-character category name accepted")
	}
}

func TestSortFunds(t *testing.T) {
	funds := []model.SinkingFund{
		{Name: "b", TargetCents: 300, CurrentBalanceCents: 30, CreatedAt: "2024-03-01"},
		{Name: "A", TargetCents: 100, CurrentBalanceCents: 90, CreatedAt: "2024-01-01"},
		{Name: "c", TargetCents: 200, CurrentBalanceCents: 100, CreatedAt: "2024-02-01"},
	}
	names := func(fs []model.SinkingFund) string {
		s := ""
		for _, f := range fs {
			s += f.Name
		}
		return s
	}

	tests := []struct {
		by   string
		desc bool
		want string
	}{
		{SortFundName, false, "Abc"},
		{SortFundName, true, "cbA"},
		{SortFundProgress, false, "bcA"},
		{SortFundTarget, false, "Acb"},
		{SortFundCreated, false, "Acb"},
		{"", true, "bcA"},
	}
	for _, tt := range tests {
		if got := names(SortFunds(funds, tt.by, tt.desc)); got != tt.want {
			t.Errorf("SortFunds(%q, %v) = %q, want %q", tt.by, tt.desc, got, tt.want)
		}
	}
	if names(funds) != "bAc" {
		t.Error("SortFunds modified its input")
	}
}

func TestBalance(t *testing.T) {
	cats := []model.BudgetCategory{{AllocatedCents: 300000}, {AllocatedCents: 200000}}
	b := Balance(500000, cats)
	if b.RemainingCents != 0 || b.Status != Balanced {
		t.Errorf("got %+v, want balanced", b)
	}

	b = Balance(500000, cats[:1])
	if b.RemainingCents != 200000 || b.Status != Unallocated {
		t.Errorf("got %+v, want unallocated", b)
	}

	b = Balance(100000, cats)
	if b.RemainingCents != -400000 || b.Status != OverBudget {
		t.Errorf("got %+v, want over budget", b)
	}
	if b.Status.Label() != "Over Budget" {
		t.Errorf("label = %q", b.Status.Label())
	}
}

func TestValidateNewBudget(t *testing.T) {
	base := model.BudgetCreate{Month: 3, Year: 2024, IncomeCents: 1000}
	tests := []struct {
		name string
		mod  func(*model.BudgetCreate)
		want string
	}{
		{"no income", func(b *model.BudgetCreate) { b.IncomeCents = 0 }, "Please enter a valid income amount"},
		{"no categories", func(b *model.BudgetCreate) {}, "Please add at least one category"},
		{"unbalanced", func(b *model.BudgetCreate) {
			b.Categories = []model.CategoryCreate{{Name: "Rent", AllocatedCents: 900}}
		}, "Budget must be balanced. All income must be allocated."},
		{"bad month", func(b *model.BudgetCreate) { b.Month = 13 }, "Month must be between 1 and 12"},
		{"ok", func(b *model.BudgetCreate) {
			b.Categories = []model.CategoryCreate{{Name: "Rent", AllocatedCents: 1000}}
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mod(&in)
			err := ValidateNewBudget(in)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.want {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestInvoiceTotals(t *testing.T) {
	items := []model.InvoiceItem{
		{Quantity: 2, UnitPriceCents: 1000, TaxRate: model.DefaultTaxRate},
		{Quantity: 1, UnitPriceCents: 333, TaxRate: model.DefaultTaxRate},
	}
	got := InvoiceTotals(items, 100)
	// 2000*750/10000 = 150, 333*750/10000 = 24 (truncated)
	want := Totals{SubtotalCents: 2333, TaxCents: 174, DiscountCents: 100, TotalCents: 2407}
	if got != want {
		t.Errorf("InvoiceTotals = %+v, want %+v", got, want)
	}
}

func TestFormatPeriod(t *testing.T) {
	tests := map[string]string{
		"2024-03":  "Mar 2024",
		"2024-W05": "2024 Week 05",
		"2024":     "2024",
	}
	for in, want := range tests {
		if got := FormatPeriod(in); got != want {
			t.Errorf("FormatPeriod(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDateRangePresets(t *testing.T) {
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	presets := DateRangePresets(now)
	if len(presets) != 5 {
		t.Fatalf("got %d presets", len(presets))
	}
	last := presets[4]
	if last.Start != "2023-01-01" || last.End != "2023-12-31" {
		t.Errorf("Last Year = %+v", last)
	}
	if presets[0].Start != "2024-04-15" || presets[0].End != "2024-05-15" {
		t.Errorf("Last 30 Days = %+v", presets[0])
	}
	if p, ok := PresetByLabel(now, "this-year"); !ok || p.Start != "2024-01-01" {
		t.Errorf("PresetByLabel = %+v, %v", p, ok)
	}
}

func TestLabels(t *testing.T) {
	if AssetTypeLabel("real_estate") != "Real Estate" {
		t.Error("asset label")
	}
	if LiabilityTypeLabel("unknown_kind") != "unknown_kind" {
		t.Error("unknown liability label should pass through")
	}
	if FormatSignedPercent(3.44) != "+3.4%" || FormatSignedPercent(-2) != "-2.0%" {
		t.Error("signed percent")
	}
	if GoalTypeLabel(model.GoalDebtRepayment) != "Debt Repayment" {
		t.Error("goal label")
	}
}

func TestFilterAndGroupCategories(t *testing.T) {
	cats := []model.BudgetCategory{
		{Name: "Rent", CategoryGroup: "Housing"},
		{Name: "Food", Description: "groceries"},
		{Name: "Power", CategoryGroup: "Housing"},
	}
	if got := FilterCategories(cats, "GROC"); len(got) != 1 || got[0].Name != "Food" {
		t.Errorf("filter by description = %+v", got)
	}
	if got := FilterCategories(cats, "housing"); len(got) != 2 {
		t.Errorf("filter by group = %+v", got)
	}
	if got := GroupName(model.BudgetCategory{CategoryGroup: "  "}); got != UngroupedName {
		t.Errorf("blank group = %q, want %q", got, UngroupedName)
	}
	groups := GroupCategories(cats)
	if len(groups) != 2 || groups[0].Name != "Housing" || groups[1].Name != UngroupedName {
		t.Errorf("groups = %+v", groups)
	}
	if err := ValidateCategory("", -1, -1); err == nil {
		t.Error("expected validation error")
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := PeriodKey(2024, 3); got != "2024-03" {
		t.Errorf("PeriodKey = %q", got)
	}
	if got := PeriodLabel(2024, 12); got != "Dec 2024" {
		t.Errorf("PeriodLabel = %q", got)
	}
}
