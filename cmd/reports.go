package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagRptRange   string
	flagRptFrom    string
	flagRptTo      string
	flagRptBudgets []int64
	flagRptGroupBy string
	flagRptMonths  int
)

var reportsCmd = &cobra.Command{
	Use:     "reports",
	Aliases: []string{"report"},
	Short:   "Spending, income and trend reports",
	RunE:    runReportsDashboard,
}

var reportsDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Spending and income over recent months",
	Args:  cobra.NoArgs,
	RunE:  runReportsDashboard,
}

var reportsSpendingCmd = &cobra.Command{
	Use:   "spending",
	Short: "Spending by category",
	Args:  cobra.NoArgs,
	RunE:  runReportsSpending,
}

var reportsIncomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Budgeted income by month",
	Args:  cobra.NoArgs,
	RunE:  runReportsIncome,
}

var reportsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Allocation against spend per category",
	Args:  cobra.NoArgs,
	RunE:  runReportsCategories,
}

var reportsTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Spending trend and growth rate",
	Args:  cobra.NoArgs,
	RunE:  runReportsTrends,
}

var reportsComparisonCmd = &cobra.Command{
	Use:   "comparison",
	Short: "Compare budgets side by side",
	Args:  cobra.NoArgs,
	RunE:  runReportsComparison,
}

var reportsPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the --range presets",
	Args:  cobra.NoArgs,
	RunE:  runReportsPresets,
}

var reportsSavedCmd = &cobra.Command{
	Use:   "saved [report-id]",
	Short: "List saved reports, or run one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReportsSaved,
}

func init() {
	for _, c := range []*cobra.Command{reportsSpendingCmd, reportsIncomeCmd, reportsCategoriesCmd,
		reportsTrendsCmd, reportsComparisonCmd} {
		f := c.Flags()
		f.StringVar(&flagRptRange, "range", "last-3-months", "Preset range, see: tally reports presets")
		f.StringVar(&flagRptFrom, "from", "", "Start date (YYYY-MM-DD), overrides --range")
		f.StringVar(&flagRptTo, "to", "", "End date (YYYY-MM-DD), overrides --range")
		f.Int64SliceVar(&flagRptBudgets, "budget", nil, "Only these budget IDs")
	}
	reportsTrendsCmd.Flags().StringVar(&flagRptGroupBy, "group-by", "month", "month or week")
	reportsDashboardCmd.Flags().IntVar(&flagRptMonths, "months", 0, "Months to cover (default from config)")
	reportsCmd.Flags().IntVar(&flagRptMonths, "months", 0, "Months to cover (default from config)")

	reportsCmd.AddCommand(reportsDashboardCmd, reportsSpendingCmd, reportsIncomeCmd, reportsCategoriesCmd,
		reportsTrendsCmd, reportsComparisonCmd, reportsPresetsCmd, reportsSavedCmd)
	rootCmd.AddCommand(reportsCmd)
}

// reportRequest builds the request body from --range, --from, --to and
// --budget.
func reportRequest(kind model.ReportType) (model.ReportRequest, error) {
	r, ok := finance.PresetByLabel(time.Now(), flagRptRange)
	if !ok && (flagRptFrom == "" || flagRptTo == "") {
		return model.ReportRequest{}, fmt.Errorf("unknown --range %q; see `tally reports presets`", flagRptRange)
	}
	if flagRptFrom != "" {
		r.Start = flagRptFrom
	}
	if flagRptTo != "" {
		r.End = flagRptTo
	}
	if r.Start > r.End {
		return model.ReportRequest{}, fmt.Errorf("range start %s is after end %s", r.Start, r.End)
	}

	req := model.ReportRequest{
		ReportType:     kind,
		DateRangeStart: r.Start,
		DateRangeEnd:   r.End,
	}
	if len(flagRptBudgets) > 0 {
		req.Filters = &model.ReportFilters{BudgetIDs: flagRptBudgets}
	}
	return req, nil
}

func rangeTitle(title string, req model.ReportRequest) string {
	return fmt.Sprintf("%s, %s to %s", title, cli.FormatDate(req.DateRangeStart), cli.FormatDate(req.DateRangeEnd))
}

func reportMonths() int {
	if flagRptMonths > 0 {
		return flagRptMonths
	}
	return appCfg.General.ReportMonths
}

func runReportsDashboard(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	months := reportMonths()
	d, err := client.ReportsDashboard(cmdContext(cmd), months)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(d)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("Last %d months", months)))
	fmt.Print(cli.RenderKV([][2]string{
		{"Income", cli.FormatCents(d.TotalIncomeCents)},
		{"Spent", cli.FormatCents(d.TotalSpentCents)},
		{"Remaining", cli.FormatSignedCents(d.RemainingCents)},
	}))

	if len(d.MonthlyTrend) > 0 {
		values := make([]float64, 0, len(d.MonthlyTrend))
		for _, m := range d.MonthlyTrend {
			values = append(values, float64(m.TotalCents))
		}
		fmt.Println()
		fmt.Printf("  %s  %s\n", cli.RenderMuted("Monthly spend"), cli.RenderSparkline(values))
	}
	if len(d.TopCategories) > 0 {
		fmt.Println()
		fmt.Println("  " + cli.RenderMuted("Top categories"))
		top := float64(d.TopCategories[0].TotalCents)
		for _, c := range d.TopCategories {
			label := fmt.Sprintf("%-20s %12s", c.Name, cli.FormatCents(c.TotalCents))
			fmt.Println(cli.RenderHorizontalBar(label, float64(c.TotalCents), top, 24))
		}
	}
	return nil
}

func runReportsSpending(cmd *cobra.Command, _ []string) error {
	req, err := reportRequest(model.ReportSpending)
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	r, err := client.SpendingReport(cmdContext(cmd), req)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(r)
	}

	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Spent", cli.FormatCents(r.TotalSpentCents)},
		{"Transactions", cli.FormatNumber(int64(r.TransactionCount))},
		{"Average", cli.FormatCents(r.AvgTransactionCents)},
	}))
	if len(r.ByCategory) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(r.ByCategory))
	for _, c := range r.ByCategory {
		rows = append(rows, []string{
			c.CategoryName,
			cli.FormatCents(c.TotalSpentCents),
			strconv.Itoa(c.TransactionCount),
			cli.FormatPercent(c.Percentage),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   rangeTitle("Spending", req),
		Headers: []string{"Category", "Spent", "Txns", "Share"},
		Rows:    rows,
	}))
	return nil
}

func runReportsIncome(cmd *cobra.Command, _ []string) error {
	req, err := reportRequest(model.ReportIncome)
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	r, err := client.IncomeReport(cmdContext(cmd), req)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(r)
	}

	rows := make([][]string, 0, len(r.ByMonth)+2)
	for _, m := range r.ByMonth {
		rows = append(rows, []string{cli.FormatMonth(m.Year, m.Month), cli.FormatCents(m.IncomeCents)})
	}
	rows = append(rows, []string{"---"},
		[]string{"Total", cli.FormatCents(r.TotalIncomeCents)},
		[]string{"Monthly average", cli.FormatCents(r.AvgMonthlyIncomeCents)},
	)
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   rangeTitle("Income", req),
		Headers: []string{"Month", "Income"},
		Rows:    rows,
	}))
	return nil
}

func runReportsCategories(cmd *cobra.Command, _ []string) error {
	req, err := reportRequest(model.ReportCategory)
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	cats, err := client.CategoryReport(cmdContext(cmd), req)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cats)
	}
	if len(cats) == 0 {
		fmt.Println("\n  No categories in range.")
		return nil
	}

	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].UtilizationPercentage > cats[j].UtilizationPercentage
	})
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		used := cli.FormatPercent(c.UtilizationPercentage)
		if c.UtilizationPercentage > 100 {
			used = cli.RenderWarning(used)
		}
		rows = append(rows, []string{
			c.CategoryName,
			cli.FormatCents(c.TotalAllocatedCents),
			cli.FormatCents(c.TotalSpentCents),
			cli.FormatCents(c.AvgSpentCents),
			strconv.Itoa(c.BudgetCount),
			used,
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   rangeTitle("Categories", req),
		Headers: []string{"Category", "Allocated", "Spent", "Avg/budget", "Budgets", "Used"},
		Rows:    rows,
	}))
	return nil
}

func runReportsTrends(cmd *cobra.Command, _ []string) error {
	if flagRptGroupBy != "month" && flagRptGroupBy != "week" {
		return fmt.Errorf("--group-by must be month or week, got %q", flagRptGroupBy)
	}
	req, err := reportRequest(model.ReportTrend)
	if err != nil {
		return err
	}
	req.GroupBy = flagRptGroupBy
	client, err := authedClient()
	if err != nil {
		return err
	}
	r, err := client.TrendReport(cmdContext(cmd), req)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(r)
	}

	values := make([]float64, 0, len(r.Trends))
	rows := make([][]string, 0, len(r.Trends)+len(r.Forecast)+1)
	for _, t := range r.Trends {
		values = append(values, float64(t.TotalCents))
		rows = append(rows, []string{
			finance.FormatPeriod(t.Period),
			cli.FormatCents(t.TotalCents),
			strconv.Itoa(t.TransactionCount),
			cli.FormatCents(t.AvgTransactionCents),
		})
	}
	if len(r.Forecast) > 0 {
		rows = append(rows, []string{"---"})
		for _, f := range r.Forecast {
			rows = append(rows, []string{
				finance.FormatPeriod(f.Period) + " " + cli.RenderMuted("(forecast)"),
				cli.FormatCents(f.ProjectedCents), "", "",
			})
		}
	}

	fmt.Println()
	fmt.Printf("  %s  %s   %s %s\n", cli.RenderMuted("Trend"), cli.RenderSparkline(values),
		cli.RenderMuted("growth"), finance.FormatSignedPercent(r.GrowthRate))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   rangeTitle("Spending trend", req),
		Headers: []string{"Period", "Spent", "Txns", "Average"},
		Rows:    rows,
	}))
	return nil
}

func runReportsComparison(cmd *cobra.Command, _ []string) error {
	req, err := reportRequest(model.ReportComparison)
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	r, err := client.ComparisonReport(cmdContext(cmd), req)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(r)
	}

	rows := make([][]string, 0, len(r.Budgets)+2)
	for _, b := range r.Budgets {
		rows = append(rows, []string{
			cli.FormatMonth(b.Year, b.Month),
			cli.FormatCents(b.IncomeCents),
			cli.FormatCents(b.AllocatedCents),
			cli.FormatCents(b.SpentCents),
			cli.FormatSignedCents(b.RemainingCents),
			cli.FormatPercent(b.UtilizationPercentage),
		})
	}
	rows = append(rows, []string{"---"}, []string{
		"Total", cli.FormatCents(r.TotalIncomeCents), "", cli.FormatCents(r.TotalSpentCents), "",
		cli.FormatPercent(r.AvgUtilization),
	})
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   rangeTitle("Budget comparison", req),
		Headers: []string{"Month", "Income", "Allocated", "Spent", "Remaining", "Used"},
		Rows:    rows,
	}))
	return nil
}

func runReportsPresets(_ *cobra.Command, _ []string) error {
	presets := finance.DateRangePresets(time.Now())
	if flagJSON {
		return printJSON(presets)
	}
	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		rows = append(rows, []string{p.Label, p.Start, p.End})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Date ranges",
		Headers: []string{"Preset", "From", "To"},
		Rows:    rows,
	}))
	return nil
}

func runReportsSaved(cmd *cobra.Command, args []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)

	if len(args) == 1 {
		id, err := parseID(args[0], "report")
		if err != nil {
			return err
		}
		out, err := client.RunSavedReport(ctx, id)
		if err != nil {
			return err
		}
		// The result shape depends on the report type.
		return printJSON(out)
	}

	saved, err := client.ListSavedReports(ctx)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(saved)
	}
	if len(saved) == 0 {
		fmt.Println("\n  No saved reports.")
		return nil
	}
	rows := make([][]string, 0, len(saved))
	for _, s := range saved {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			string(s.ReportType),
			cli.FormatDate(s.DateRangeStart) + " - " + cli.FormatDate(s.DateRangeEnd),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Saved reports",
		Headers: []string{"ID", "Name", "Type", "Range"},
		Rows:    rows,
	}))
	return nil
}
