package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/catlist"
	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/logging"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
)

var (
	flagBudgetMonth      int
	flagBudgetYear       int
	flagBudgetIncome     string
	flagBudgetCategories []string
)

var budgetsCmd = &cobra.Command{
	Use:     "budgets",
	Aliases: []string{"budget"},
	Short:   "Monthly budgets",
	RunE:    runBudgetsList,
}

var budgetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budgets with their balance status",
	Args:  cobra.NoArgs,
	RunE:  runBudgetsList,
}

var budgetsShowCmd = &cobra.Command{
	Use:   "show <budget-id|YYYY-MM>",
	Short: "Show a budget with per-category spending",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsShow,
}

var budgetsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a balanced budget",
	Example: `  tally budgets create --month 3 --year 2024 --income 5000 \
    --category "Rent=1500:Housing" --category "Groceries=600:Food" --category "Savings=2900"`,
	Args: cobra.NoArgs,
	RunE: runBudgetsCreate,
}

var budgetsUpdateCmd = &cobra.Command{
	Use:   "update <budget-id>",
	Short: "Change a budget's income or replace its categories",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsUpdate,
}

var budgetsDeleteCmd = &cobra.Command{
	Use:   "delete <budget-id>",
	Short: "Delete a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsDelete,
}

var budgetsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Totals across all budgets",
	Args:  cobra.NoArgs,
	RunE:  runBudgetsSummary,
}

func init() {
	now := time.Now()
	budgetsCreateCmd.Flags().IntVar(&flagBudgetMonth, "month", int(now.Month()), "Budget month (1-12)")
	budgetsCreateCmd.Flags().IntVar(&flagBudgetYear, "year", now.Year(), "Budget year")
	for _, c := range []*cobra.Command{budgetsCreateCmd, budgetsUpdateCmd} {
		c.Flags().StringVar(&flagBudgetIncome, "income", "", "Monthly income in dollars")
		c.Flags().StringArrayVar(&flagBudgetCategories, "category", nil, `Category as "Name=amount[:group]" (repeatable)`)
	}
	_ = budgetsCreateCmd.MarkFlagRequired("income")

	budgetsCmd.AddCommand(budgetsListCmd, budgetsShowCmd, budgetsCreateCmd,
		budgetsUpdateCmd, budgetsDeleteCmd, budgetsSummaryCmd)
	rootCmd.AddCommand(budgetsCmd)
}

// loadBudgets goes through the pipeline so an unreachable API falls back
// to the local snapshot.
func loadBudgets(cmd *cobra.Command) (*pipeline.LoadResult, error) {
	client, err := authedClient()
	if err != nil {
		return nil, err
	}

	var bc pipeline.BudgetCache
	if cache := openCache(); cache != nil {
		defer func() { _ = cache.Close() }()
		bc = cache
	}

	progress("  Loading budgets...\n")
	res, err := pipeline.LoadBudgets(cmdContext(cmd), client, bc)
	if err != nil {
		return nil, err
	}
	if res.CacheErr != nil {
		appLog.Warn("cache refresh failed",
			logging.FieldOperation, logging.OpSave,
			logging.FieldError, res.CacheErr)
	}
	if res.Stale {
		synced := "unknown"
		if !res.SyncedAt.IsZero() {
			synced = res.SyncedAt.Local().Format("Jan 2 15:04")
		}
		fmt.Println(cli.RenderWarning(fmt.Sprintf("API unreachable (%v). Showing snapshot from %s.", res.FetchErr, synced)))
	}
	return res, nil
}

func runBudgetsList(cmd *cobra.Command, _ []string) error {
	res, err := loadBudgets(cmd)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(res.Budgets)
	}
	if len(res.Budgets) == 0 {
		fmt.Println("\n  No budgets yet. Create one with `tally budgets create`.")
		return nil
	}

	sum := pipeline.Summarize(res.Budgets)
	rows := make([][]string, 0, len(sum.Budgets))
	for _, r := range sum.Budgets {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			cli.FormatMonth(r.Year, r.Month),
			cli.FormatCents(r.Balance.IncomeCents),
			cli.FormatCents(r.Balance.TotalAllocatedCents),
			cli.FormatSignedCents(r.Balance.RemainingCents),
			strconv.Itoa(r.CategoryCount),
			cli.RenderStatus(r.Balance.Status),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Budgets",
		Headers: []string{"ID", "Period", "Income", "Allocated", "Remaining", "Cats", "Status"},
		Rows:    rows,
	}))
	return nil
}

// resolveBudgetID accepts a numeric ID or a YYYY-MM period.
func resolveBudgetID(cmd *cobra.Command, client *api.Client, arg string) (int64, error) {
	if year, month, ok := parsePeriod(arg); ok {
		sum, err := client.BudgetForPeriod(cmdContext(cmd), year, month)
		if err != nil {
			if errors.Is(err, api.ErrNotFound) {
				return 0, fmt.Errorf("no budget for %s", cli.FormatMonth(year, month))
			}
			return 0, err
		}
		return sum.Budget.ID, nil
	}
	return parseID(arg, "budget")
}

func parsePeriod(s string) (year, month int, ok bool) {
	y, m, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, false
	}
	year, err1 := strconv.Atoi(y)
	month, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

func runBudgetsShow(cmd *cobra.Command, args []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	id, err := resolveBudgetID(cmd, client, args[0])
	if err != nil {
		return err
	}

	view, err := pipeline.LoadBudgetView(cmdContext(cmd), client, id)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(view)
	}

	b := view.Summary.Budget
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BUDGET  %s", cli.FormatMonth(b.Year, b.Month))))
	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Income", cli.FormatCents(view.Balance.IncomeCents)},
		{"Allocated", cli.FormatCents(view.Balance.TotalAllocatedCents)},
		{"Spent", cli.FormatCents(view.Spending.TotalSpentCents)},
		{"Status", cli.RenderStatus(view.Balance.Status) + "  " + cli.RenderMuted(cli.BalanceLine(view.Balance))},
	}))
	fmt.Println()

	spent := view.Spent()
	var rows [][]string
	for _, g := range finance.GroupCategories(view.Categories) {
		if len(rows) > 0 {
			rows = append(rows, []string{"---"})
		}
		for _, c := range g.Categories {
			row := catlist.RowView(c, spent[c.ID])
			rows = append(rows, []string{
				c.Name,
				g.Name,
				cli.FormatCents(c.AllocatedCents),
				cli.FormatCents(row.SpentCents),
				cli.FormatSignedCents(row.RemainingCents),
				cli.FormatPercent(row.Progress),
			})
		}
	}
	if len(rows) == 0 {
		fmt.Println("  No categories.")
		return nil
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Categories",
		Headers: []string{"Category", "Group", "Allocated", "Spent", "Remaining", "Used"},
		Rows:    rows,
	}))
	return nil
}

// parseCategorySpecs turns "Name=amount[:group]" flags into category lines.
func parseCategorySpecs(specs []string) ([]model.CategoryCreate, error) {
	out := make([]model.CategoryCreate, 0, len(specs))
	for i, spec := range specs {
		name, rest, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("--category %q: expected Name=amount[:group]", spec)
		}
		amount, group, _ := strings.Cut(rest, ":")
		cents, err := finance.ParseDollars(amount)
		if err != nil {
			return nil, fmt.Errorf("--category %q: %w", spec, err)
		}
		out = append(out, model.CategoryCreate{
			Name:           strings.TrimSpace(name),
			AllocatedCents: cents,
			Order:          i,
			CategoryGroup:  strings.TrimSpace(group),
		})
	}
	return out, nil
}

func runBudgetsCreate(cmd *cobra.Command, _ []string) error {
	income, err := dollarsFlag("income", flagBudgetIncome)
	if err != nil {
		return err
	}
	cats, err := parseCategorySpecs(flagBudgetCategories)
	if err != nil {
		return err
	}

	in := model.BudgetCreate{
		Month:       flagBudgetMonth,
		Year:        flagBudgetYear,
		IncomeCents: income,
		Categories:  cats,
	}
	// Balance is checked locally so an unbalanced draft never reaches the API.
	if err := finance.ValidateNewBudget(in); err != nil {
		if bal := finance.BalanceOf(in); bal.Status != finance.Balanced {
			return fmt.Errorf("%w (%s)", err, cli.BalanceLine(bal))
		}
		return err
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	sum, err := client.CreateBudget(cmdContext(cmd), in)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(sum)
	}
	fmt.Printf("  Created budget %d for %s: %s\n",
		sum.Budget.ID, cli.FormatMonth(sum.Budget.Year, sum.Budget.Month),
		cli.BalanceLine(finance.Balance(sum.Budget.IncomeCents, sum.Budget.Categories)))
	return nil
}

func runBudgetsUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "budget")
	if err != nil {
		return err
	}
	if flagBudgetIncome == "" && len(flagBudgetCategories) == 0 {
		return errors.New("nothing to update: pass --income and/or --category")
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)

	var in model.BudgetUpdate
	if flagBudgetIncome != "" {
		income, err := dollarsFlag("income", flagBudgetIncome)
		if err != nil {
			return err
		}
		in.IncomeCents = &income
	}
	if len(flagBudgetCategories) > 0 {
		if in.Categories, err = parseCategorySpecs(flagBudgetCategories); err != nil {
			return err
		}
		for _, c := range in.Categories {
			if err := finance.ValidateCategory(c.Name, c.AllocatedCents, c.Order); err != nil {
				return err
			}
		}
	} else {
		// The endpoint replaces categories, so an income-only change resends
		// the current set.
		cur, err := client.GetBudget(ctx, id)
		if err != nil {
			return err
		}
		for _, c := range cur.Budget.Categories {
			in.Categories = append(in.Categories, model.CategoryCreate{
				Name:           c.Name,
				AllocatedCents: c.AllocatedCents,
				Order:          c.Order,
				Description:    c.Description,
				CategoryGroup:  c.CategoryGroup,
			})
		}
	}

	sum, err := client.UpdateBudget(ctx, id, in)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(sum)
	}
	fmt.Printf("  Updated budget %d: %s\n", id,
		cli.BalanceLine(finance.Balance(sum.Budget.IncomeCents, sum.Budget.Categories)))
	return nil
}

func runBudgetsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "budget")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.DeleteBudget(cmdContext(cmd), id); err != nil {
		return err
	}
	fmt.Printf("  Deleted budget %d\n", id)
	return nil
}

func runBudgetsSummary(cmd *cobra.Command, _ []string) error {
	res, err := loadBudgets(cmd)
	if err != nil {
		return err
	}
	sum := pipeline.Summarize(res.Budgets)
	if flagJSON {
		return printJSON(sum)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGETS  Summary"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Budgets", cli.FormatNumber(int64(len(sum.Budgets)))},
			{"Unbalanced", cli.FormatNumber(int64(sum.UnbalancedCount))},
			{"---"},
			{"Total income", cli.FormatCents(sum.TotalIncomeCents)},
			{"Total allocated", cli.FormatCents(sum.TotalAllocatedCents)},
			{"Unallocated", cli.FormatSignedCents(sum.TotalIncomeCents - sum.TotalAllocatedCents)},
		},
	}))

	if len(sum.Budgets) > 1 {
		// Oldest to newest for the sparkline.
		incomes := make([]float64, len(sum.Budgets))
		for i, r := range sum.Budgets {
			incomes[len(sum.Budgets)-1-i] = float64(r.Balance.IncomeCents) / 100
		}
		fmt.Printf("\n  Income trend  %s\n", cli.RenderSparkline(incomes))
	}
	return nil
}
