package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

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
	flagCatSearch    string
	flagCatSort      string
	flagCatDesc      bool
	flagCatGroup     bool
	flagCatCollapsed []string

	flagCatName      string
	flagCatAmount    string
	flagCatGroupName string
	flagCatDescr     string

	flagExportFormat string
	flagOutput       string

	flagCatSkipDuplicates bool
	flagCatUpdateExisting bool
	flagCatPeriod         string
	flagCatAnalyticsGroup string
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "Budget categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list <budget-id|YYYY-MM>",
	Short: "List a budget's categories with search, sort and grouping",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesList,
}

var categoriesGroupsCmd = &cobra.Command{
	Use:   "groups <budget-id>",
	Short: "Show category group totals",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesGroups,
}

var categoriesSetCmd = &cobra.Command{
	Use:   "set <budget-id> <category-id>",
	Short: "Change a category's allocation, name, group or description",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoriesSet,
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <budget-id> <category-id>",
	Short: "Remove a category from a budget",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoriesDelete,
}

var categoriesReorderCmd = &cobra.Command{
	Use:   "reorder <budget-id> <category-id>...",
	Short: "Set display order; categories are numbered in the order given",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCategoriesReorder,
}

var categoriesFromTemplatesCmd = &cobra.Command{
	Use:   "from-templates <budget-id> <template-id>...",
	Short: "Add categories to a budget from templates",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCategoriesFromTemplates,
}

var categoriesDuplicateCmd = &cobra.Command{
	Use:   "duplicate <source-budget-id> <target-budget-id> [category-id...]",
	Short: "Copy categories between budgets (all when none are named)",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCategoriesDuplicate,
}

var categoriesExportCmd = &cobra.Command{
	Use:   "export <budget-id>",
	Short: "Download a budget's categories as CSV or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesExport,
}

var categoriesImportCmd = &cobra.Command{
	Use:   "import <budget-id|YYYY-MM> <file>",
	Short: "Upload a CSV of categories into a budget (- reads stdin)",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoriesImport,
}

var categoriesAnalyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Most used categories, average allocations and group totals",
	Args:  cobra.NoArgs,
	RunE:  runCategoriesAnalytics,
}

func init() {
	f := categoriesListCmd.Flags()
	f.StringVar(&flagCatSearch, "search", "", "Only categories whose name contains this text")
	f.StringVar(&flagCatSort, "sort", "", "Sort by order, name or allocated_cents (default from config)")
	f.BoolVar(&flagCatDesc, "desc", false, "Reverse the sort")
	f.BoolVar(&flagCatGroup, "group", false, "Group by category group")
	f.StringSliceVar(&flagCatCollapsed, "collapse", nil, "Groups to show collapsed")

	f = categoriesSetCmd.Flags()
	f.StringVar(&flagCatAmount, "amount", "", "New allocation in dollars")
	f.StringVar(&flagCatName, "name", "", "New name")
	f.StringVar(&flagCatGroupName, "group", "", "New category group")
	f.StringVar(&flagCatDescr, "description", "", "New description")

	categoriesExportCmd.Flags().StringVar(&flagExportFormat, "format", "csv", "csv or json")
	categoriesExportCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (- for stdout)")

	f = categoriesImportCmd.Flags()
	f.BoolVar(&flagCatSkipDuplicates, "skip-duplicates", false, "Skip rows whose name already exists")
	f.BoolVar(&flagCatUpdateExisting, "update-existing", false, "Overwrite categories whose name already exists")

	f = categoriesAnalyticsCmd.Flags()
	f.StringVar(&flagCatPeriod, "period", "", "month, quarter or year")
	f.StringVar(&flagCatAnalyticsGroup, "group", "", "Only this category group")

	categoriesCmd.AddCommand(categoriesListCmd, categoriesGroupsCmd, categoriesSetCmd,
		categoriesDeleteCmd, categoriesReorderCmd, categoriesFromTemplatesCmd,
		categoriesDuplicateCmd, categoriesExportCmd, categoriesImportCmd,
		categoriesAnalyticsCmd)
	rootCmd.AddCommand(categoriesCmd)
}

// listOptions merges the config defaults with the command-line flags.
func listOptions(cmd *cobra.Command) (catlist.Options, error) {
	opts := catlist.DefaultOptions()
	if appCfg.Categories.SortBy != "" {
		opts.SortBy = catlist.SortKey(appCfg.Categories.SortBy)
	}
	opts.SortDesc = appCfg.Categories.SortDesc
	if appCfg.Categories.GroupBy == string(catlist.GroupCategory) {
		opts.GroupBy = catlist.GroupCategory
	}

	if cmd.Flags().Changed("sort") {
		key := catlist.SortKey(flagCatSort)
		switch key {
		case catlist.SortOrder, catlist.SortName, catlist.SortAllocated:
		default:
			return opts, fmt.Errorf("--sort must be order, name or allocated_cents, got %q", flagCatSort)
		}
		opts.SortBy = key
	}
	if cmd.Flags().Changed("desc") {
		opts.SortDesc = flagCatDesc
	}
	if cmd.Flags().Changed("group") {
		opts.GroupBy = catlist.GroupNone
		if flagCatGroup {
			opts.GroupBy = catlist.GroupCategory
		}
	}
	opts.Search = flagCatSearch
	return opts, nil
}

// budgetCategories fetches a budget's categories and spend. When the API
// is unreachable the cached categories are used without spend data.
func budgetCategories(cmd *cobra.Command, client *api.Client, id int64) ([]model.BudgetCategory, map[int64]int64, error) {
	cache := openCache()
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	view, err := pipeline.LoadBudgetView(cmdContext(cmd), client, id)
	if err == nil {
		if cache != nil {
			if cerr := cache.SaveCategories(id, view.Categories); cerr != nil {
				appLog.Warn("caching categories failed",
					logging.FieldBudgetID, id,
					logging.FieldError, cerr)
			}
		}
		return view.Categories, view.Spent(), nil
	}
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNotFound) || cache == nil {
		return nil, nil, err
	}

	cats, cerr := cache.LoadCategories(id)
	if cerr != nil || len(cats) == 0 {
		return nil, nil, err
	}
	fmt.Println(cli.RenderWarning(fmt.Sprintf("API unreachable (%v). Showing cached categories.", err)))
	return cats, nil, nil
}

func runCategoriesList(cmd *cobra.Command, args []string) error {
	opts, err := listOptions(cmd)
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	id, err := resolveBudgetID(cmd, client, args[0])
	if err != nil {
		return err
	}
	cats, spent, err := budgetCategories(cmd, client, id)
	if err != nil {
		return err
	}

	list := catlist.New(opts, catlist.Callbacks{})
	list.SetCategories(cats)
	list.SetSpent(spent)
	for _, g := range flagCatCollapsed {
		list.ToggleGroup(g)
	}

	if flagJSON {
		return printJSON(list.Filtered())
	}
	if list.Len() == 0 {
		fmt.Printf("\n  %s\n", list.EmptyMessage())
		return nil
	}

	var rows [][]string
	for _, it := range list.Items() {
		if it.Kind == catlist.ItemHeader {
			if len(rows) > 0 {
				rows = append(rows, []string{"---"})
			}
			marker := "▾"
			if it.Group.Collapsed {
				marker = "▸"
			}
			rows = append(rows, []string{
				"",
				fmt.Sprintf("%s %s (%d)", marker, it.Group.Name, it.Group.Count),
				cli.FormatCents(it.Group.TotalAllocatedCents),
				"", "", "",
			})
			continue
		}
		row := list.Row(it.Category)
		name := it.Category.Name
		if opts.GroupBy == catlist.GroupCategory {
			name = "  " + name
		}
		rows = append(rows, []string{
			strconv.FormatInt(it.Category.ID, 10),
			name,
			cli.FormatCents(it.Category.AllocatedCents),
			cli.FormatCents(row.SpentCents),
			cli.FormatSignedCents(row.RemainingCents),
			toneLabel(row),
		})
	}

	title := fmt.Sprintf("Categories  sorted by %s", opts.SortBy)
	if opts.SortDesc {
		title += " desc"
	}
	if opts.Search != "" {
		title += fmt.Sprintf("  matching %q", opts.Search)
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"ID", "Category", "Allocated", "Spent", "Remaining", "Used"},
		Rows:    rows,
	}))

	shown := list.Filtered()
	fmt.Printf("  %d categories, %s allocated\n", len(shown), cli.FormatCents(finance.TotalAllocated(shown)))
	return nil
}

func toneLabel(r catlist.Row) string {
	pct := cli.FormatPercent(r.Progress)
	switch r.Tone {
	case catlist.ToneOver:
		return "over " + pct
	case catlist.ToneWarning:
		return "! " + pct
	}
	return pct
}

func runCategoriesGroups(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "budget")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	groups, err := client.CategoryGroups(cmdContext(cmd), id)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(groups)
	}
	if len(groups) == 0 {
		fmt.Println("\n  No category groups.")
		return nil
	}

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		name := g.Name
		if name == "" {
			name = finance.UngroupedName
		}
		rows = append(rows, []string{name, strconv.Itoa(g.Count), cli.FormatCents(g.TotalAllocatedCents)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Category groups",
		Headers: []string{"Group", "Categories", "Allocated"},
		Rows:    rows,
	}))
	return nil
}

func budgetAndCategory(args []string) (int64, int64, error) {
	budgetID, err := parseID(args[0], "budget")
	if err != nil {
		return 0, 0, err
	}
	catID, err := parseID(args[1], "category")
	if err != nil {
		return 0, 0, err
	}
	return budgetID, catID, nil
}

func runCategoriesSet(cmd *cobra.Command, args []string) error {
	budgetID, catID, err := budgetAndCategory(args)
	if err != nil {
		return err
	}

	u := model.CategoryUpdate{CategoryID: catID}
	flags := cmd.Flags()
	if flags.Changed("amount") {
		cents, err := dollarsFlag("amount", flagCatAmount)
		if err != nil {
			return err
		}
		if cents < 0 {
			return &finance.ValidationError{Field: "allocated_cents", Message: "Allocated amount cannot be negative"}
		}
		u.AllocatedCents = &cents
	}
	if flags.Changed("name") {
		if err := finance.ValidateCategory(flagCatName, 0, 0); err != nil {
			return err
		}
		u.Name = &flagCatName
	}
	if flags.Changed("group") {
		u.CategoryGroup = &flagCatGroupName
	}
	if flags.Changed("description") {
		u.Description = &flagCatDescr
	}
	if u.AllocatedCents == nil && u.Name == nil && u.CategoryGroup == nil && u.Description == nil {
		return errors.New("nothing to change: pass --amount, --name, --group or --description")
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.UpdateCategory(cmdContext(cmd), budgetID, u); err != nil {
		return err
	}
	fmt.Printf("  Updated category %d\n", catID)
	return nil
}

func runCategoriesDelete(cmd *cobra.Command, args []string) error {
	budgetID, catID, err := budgetAndCategory(args)
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.DeleteCategory(cmdContext(cmd), budgetID, catID); err != nil {
		return err
	}
	fmt.Printf("  Deleted category %d\n", catID)
	return nil
}

func runCategoriesReorder(cmd *cobra.Command, args []string) error {
	budgetID, err := parseID(args[0], "budget")
	if err != nil {
		return err
	}
	ids, err := parseIDs(args[1:], "category")
	if err != nil {
		return err
	}
	orders := make([]model.CategoryOrder, len(ids))
	for i, id := range ids {
		orders[i] = model.CategoryOrder{ID: id, Order: i}
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	res, err := client.ReorderCategories(cmdContext(cmd), budgetID, orders)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(res)
	}
	fmt.Printf("  Reordered %d categories\n", res.UpdatedCount)
	return nil
}

func printBulkResult(verb string, res *model.BulkUpdateResult) error {
	if flagJSON {
		return printJSON(res)
	}
	fmt.Printf("  %s %d categories\n", verb, res.UpdatedCount)
	for _, e := range res.Errors {
		fmt.Println(cli.RenderWarning(e))
	}
	if !res.Success && len(res.Errors) > 0 {
		return fmt.Errorf("%d errors", len(res.Errors))
	}
	return nil
}

func runCategoriesFromTemplates(cmd *cobra.Command, args []string) error {
	budgetID, err := parseID(args[0], "budget")
	if err != nil {
		return err
	}
	templateIDs, err := parseIDs(args[1:], "template")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	res, err := client.CreateCategoriesFromTemplates(cmdContext(cmd), budgetID, templateIDs)
	if err != nil {
		return err
	}
	return printBulkResult("Added", res)
}

func runCategoriesDuplicate(cmd *cobra.Command, args []string) error {
	sourceID, err := parseID(args[0], "budget")
	if err != nil {
		return err
	}
	targetID, err := parseID(args[1], "budget")
	if err != nil {
		return err
	}
	var catIDs []int64
	if len(args) > 2 {
		if catIDs, err = parseIDs(args[2:], "category"); err != nil {
			return err
		}
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	res, err := client.DuplicateCategories(cmdContext(cmd), sourceID, targetID, catIDs)
	if err != nil {
		return err
	}
	return printBulkResult("Copied", res)
}

func runCategoriesExport(cmd *cobra.Command, args []string) error {
	budgetID, err := parseID(args[0], "budget")
	if err != nil {
		return err
	}
	format := strings.ToLower(flagExportFormat)
	if format != "csv" && format != "json" {
		return fmt.Errorf("--format must be csv or json, got %q", flagExportFormat)
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	blob, err := client.ExportCategories(cmdContext(cmd), budgetID, format)
	if err != nil {
		return err
	}
	return writeBlob(blob, flagOutput)
}

func runCategoriesImport(cmd *cobra.Command, args []string) error {
	if flagCatSkipDuplicates && flagCatUpdateExisting {
		return errors.New("--skip-duplicates and --update-existing are mutually exclusive")
	}

	var r io.Reader = os.Stdin
	name := "categories.csv"
	if args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r, name = f, filepath.Base(args[1])
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	budgetID, err := resolveBudgetID(cmd, client, args[0])
	if err != nil {
		return err
	}
	res, err := client.ImportCategories(cmdContext(cmd), budgetID, r, name, api.ImportOptions{
		SkipDuplicates: flagCatSkipDuplicates,
		UpdateExisting: flagCatUpdateExisting,
	})
	if err != nil {
		return err
	}
	return printBulkResult("Imported", res)
}

func runCategoriesAnalytics(cmd *cobra.Command, _ []string) error {
	switch flagCatPeriod {
	case "", api.AnalyticsMonth, api.AnalyticsQuarter, api.AnalyticsYear:
	default:
		return fmt.Errorf("--period must be month, quarter or year, got %q", flagCatPeriod)
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	a, err := client.CategoryAnalytics(cmdContext(cmd), flagCatPeriod, flagCatAnalyticsGroup)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(a)
	}
	if len(a.MostUsed) == 0 && len(a.AvgAllocations) == 0 && len(a.GroupTotals) == 0 {
		fmt.Println("\n  No category data yet.")
		return nil
	}

	if len(a.MostUsed) > 0 {
		rows := make([][]string, 0, len(a.MostUsed))
		for _, u := range a.MostUsed {
			rows = append(rows, []string{u.Name, strconv.Itoa(u.UsageCount)})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{Title: "Most used", Headers: []string{"Category", "Budgets"}, Rows: rows}))
	}
	if len(a.AvgAllocations) > 0 {
		rows := make([][]string, 0, len(a.AvgAllocations))
		for _, avg := range a.AvgAllocations {
			rows = append(rows, []string{avg.Name, cli.FormatCents(int64(math.Round(avg.AvgAllocation)))})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{Title: "Average allocation", Headers: []string{"Category", "Average"}, Rows: rows}))
	}
	if len(a.GroupTotals) > 0 {
		rows := make([][]string, 0, len(a.GroupTotals))
		for _, g := range a.GroupTotals {
			name := g.Group
			if name == "" {
				name = finance.UngroupedName
			}
			rows = append(rows, []string{name, cli.FormatCents(int64(math.Round(g.TotalAllocated)))})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{Title: "Group totals", Headers: []string{"Group", "Allocated"}, Rows: rows}))
	}
	return nil
}
