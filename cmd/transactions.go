package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/logging"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagTxBudget   string
	flagTxCategory int64
	flagTxFrom     string
	flagTxTo       string
	flagTxLimit    int

	flagTxAmount string
	flagTxNotes  string
	flagTxDate   string
	flagTxSplits []string
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "Record and review spending",
	RunE:    runTransactionsList,
}

var transactionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	Args:  cobra.NoArgs,
	RunE:  runTransactionsList,
}

var transactionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Long: `Record a transaction against a budget.

Without --category or --split the category is picked from the API's
suggestions for the notes and amount.`,
	Args: cobra.NoArgs,
	RunE: runTransactionsAdd,
}

var transactionsUpdateCmd = &cobra.Command{
	Use:   "update <transaction-id>",
	Short: "Change a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransactionsUpdate,
}

var transactionsDeleteCmd = &cobra.Command{
	Use:   "delete <transaction-id>",
	Short: "Delete a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransactionsDelete,
}

var transactionsSummaryCmd = &cobra.Command{
	Use:   "summary <budget-id|YYYY-MM>",
	Short: "Spending per category for a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransactionsSummary,
}

func init() {
	f := transactionsListCmd.Flags()
	f.StringVar(&flagTxBudget, "budget", "", "Budget ID or YYYY-MM")
	f.Int64Var(&flagTxCategory, "category", 0, "Category ID")
	f.StringVar(&flagTxFrom, "from", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&flagTxTo, "to", "", "End date (YYYY-MM-DD)")
	f.IntVar(&flagTxLimit, "limit", 50, "Maximum rows")

	for _, c := range []*cobra.Command{transactionsAddCmd, transactionsUpdateCmd} {
		c.Flags().StringVar(&flagTxAmount, "amount", "", "Amount in dollars")
		c.Flags().StringVar(&flagTxNotes, "notes", "", "Description, also used for suggestions")
		c.Flags().StringVar(&flagTxDate, "date", "", "Date (YYYY-MM-DD, default today)")
		c.Flags().Int64Var(&flagTxCategory, "category", 0, "Category ID")
	}
	transactionsAddCmd.Flags().StringVar(&flagTxBudget, "budget", "", "Budget ID or YYYY-MM")
	transactionsAddCmd.Flags().StringArrayVar(&flagTxSplits, "split", nil, `Split part as "categoryID=amount" (repeatable)`)
	_ = transactionsAddCmd.MarkFlagRequired("budget")
	_ = transactionsAddCmd.MarkFlagRequired("amount")

	transactionsCmd.AddCommand(transactionsListCmd, transactionsAddCmd, transactionsUpdateCmd,
		transactionsDeleteCmd, transactionsSummaryCmd)
	rootCmd.AddCommand(transactionsCmd)
}

func runTransactionsList(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	q := api.TransactionQuery{
		CategoryID: flagTxCategory,
		StartDate:  flagTxFrom,
		EndDate:    flagTxTo,
		Limit:      flagTxLimit,
	}
	if flagTxBudget != "" {
		if q.BudgetID, err = resolveBudgetID(cmd, client, flagTxBudget); err != nil {
			return err
		}
	}

	txs, err := client.ListTransactions(cmdContext(cmd), q)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(txs)
	}
	if len(txs) == 0 {
		fmt.Println("\n  No transactions.")
		return nil
	}

	var total int64
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		total += t.AmountCents
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			cli.FormatDate(t.Date),
			txCategoryLabel(t),
			cli.FormatCents(t.AmountCents),
			t.NoteText(),
		})
	}
	rows = append(rows, []string{"---"}, []string{"", "", "Total", cli.FormatCents(total), ""})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Transactions (%d)", len(txs)),
		Headers: []string{"ID", "Date", "Category", "Amount", "Notes"},
		Rows:    rows,
	}))
	return nil
}

func txCategoryLabel(t model.Transaction) string {
	switch {
	case t.IsSplit:
		return fmt.Sprintf("split (%d)", len(t.Splits))
	case t.CategoryID != nil:
		return "#" + strconv.FormatInt(*t.CategoryID, 10)
	}
	return "-"
}

// parseSplits reads "categoryID=amount" parts and checks they add up.
func parseSplits(specs []string, totalCents int64) ([]model.TransactionSplit, error) {
	splits := make([]model.TransactionSplit, 0, len(specs))
	var sum int64
	for _, spec := range specs {
		idStr, amount, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("--split %q: want categoryID=amount", spec)
		}
		id, err := parseID(strings.TrimSpace(idStr), "category")
		if err != nil {
			return nil, fmt.Errorf("--split %q: %w", spec, err)
		}
		cents, err := dollarsFlag("split", strings.TrimSpace(amount))
		if err != nil {
			return nil, err
		}
		sum += cents
		splits = append(splits, model.TransactionSplit{CategoryID: id, AmountCents: cents})
	}
	if sum != totalCents {
		return nil, fmt.Errorf("splits add up to %s, transaction is %s",
			cli.FormatCents(sum), cli.FormatCents(totalCents))
	}
	return splits, nil
}

func txDate() string {
	if flagTxDate != "" {
		return flagTxDate
	}
	return time.Now().Format("2006-01-02")
}

func runTransactionsAdd(cmd *cobra.Command, _ []string) error {
	amount, err := dollarsFlag("amount", flagTxAmount)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("--amount must be greater than 0")
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	budgetID, err := resolveBudgetID(cmd, client, flagTxBudget)
	if err != nil {
		return err
	}

	in := model.TransactionCreate{
		BudgetID:    budgetID,
		AmountCents: amount,
		Date:        txDate(),
		Notes:       flagTxNotes,
	}

	var suggested *model.CategorySuggestion
	switch {
	case len(flagTxSplits) > 0:
		if in.Splits, err = parseSplits(flagTxSplits, amount); err != nil {
			return err
		}
		in.IsSplit = true
	case flagTxCategory > 0:
		in.CategoryID = &flagTxCategory
	default:
		if strings.TrimSpace(flagTxNotes) == "" {
			return fmt.Errorf("give --category, --split or --notes to suggest from")
		}
		suggestions, err := client.SuggestCategories(ctx, model.SuggestionRequest{
			BudgetID:    budgetID,
			Notes:       flagTxNotes,
			AmountCents: amount,
		}, api.DefaultSuggestionLimit)
		if err != nil {
			return fmt.Errorf("suggesting a category: %w", err)
		}
		if len(suggestions) == 0 {
			return fmt.Errorf("no category suggestion for %q; pass --category", flagTxNotes)
		}
		suggested = &suggestions[0]
		in.CategoryID = &suggested.CategoryID
		progress("  Category: %s (%s, %s)\n", suggested.CategoryName,
			cli.FormatRatio(suggested.Confidence), reasonLabel(suggested.Reason))
	}

	tx, err := client.CreateTransaction(ctx, in)
	if err != nil {
		return err
	}

	if suggested != nil {
		fb := model.SuggestionFeedback{
			TransactionID:       &tx.ID,
			SuggestedCategoryID: suggested.CategoryID,
			ActualCategoryID:    suggested.CategoryID,
			PatternText:         flagTxNotes,
		}
		if err := client.SuggestionFeedback(ctx, fb); err != nil {
			appLog.Warn("suggestion feedback failed", logging.FieldError, err)
		}
	}

	if flagJSON {
		return printJSON(tx)
	}
	fmt.Printf("  Recorded transaction %d: %s on %s\n", tx.ID, cli.FormatCents(tx.AmountCents), cli.FormatDate(tx.Date))
	return nil
}

func reasonLabel(r model.SuggestionReason) string {
	return strings.ReplaceAll(string(r), "_", " ")
}

func runTransactionsUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "transaction")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	cur, err := client.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	in := model.TransactionCreate{
		BudgetID:    cur.BudgetID,
		CategoryID:  cur.CategoryID,
		AmountCents: cur.AmountCents,
		Date:        cur.Date,
		Notes:       cur.NoteText(),
		IsSplit:     cur.IsSplit,
		Splits:      cur.Splits,
	}
	flags := cmd.Flags()
	if flags.Changed("amount") {
		if in.AmountCents, err = dollarsFlag("amount", flagTxAmount); err != nil {
			return err
		}
		if in.IsSplit {
			return fmt.Errorf("transaction %d is split; delete and re-add it to change the amount", id)
		}
	}
	if flags.Changed("notes") {
		in.Notes = flagTxNotes
	}
	if flags.Changed("date") {
		in.Date = flagTxDate
	}
	if flags.Changed("category") {
		in.CategoryID = &flagTxCategory
		in.IsSplit = false
		in.Splits = nil
	}

	tx, err := client.UpdateTransaction(ctx, id, in)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(tx)
	}
	fmt.Printf("  Updated transaction %d\n", tx.ID)
	return nil
}

func runTransactionsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "transaction")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.DeleteTransaction(cmdContext(cmd), id); err != nil {
		return err
	}
	fmt.Printf("  Deleted transaction %d\n", id)
	return nil
}

func runTransactionsSummary(cmd *cobra.Command, args []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	budgetID, err := resolveBudgetID(cmd, client, args[0])
	if err != nil {
		return err
	}
	sum, err := client.BudgetTransactionSummary(cmdContext(cmd), budgetID)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(sum)
	}

	rows := make([][]string, 0, len(sum.Categories))
	for _, c := range sum.Categories {
		remaining := cli.FormatCents(c.RemainingCents)
		if c.RemainingCents < 0 {
			remaining = cli.RenderWarning(remaining)
		}
		rows = append(rows, []string{
			c.CategoryName,
			cli.FormatCents(c.AllocatedCents),
			cli.FormatCents(c.SpentCents),
			remaining,
			strconv.Itoa(c.TransactionCount),
		})
	}
	rows = append(rows, []string{"---"}, []string{
		"Total", "", cli.FormatCents(sum.TotalSpentCents), "", strconv.Itoa(sum.TransactionCount),
	})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Spending for budget %d", budgetID),
		Headers: []string{"Category", "Allocated", "Spent", "Remaining", "Txns"},
		Rows:    rows,
	}))
	return nil
}
