package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagSugBudget string
	flagSugAmount string
	flagSugLimit  int
	flagSugDays   int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <notes>...",
	Short: "Suggest categories for a transaction description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

var suggestStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "How often suggestions were accepted",
	Args:  cobra.NoArgs,
	RunE:  runSuggestStats,
}

func init() {
	f := suggestCmd.Flags()
	f.StringVar(&flagSugBudget, "budget", "", "Budget ID or YYYY-MM")
	f.StringVar(&flagSugAmount, "amount", "", "Amount in dollars")
	f.IntVar(&flagSugLimit, "limit", api.DefaultSuggestionLimit, "Number of suggestions")
	_ = suggestCmd.MarkFlagRequired("budget")

	suggestStatsCmd.Flags().IntVar(&flagSugDays, "days", api.DefaultStatsDays, "Window in days")

	suggestCmd.AddCommand(suggestStatsCmd)
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	req := model.SuggestionRequest{Notes: strings.Join(args, " ")}
	if flagSugAmount != "" {
		cents, err := dollarsFlag("amount", flagSugAmount)
		if err != nil {
			return err
		}
		req.AmountCents = cents
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	if req.BudgetID, err = resolveBudgetID(cmd, client, flagSugBudget); err != nil {
		return err
	}

	out, err := client.SuggestCategories(cmdContext(cmd), req, flagSugLimit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(out)
	}
	if len(out) == 0 {
		fmt.Printf("\n  No suggestions for %q.\n", req.Notes)
		return nil
	}

	rows := make([][]string, 0, len(out))
	for i, s := range out {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.CategoryName,
			strconv.FormatInt(s.CategoryID, 10),
			cli.FormatRatio(s.Confidence),
			reasonLabel(s.Reason),
			strconv.Itoa(s.UsageCount),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Suggestions for %q", req.Notes),
		Headers: []string{"#", "Category", "ID", "Confidence", "Reason", "Used"},
		Rows:    rows,
	}))
	return nil
}

func runSuggestStats(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	s, err := client.SuggestionStats(cmdContext(cmd), flagSugDays)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(s)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("Suggestions, last %d days", flagSugDays)))
	fmt.Print(cli.RenderKV([][2]string{
		{"Suggested", cli.FormatNumber(int64(s.TotalSuggestions))},
		{"Accepted", cli.FormatNumber(int64(s.Accepted))},
		{"Rejected", cli.FormatNumber(int64(s.Rejected))},
		{"Accuracy", cli.FormatPercent(s.Accuracy)},
	}))
	return nil
}
