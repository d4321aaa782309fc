package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/api"
)

var (
	flagExpBudget   string
	flagExpCategory int64
	flagExpFrom     string
	flagExpTo       string
	flagExpPeriod   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download CSV exports",
}

var exportTransactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Export transactions as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExportTransactions,
}

var exportSplitsCmd = &cobra.Command{
	Use:   "splits",
	Short: "Export transaction splits as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExportSplits,
}

var exportBudgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Export budget allocations and spend as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExportBudget,
}

func init() {
	for _, c := range []*cobra.Command{exportTransactionsCmd, exportSplitsCmd} {
		f := c.Flags()
		f.StringVar(&flagExpBudget, "budget", "", "Budget ID or YYYY-MM")
		f.Int64Var(&flagExpCategory, "category", 0, "Category ID")
		f.StringVar(&flagExpFrom, "from", "", "Start date (YYYY-MM-DD)")
		f.StringVar(&flagExpTo, "to", "", "End date (YYYY-MM-DD)")
	}
	exportBudgetCmd.Flags().StringVar(&flagExpBudget, "budget", "", "Budget ID")
	exportBudgetCmd.Flags().StringVar(&flagExpPeriod, "period", "", "Budget month as YYYY-MM")
	exportCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "Output file (- for stdout)")

	exportCmd.AddCommand(exportTransactionsCmd, exportSplitsCmd, exportBudgetCmd)
	rootCmd.AddCommand(exportCmd)
}

func exportFilters(cmd *cobra.Command, client *api.Client) (api.ExportFilters, error) {
	f := api.ExportFilters{
		CategoryID: flagExpCategory,
		StartDate:  flagExpFrom,
		EndDate:    flagExpTo,
	}
	if flagExpBudget != "" {
		id, err := resolveBudgetID(cmd, client, flagExpBudget)
		if err != nil {
			return f, err
		}
		f.BudgetID = id
	}
	return f, nil
}

func runExportTransactions(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	f, err := exportFilters(cmd, client)
	if err != nil {
		return err
	}
	blob, err := client.ExportTransactionsCSV(cmdContext(cmd), f)
	if err != nil {
		return err
	}
	return writeBlob(blob, flagOutput)
}

func runExportSplits(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	f, err := exportFilters(cmd, client)
	if err != nil {
		return err
	}
	blob, err := client.ExportSplitsCSV(cmdContext(cmd), f)
	if err != nil {
		return err
	}
	return writeBlob(blob, flagOutput)
}

// runExportBudget selects the budget by ID or by year and month; the
// server accepts either.
func runExportBudget(cmd *cobra.Command, _ []string) error {
	var f api.ExportFilters
	switch {
	case flagExpBudget != "":
		id, err := parseID(flagExpBudget, "budget")
		if err != nil {
			return err
		}
		f.BudgetID = id
	case flagExpPeriod != "":
		year, month, ok := parsePeriod(flagExpPeriod)
		if !ok {
			return fmt.Errorf("--period: want YYYY-MM, got %q", flagExpPeriod)
		}
		f.Year, f.Month = year, month
	default:
		return errors.New("give --budget or --period")
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	blob, err := client.ExportBudgetCSV(cmdContext(cmd), f)
	if err != nil {
		return err
	}
	return writeBlob(blob, flagOutput)
}
