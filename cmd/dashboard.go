package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/pipeline"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Overview of spending, funds, net worth and invoices",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}

	progressFn := func(current, total int) {
		progress("\r  Loading [%d/%d]", current, total)
	}
	months := appCfg.General.ReportMonths
	d := pipeline.LoadDashboard(cmdContext(cmd), client, months, progressFn)
	progress("\r                \r")

	if d.Failed() {
		return d.FirstError()
	}
	if flagJSON {
		errs := make(map[string]string, len(d.Errors))
		for name, err := range d.Errors {
			errs[name] = err.Error()
		}
		return printJSON(map[string]any{
			"invoices":  d.Invoices,
			"reports":   d.Reports,
			"funds":     d.Funds,
			"net_worth": d.NetWorth,
			"errors":    errs,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TALLY  Last %d months", months)))

	if r := d.Reports; r != nil {
		fmt.Println()
		fmt.Print(cli.RenderKV([][2]string{
			{"Income", cli.FormatCents(r.TotalIncomeCents)},
			{"Spent", cli.FormatCents(r.TotalSpentCents)},
			{"Remaining", cli.FormatSignedCents(r.RemainingCents)},
		}))
		if len(r.MonthlyTrend) > 0 {
			values := make([]float64, 0, len(r.MonthlyTrend))
			for _, m := range r.MonthlyTrend {
				values = append(values, float64(m.TotalCents))
			}
			fmt.Printf("  %s  %s\n", cli.RenderMuted("Monthly spend"), cli.RenderSparkline(values))
		}
	}

	var rows [][]string
	if f := d.Funds; f != nil {
		rows = append(rows,
			[]string{"Sinking funds", fmt.Sprintf("%s of %s", cli.FormatCompactCents(f.TotalSavedCents), cli.FormatCompactCents(f.TotalTargetCents))},
			[]string{"Fund progress", cli.RenderProgressBar(f.OverallProgressPercentage, 16)},
		)
	}
	if nw := d.NetWorth; nw != nil {
		if len(rows) > 0 {
			rows = append(rows, []string{"---"})
		}
		change := "-"
		if nw.MonthlyChangePct != nil {
			change = finance.FormatSignedPercent(*nw.MonthlyChangePct)
		}
		rows = append(rows,
			[]string{"Net worth", cli.FormatDollars(nw.CurrentNetWorth)},
			[]string{"This month", change},
		)
	}
	if inv := d.Invoices; inv != nil {
		if len(rows) > 0 {
			rows = append(rows, []string{"---"})
		}
		overdue := fmt.Sprintf("%d (%s)", inv.OverdueCount, cli.FormatCents(inv.OverdueTotalCents))
		if inv.OverdueCount > 0 {
			overdue = cli.RenderWarning(overdue)
		}
		rows = append(rows,
			[]string{"Outstanding", fmt.Sprintf("%d (%s)", inv.OutstandingCount, cli.FormatCents(inv.OutstandingTotalCents))},
			[]string{"Overdue", overdue},
		)
	}
	if len(rows) > 0 {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{Rows: rows}))
	}

	if len(d.Errors) > 0 {
		names := make([]string, 0, len(d.Errors))
		for name := range d.Errors {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println()
		for _, name := range names {
			fmt.Println(cli.RenderWarning(fmt.Sprintf("%s unavailable: %v", name, d.Errors[name])))
		}
	}
	return nil
}
