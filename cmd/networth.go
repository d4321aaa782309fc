package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/finance"
)

var (
	flagNWInactive bool
	flagNWMonths   int
)

var networthCmd = &cobra.Command{
	Use:     "networth",
	Aliases: []string{"nw"},
	Short:   "Assets, liabilities and net worth",
	RunE:    runNetWorthSummary,
}

var networthSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Current net worth with breakdowns",
	Args:  cobra.NoArgs,
	RunE:  runNetWorthSummary,
}

var networthAssetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List assets",
	Args:  cobra.NoArgs,
	RunE:  runNetWorthAssets,
}

var networthLiabilitiesCmd = &cobra.Command{
	Use:   "liabilities",
	Short: "List liabilities",
	Args:  cobra.NoArgs,
	RunE:  runNetWorthLiabilities,
}

var networthTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Net worth history",
	Args:  cobra.NoArgs,
	RunE:  runNetWorthTrends,
}

var networthProjectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Projected net worth",
	Args:  cobra.NoArgs,
	RunE:  runNetWorthProjection,
}

var networthAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Notable net worth changes",
	Args:  cobra.NoArgs,
	RunE:  runNetWorthAlerts,
}

var networthSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record today's net worth",
	Args:  cobra.NoArgs,
	RunE:  runNetWorthSnapshot,
}

func init() {
	for _, c := range []*cobra.Command{networthAssetsCmd, networthLiabilitiesCmd} {
		c.Flags().BoolVar(&flagNWInactive, "inactive", false, "Include inactive entries")
	}
	networthTrendsCmd.Flags().IntVar(&flagNWMonths, "months", 12, "Months of history")
	networthProjectionCmd.Flags().IntVar(&flagNWMonths, "months", 12, "Months ahead")

	networthCmd.AddCommand(networthSummaryCmd, networthAssetsCmd, networthLiabilitiesCmd,
		networthTrendsCmd, networthProjectionCmd, networthAlertsCmd, networthSnapshotCmd)
	rootCmd.AddCommand(networthCmd)
}

func runNetWorthSummary(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	s, err := client.NetWorthSummary(ctx)
	if err != nil {
		return err
	}
	assets, err := client.AssetBreakdown(ctx)
	if err != nil {
		return err
	}
	liabs, err := client.LiabilityBreakdown(ctx)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(map[string]any{"summary": s, "assets": assets, "liabilities": liabs})
	}

	pairs := [][2]string{
		{"Net worth", cli.FormatDollars(s.CurrentNetWorth)},
		{"Assets", fmt.Sprintf("%s (%d)", cli.FormatDollars(s.TotalAssets), s.AssetCount)},
		{"Liabilities", fmt.Sprintf("%s (%d)", cli.FormatDollars(s.TotalLiabilities), s.LiabilityCount)},
		{"Liquid", cli.FormatDollars(s.LiquidAssets)},
	}
	if s.MonthlyChange != nil {
		change := cli.FormatDollars(*s.MonthlyChange)
		if s.MonthlyChangePct != nil {
			change += " (" + finance.FormatSignedPercent(*s.MonthlyChangePct) + ")"
		}
		pairs = append(pairs, [2]string{"This month", change})
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("Net Worth"))
	fmt.Print(cli.RenderKV(pairs))

	if len(assets) > 0 {
		fmt.Println()
		fmt.Println("  " + cli.RenderMuted("Assets by type"))
		for _, a := range assets {
			label := fmt.Sprintf("%-20s %12s", finance.AssetTypeLabel(a.AssetType), cli.FormatDollars(a.TotalValue))
			fmt.Println(cli.RenderHorizontalBar(label, a.Percentage, 100, 24))
		}
	}
	if len(liabs) > 0 {
		fmt.Println()
		fmt.Println("  " + cli.RenderMuted("Liabilities by type"))
		for _, l := range liabs {
			label := fmt.Sprintf("%-20s %12s", finance.LiabilityTypeLabel(l.LiabilityType), cli.FormatDollars(l.TotalBalance))
			fmt.Println(cli.RenderHorizontalBar(label, l.Percentage, 100, 24))
		}
	}
	return nil
}

func runNetWorthAssets(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	assets, err := client.ListAssets(cmdContext(cmd), flagNWInactive)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(assets)
	}
	if len(assets) == 0 {
		fmt.Println("\n  No assets.")
		return nil
	}

	var total float64
	rows := make([][]string, 0, len(assets)+2)
	for _, a := range assets {
		total += a.CurrentValue
		rows = append(rows, []string{
			strconv.FormatInt(a.ID, 10),
			a.Name,
			finance.AssetTypeLabel(a.AssetType),
			a.Institution,
			cli.FormatBool(a.IsLiquid),
			cli.FormatDollars(a.CurrentValue),
		})
	}
	rows = append(rows, []string{"---"}, []string{"", "Total", "", "", "", cli.FormatDollars(total)})
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Assets",
		Headers: []string{"ID", "Name", "Type", "Institution", "Liquid", "Value"},
		Rows:    rows,
	}))
	return nil
}

func runNetWorthLiabilities(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	liabs, err := client.ListLiabilities(cmdContext(cmd), flagNWInactive)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(liabs)
	}
	if len(liabs) == 0 {
		fmt.Println("\n  No liabilities.")
		return nil
	}

	var total, minimum float64
	rows := make([][]string, 0, len(liabs)+2)
	for _, l := range liabs {
		total += l.CurrentBalance
		minimum += l.MinimumPayment
		rows = append(rows, []string{
			strconv.FormatInt(l.ID, 10),
			l.Name,
			finance.LiabilityTypeLabel(l.LiabilityType),
			fmt.Sprintf("%.2f%%", l.InterestRate),
			cli.FormatDollars(l.MinimumPayment),
			cli.FormatDollars(l.CurrentBalance),
		})
	}
	rows = append(rows, []string{"---"}, []string{"", "Total", "", "", cli.FormatDollars(minimum), cli.FormatDollars(total)})
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Liabilities",
		Headers: []string{"ID", "Name", "Type", "APR", "Minimum", "Balance"},
		Rows:    rows,
	}))
	return nil
}

func runNetWorthTrends(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	trends, err := client.NetWorthTrends(cmdContext(cmd), flagNWMonths)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(trends)
	}
	if len(trends) == 0 {
		fmt.Println("\n  No snapshots yet. Record one with `tally networth snapshot`.")
		return nil
	}

	values := make([]float64, 0, len(trends))
	rows := make([][]string, 0, len(trends))
	for _, t := range trends {
		values = append(values, t.NetWorth)
		rows = append(rows, []string{
			cli.FormatDate(t.Date),
			cli.FormatDollars(t.Assets),
			cli.FormatDollars(t.Liabilities),
			cli.FormatDollars(t.NetWorth),
		})
	}
	fmt.Println()
	fmt.Printf("  %s  %s\n", cli.RenderMuted("Trend"), cli.RenderSparkline(values))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Net worth, last %d months", flagNWMonths),
		Headers: []string{"Date", "Assets", "Liabilities", "Net worth"},
		Rows:    rows,
	}))
	return nil
}

func runNetWorthProjection(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	p, err := client.NetWorthProjection(cmdContext(cmd), flagNWMonths)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(p)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("Projection for " + cli.FormatDate(p.ProjectionDate)))
	fmt.Print(cli.RenderKV([][2]string{
		{"Net worth", cli.FormatDollars(p.ProjectedNetWorth)},
		{"Assets", cli.FormatDollars(p.ProjectedAssets)},
		{"Liabilities", cli.FormatDollars(p.ProjectedLiabilities)},
	}))
	return nil
}

func runNetWorthAlerts(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	alerts, err := client.NetWorthAlerts(cmdContext(cmd))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(alerts)
	}
	if len(alerts) == 0 {
		fmt.Println("\n  No alerts.")
		return nil
	}
	fmt.Println()
	for _, a := range alerts {
		line := fmt.Sprintf("[%s] %s", a.Severity, a.Message)
		if a.ChangePercentage != nil {
			line += " (" + finance.FormatSignedPercent(*a.ChangePercentage) + ")"
		}
		if a.Severity == "info" {
			fmt.Println("  " + line)
			continue
		}
		fmt.Println(cli.RenderWarning(line))
	}
	return nil
}

func runNetWorthSnapshot(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	snap, err := client.CreateSnapshot(cmdContext(cmd))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(snap)
	}
	fmt.Printf("  Recorded %s on %s\n", cli.FormatDollars(snap.NetWorth), cli.FormatDate(snap.SnapshotDate))
	return nil
}
