package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagFundSort     string
	flagFundDesc     bool
	flagFundInactive bool

	flagFundName    string
	flagFundTarget  string
	flagFundMonthly string
	flagFundDate    string
	flagFundDescr   string

	flagFundAmount string
	flagFundNotes  string
	flagFundOn     string
	flagFundLimit  int
)

var fundsCmd = &cobra.Command{
	Use:     "funds",
	Aliases: []string{"fund"},
	Short:   "Sinking funds",
	RunE:    runFundsList,
}

var fundsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sinking funds with progress",
	Args:  cobra.NoArgs,
	RunE:  runFundsList,
}

var fundsShowCmd = &cobra.Command{
	Use:   "show <fund-id>",
	Short: "Show a fund and its recent contributions",
	Args:  cobra.ExactArgs(1),
	RunE:  runFundsShow,
}

var fundsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a sinking fund",
	Args:  cobra.NoArgs,
	RunE:  runFundsCreate,
}

var fundsContributeCmd = &cobra.Command{
	Use:   "contribute <fund-id>",
	Short: "Add a contribution to a fund",
	Args:  cobra.ExactArgs(1),
	RunE:  runFundsContribute,
}

var fundsDeleteCmd = &cobra.Command{
	Use:   "delete <fund-id>",
	Short: "Delete a fund",
	Args:  cobra.ExactArgs(1),
	RunE:  runFundsDelete,
}

var fundsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Totals across all funds",
	Args:  cobra.NoArgs,
	RunE:  runFundsSummary,
}

func init() {
	f := fundsListCmd.Flags()
	f.StringVar(&flagFundSort, "sort", finance.SortFundCreated, "Sort by name, progress, target or created")
	f.BoolVar(&flagFundDesc, "desc", false, "Reverse the sort")
	f.BoolVar(&flagFundInactive, "inactive", false, "Include inactive funds")

	f = fundsCreateCmd.Flags()
	f.StringVar(&flagFundName, "name", "", "Fund name")
	f.StringVar(&flagFundTarget, "target", "", "Target amount in dollars")
	f.StringVar(&flagFundMonthly, "monthly", "0", "Planned monthly contribution in dollars")
	f.StringVar(&flagFundDate, "target-date", "", "Target date (YYYY-MM-DD)")
	f.StringVar(&flagFundDescr, "description", "", "Description")
	_ = fundsCreateCmd.MarkFlagRequired("name")
	_ = fundsCreateCmd.MarkFlagRequired("target")

	f = fundsContributeCmd.Flags()
	f.StringVar(&flagFundAmount, "amount", "", "Contribution in dollars")
	f.StringVar(&flagFundNotes, "notes", "", "Notes")
	f.StringVar(&flagFundOn, "date", "", "Contribution date (YYYY-MM-DD, default today)")
	_ = fundsContributeCmd.MarkFlagRequired("amount")

	fundsShowCmd.Flags().IntVar(&flagFundLimit, "limit", 10, "Contributions to show")

	fundsCmd.AddCommand(fundsListCmd, fundsShowCmd, fundsCreateCmd, fundsContributeCmd,
		fundsDeleteCmd, fundsSummaryCmd)
	rootCmd.AddCommand(fundsCmd)
}

// fundETA describes how long the planned contribution needs to reach target.
func fundETA(f model.SinkingFund) string {
	remaining := f.TargetCents - f.CurrentBalanceCents
	if remaining <= 0 {
		return "reached"
	}
	months, ok := finance.MonthsToTarget(remaining, f.MonthlyContributionCents)
	if !ok {
		return "-"
	}
	if months == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", months)
}

func runFundsList(cmd *cobra.Command, _ []string) error {
	switch flagFundSort {
	case finance.SortFundName, finance.SortFundProgress, finance.SortFundTarget, finance.SortFundCreated:
	default:
		return fmt.Errorf("--sort must be name, progress, target or created, got %q", flagFundSort)
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	funds, err := client.ListFunds(cmdContext(cmd), flagFundInactive)
	if err != nil {
		return err
	}
	funds = finance.SortFunds(funds, flagFundSort, flagFundDesc)
	if flagJSON {
		return printJSON(funds)
	}
	if len(funds) == 0 {
		fmt.Println("\n  No sinking funds. Create one with `tally funds create`.")
		return nil
	}

	rows := make([][]string, 0, len(funds))
	for _, f := range funds {
		name := f.Name
		if !f.IsActive {
			name += " " + cli.RenderMuted("(inactive)")
		}
		rows = append(rows, []string{
			strconv.FormatInt(f.ID, 10),
			name,
			cli.FormatCents(f.CurrentBalanceCents),
			cli.FormatCents(f.TargetCents),
			cli.RenderProgressBar(finance.FundProgress(f.CurrentBalanceCents, f.TargetCents), 16),
			cli.FormatCents(f.MonthlyContributionCents),
			fundETA(f),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Sinking Funds (%d)", len(funds)),
		Headers: []string{"ID", "Name", "Saved", "Target", "Progress", "Monthly", "ETA"},
		Rows:    rows,
	}))
	return nil
}

func runFundsShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "fund")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	fund, err := client.GetFund(ctx, id, true, flagFundLimit)
	if err != nil {
		return err
	}
	prog, err := client.FundProgress(ctx, id)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(prog)
	}

	onTrack := "no"
	if prog.OnTrack {
		onTrack = "yes"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(fund.Name))
	fmt.Print(cli.RenderKV([][2]string{
		{"Saved", cli.FormatCents(fund.CurrentBalanceCents)},
		{"Target", cli.FormatCents(fund.TargetCents)},
		{"Remaining", cli.FormatCents(prog.RemainingCents)},
		{"Progress", cli.RenderProgressBar(finance.FundProgress(fund.CurrentBalanceCents, fund.TargetCents), 24)},
		{"Monthly", cli.FormatCents(fund.MonthlyContributionCents)},
		{"Target date", cli.FormatDate(fund.TargetDate)},
		{"Time to target", fundETA(*fund)},
		{"On track", onTrack},
		{"Contributions", fmt.Sprintf("%d totalling %s", prog.ContributionCount, cli.FormatCents(prog.TotalContributedCents))},
	}))

	if len(fund.Contributions) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(fund.Contributions))
	for _, c := range fund.Contributions {
		rows = append(rows, []string{
			cli.FormatDate(c.ContributionDate),
			cli.FormatCents(c.AmountCents),
			c.Notes,
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Recent contributions",
		Headers: []string{"Date", "Amount", "Notes"},
		Rows:    rows,
	}))
	return nil
}

func runFundsCreate(cmd *cobra.Command, _ []string) error {
	target, err := dollarsFlag("target", flagFundTarget)
	if err != nil {
		return err
	}
	monthly, err := dollarsFlag("monthly", flagFundMonthly)
	if err != nil {
		return err
	}
	in := model.FundInput{
		Name:                     flagFundName,
		TargetCents:              target,
		MonthlyContributionCents: monthly,
		TargetDate:               flagFundDate,
		Description:              flagFundDescr,
	}
	if err := finance.ValidateFund(in); err != nil {
		return err
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	fund, err := client.CreateFund(cmdContext(cmd), in)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(fund)
	}
	fmt.Printf("  Created fund %d (%s), target %s\n", fund.ID, fund.Name, cli.FormatCents(fund.TargetCents))
	if eta := fundETA(*fund); eta != "-" {
		fmt.Printf("  %s to target at %s/month\n", eta, cli.FormatCents(fund.MonthlyContributionCents))
	}
	return nil
}

func runFundsContribute(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "fund")
	if err != nil {
		return err
	}
	amount, err := dollarsFlag("amount", flagFundAmount)
	if err != nil {
		return err
	}
	if amount == 0 {
		return fmt.Errorf("--amount must not be zero")
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	c, err := client.AddContribution(ctx, id, model.ContributionInput{
		AmountCents:      amount,
		ContributionDate: flagFundOn,
		Notes:            flagFundNotes,
	})
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(c)
	}

	fmt.Printf("  Added %s to fund %d\n", cli.FormatCents(c.AmountCents), id)
	if fund, err := client.GetFund(ctx, id, false, 0); err == nil {
		fmt.Printf("  %s\n", cli.RenderProgressBar(finance.FundProgress(fund.CurrentBalanceCents, fund.TargetCents), 24))
	}
	return nil
}

func runFundsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "fund")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.DeleteFund(cmdContext(cmd), id); err != nil {
		return err
	}
	fmt.Printf("  Deleted fund %d\n", id)
	return nil
}

func runFundsSummary(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	sum, err := client.FundSummary(cmdContext(cmd))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(sum)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("Sinking Funds"))
	fmt.Print(cli.RenderKV([][2]string{
		{"Funds", fmt.Sprintf("%d (%d active)", sum.TotalFunds, sum.ActiveFunds)},
		{"Saved", cli.FormatCents(sum.TotalSavedCents)},
		{"Target", cli.FormatCents(sum.TotalTargetCents)},
		{"Remaining", cli.FormatCents(sum.TotalRemainingCents)},
		{"Progress", cli.RenderProgressBar(sum.OverallProgressPercentage, 24)},
	}))
	return nil
}
