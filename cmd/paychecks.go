package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
)

var (
	flagPayAll    bool
	flagPayMonths int
)

var paychecksCmd = &cobra.Command{
	Use:     "paychecks",
	Aliases: []string{"paycheck", "pay"},
	Short:   "Recurring income and budget funding",
	RunE:    runPaychecksList,
}

var paychecksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List paychecks",
	Args:  cobra.NoArgs,
	RunE:  runPaychecksList,
}

var paychecksScheduleCmd = &cobra.Command{
	Use:   "schedule <paycheck-id>",
	Short: "Upcoming pay dates for a paycheck",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaychecksSchedule,
}

var paychecksFundingCmd = &cobra.Command{
	Use:   "funding <budget-id|YYYY-MM>",
	Short: "How a budget month is funded by paychecks",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaychecksFunding,
}

var paychecksReceiveCmd = &cobra.Command{
	Use:   "receive <instance-id>",
	Short: "Mark a paycheck instance as received",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaychecksReceive,
}

var paychecksAutoAllocateCmd = &cobra.Command{
	Use:   "auto-allocate <budget-id|YYYY-MM>",
	Short: "Distribute received income across categories",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaychecksAutoAllocate,
}

func init() {
	paychecksListCmd.Flags().BoolVar(&flagPayAll, "all", false, "Include inactive paychecks")
	paychecksScheduleCmd.Flags().IntVar(&flagPayMonths, "months", 3, "Months ahead")

	paychecksCmd.AddCommand(paychecksListCmd, paychecksScheduleCmd, paychecksFundingCmd,
		paychecksReceiveCmd, paychecksAutoAllocateCmd)
	rootCmd.AddCommand(paychecksCmd)
}

func runPaychecksList(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	checks, err := client.ListPaychecks(cmdContext(cmd), !flagPayAll)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(checks)
	}
	if len(checks) == 0 {
		fmt.Println("\n  No paychecks.")
		return nil
	}

	rows := make([][]string, 0, len(checks))
	for _, p := range checks {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			cli.FormatCents(p.AmountCents),
			string(p.Frequency),
			cli.FormatDate(p.NextDate),
			strconv.Itoa(len(p.Allocations)),
			cli.FormatBool(p.IsActive),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Paychecks",
		Headers: []string{"ID", "Name", "Amount", "Frequency", "Next", "Allocations", "Active"},
		Rows:    rows,
	}))
	return nil
}

func runPaychecksSchedule(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "paycheck")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	s, err := client.PaycheckSchedule(cmdContext(cmd), id, flagPayMonths)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(s)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(s.Paycheck.Name))
	fmt.Print(cli.RenderKV([][2]string{
		{"Frequency", string(s.Paycheck.Frequency)},
		{"Amount", cli.FormatCents(s.NextAmountCents)},
		{"Paydays", strconv.Itoa(len(s.UpcomingDates))},
		{"Expected", cli.FormatCents(s.NextAmountCents * int64(len(s.UpcomingDates)))},
	}))
	fmt.Println()
	for _, d := range s.UpcomingDates {
		fmt.Printf("  %s\n", cli.FormatDate(d))
	}
	return nil
}

func runPaychecksFunding(cmd *cobra.Command, args []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	budgetID, err := resolveBudgetID(cmd, client, args[0])
	if err != nil {
		return err
	}
	plan, err := client.FundingPlan(ctx, budgetID)
	if err != nil {
		return err
	}
	cats, err := client.CategoryFunding(ctx, budgetID)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(map[string]any{"plan": plan, "categories": cats})
	}

	funded := "no"
	if plan.IsFullyFunded {
		funded = "yes"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("Funding: " + cli.FormatMonth(plan.Year, plan.Month)))
	fmt.Print(cli.RenderKV([][2]string{
		{"Income", cli.FormatCents(plan.TotalIncomeCents)},
		{"Allocated", cli.FormatCents(plan.TotalAllocatedCents)},
		{"Available", cli.FormatSignedCents(plan.AvailableToAllocateCents)},
		{"Fully funded", funded},
	}))

	if len(plan.Paychecks) > 0 {
		rows := make([][]string, 0, len(plan.Paychecks))
		for _, p := range plan.Paychecks {
			status := cli.RenderMuted("expected")
			if p.IsReceived {
				status = "received"
			}
			rows = append(rows, []string{
				strconv.FormatInt(p.ID, 10),
				cli.FormatDate(p.Date),
				cli.FormatCents(p.AmountCents),
				status,
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Paychecks",
			Headers: []string{"Instance", "Date", "Amount", "Status"},
			Rows:    rows,
		}))
	}

	if len(cats) > 0 {
		// Least funded first.
		sort.SliceStable(cats, func(i, j int) bool {
			return cats[i].RemainingCents > cats[j].RemainingCents
		})
		rows := make([][]string, 0, len(cats))
		for _, c := range cats {
			pct := 0.0
			if c.AllocatedCents > 0 {
				pct = float64(c.FundedCents) / float64(c.AllocatedCents) * 100
			}
			rows = append(rows, []string{
				c.CategoryName,
				cli.FormatCents(c.AllocatedCents),
				cli.FormatCents(c.FundedCents),
				cli.RenderProgressBar(pct, 12),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Categories",
			Headers: []string{"Category", "Allocated", "Funded", "Coverage"},
			Rows:    rows,
		}))
	}
	return nil
}

func runPaychecksReceive(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "paycheck instance")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	inst, err := client.ReceivePaycheckInstance(cmdContext(cmd), id)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(inst)
	}
	fmt.Printf("  Received %s for budget %d\n", cli.FormatCents(inst.AmountCents), inst.BudgetID)
	return nil
}

func runPaychecksAutoAllocate(cmd *cobra.Command, args []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	budgetID, err := resolveBudgetID(cmd, client, args[0])
	if err != nil {
		return err
	}
	res, err := client.AutoAllocate(cmdContext(cmd), budgetID)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(res)
	}
	if msg, ok := res["message"].(string); ok {
		fmt.Printf("  %s\n", msg)
		return nil
	}
	fmt.Printf("  Allocated received income for budget %d\n", budgetID)
	return nil
}
