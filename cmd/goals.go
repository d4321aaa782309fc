package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagGoalStatus string

	flagGoalName    string
	flagGoalType    string
	flagGoalTarget  string
	flagGoalMonthly string
	flagGoalDate    string
	flagGoalPrio    int

	flagGoalAmount string
	flagGoalOn     string
	flagGoalNotes  string
)

var goalsCmd = &cobra.Command{
	Use:     "goals",
	Aliases: []string{"goal"},
	Short:   "Financial goals",
	RunE:    runGoalsList,
}

var goalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals",
	Args:  cobra.NoArgs,
	RunE:  runGoalsList,
}

var goalsShowCmd = &cobra.Command{
	Use:   "show <goal-id>",
	Short: "Show a goal with contributions and milestones",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsShow,
}

var goalsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a goal",
	Args:  cobra.NoArgs,
	RunE:  runGoalsCreate,
}

var goalsContributeCmd = &cobra.Command{
	Use:   "contribute <goal-id>",
	Short: "Record a contribution toward a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsContribute,
}

var goalsProjectionCmd = &cobra.Command{
	Use:   "projection <goal-id>",
	Short: "Forecast when a goal completes",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsProjection,
}

var goalsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Totals across all goals",
	Args:  cobra.NoArgs,
	RunE:  runGoalsSummary,
}

func init() {
	goalsListCmd.Flags().StringVar(&flagGoalStatus, "status", "", "active, completed, paused or cancelled")

	f := goalsCreateCmd.Flags()
	f.StringVar(&flagGoalName, "name", "", "Goal name")
	f.StringVar(&flagGoalType, "type", string(model.GoalSavings), "Goal type, e.g. savings or debt_repayment")
	f.StringVar(&flagGoalTarget, "target", "", "Target amount in dollars")
	f.StringVar(&flagGoalDate, "target-date", "", "Target date (YYYY-MM-DD)")
	f.IntVar(&flagGoalPrio, "priority", 1, "Priority (1 is highest)")
	_ = goalsCreateCmd.MarkFlagRequired("name")
	_ = goalsCreateCmd.MarkFlagRequired("target")
	_ = goalsCreateCmd.MarkFlagRequired("target-date")

	for _, c := range []*cobra.Command{goalsCreateCmd, goalsProjectionCmd} {
		c.Flags().StringVar(&flagGoalMonthly, "monthly", "", "Monthly contribution in dollars")
	}

	f = goalsContributeCmd.Flags()
	f.StringVar(&flagGoalAmount, "amount", "", "Contribution in dollars")
	f.StringVar(&flagGoalOn, "date", "", "Contribution date (YYYY-MM-DD, default today)")
	f.StringVar(&flagGoalNotes, "notes", "", "Notes")
	_ = goalsContributeCmd.MarkFlagRequired("amount")

	goalsCmd.AddCommand(goalsListCmd, goalsShowCmd, goalsCreateCmd, goalsContributeCmd,
		goalsProjectionCmd, goalsSummaryCmd)
	rootCmd.AddCommand(goalsCmd)
}

// dollarsValue parses a dollar flag for the goal and net-worth endpoints,
// which take float dollars rather than cents.
func dollarsValue(name, value string) (float64, error) {
	cents, err := dollarsFlag(name, value)
	if err != nil {
		return 0, err
	}
	return float64(cents) / 100, nil
}

func goalStatus(s string) (model.GoalStatus, error) {
	switch st := model.GoalStatus(s); st {
	case "", model.GoalActive, model.GoalCompleted, model.GoalPaused, model.GoalCancelled:
		return st, nil
	}
	return "", fmt.Errorf("--status must be active, completed, paused or cancelled, got %q", s)
}

func runGoalsList(cmd *cobra.Command, _ []string) error {
	status, err := goalStatus(flagGoalStatus)
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	goals, err := client.ListGoals(cmdContext(cmd), status)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(goals)
	}
	if len(goals) == 0 {
		fmt.Println("\n  No goals.")
		return nil
	}

	rows := make([][]string, 0, len(goals))
	for _, g := range goals {
		rows = append(rows, []string{
			strconv.FormatInt(g.ID, 10),
			g.Name,
			finance.GoalTypeLabel(g.GoalType),
			finance.GoalStatusLabel(g.Status),
			cli.FormatDollars(g.CurrentAmount),
			cli.FormatDollars(g.TargetAmount),
			cli.RenderProgressBar(finance.GoalProgress(g), 12),
			cli.FormatDate(g.TargetDate),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Goals (%d)", len(goals)),
		Headers: []string{"ID", "Name", "Type", "Status", "Current", "Target", "Progress", "Due"},
		Rows:    rows,
	}))
	return nil
}

func runGoalsShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "goal")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	g, err := client.GetGoal(cmdContext(cmd), id)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(g)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(g.Name))
	fmt.Print(cli.RenderKV([][2]string{
		{"Type", finance.GoalTypeLabel(g.GoalType)},
		{"Status", finance.GoalStatusLabel(g.Status)},
		{"Current", cli.FormatDollars(g.CurrentAmount)},
		{"Target", cli.FormatDollars(g.TargetAmount)},
		{"Progress", cli.RenderProgressBar(finance.GoalProgress(*g), 24)},
		{"Monthly", cli.FormatDollars(g.MonthlyContribution)},
		{"Target date", cli.FormatDate(g.TargetDate)},
		{"Priority", strconv.Itoa(g.Priority)},
	}))

	if len(g.Milestones) > 0 {
		rows := make([][]string, 0, len(g.Milestones))
		for _, m := range g.Milestones {
			done := cli.RenderMuted("pending")
			if m.Achieved {
				done = "achieved " + cli.FormatDate(m.AchievedDate)
			}
			rows = append(rows, []string{m.Name, cli.FormatDollars(m.TargetAmount), cli.FormatDate(m.TargetDate), done})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Milestones",
			Headers: []string{"Milestone", "Amount", "By", "Status"},
			Rows:    rows,
		}))
	}

	if len(g.Contributions) > 0 {
		rows := make([][]string, 0, len(g.Contributions))
		for _, c := range g.Contributions {
			rows = append(rows, []string{cli.FormatDate(c.ContributionDate), cli.FormatDollars(c.Amount), c.Notes})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Contributions",
			Headers: []string{"Date", "Amount", "Notes"},
			Rows:    rows,
		}))
	}
	return nil
}

func runGoalsCreate(cmd *cobra.Command, _ []string) error {
	target, err := dollarsValue("target", flagGoalTarget)
	if err != nil {
		return err
	}
	if target <= 0 {
		return fmt.Errorf("--target must be greater than 0")
	}
	in := model.GoalInput{
		Name:         flagGoalName,
		GoalType:     model.GoalType(flagGoalType),
		TargetAmount: target,
		TargetDate:   flagGoalDate,
		StartDate:    time.Now().Format("2006-01-02"),
		Status:       model.GoalActive,
		Priority:     flagGoalPrio,
	}
	if flagGoalMonthly != "" {
		if in.MonthlyContribution, err = dollarsValue("monthly", flagGoalMonthly); err != nil {
			return err
		}
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	g, err := client.CreateGoal(cmdContext(cmd), in)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(g)
	}
	fmt.Printf("  Created goal %d (%s), target %s by %s\n", g.ID, g.Name,
		cli.FormatDollars(g.TargetAmount), cli.FormatDate(g.TargetDate))
	return nil
}

func runGoalsContribute(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "goal")
	if err != nil {
		return err
	}
	amount, err := dollarsValue("amount", flagGoalAmount)
	if err != nil {
		return err
	}
	date := flagGoalOn
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	c, err := client.AddGoalContribution(cmdContext(cmd), id, model.GoalContributionInput{
		Amount:           amount,
		ContributionDate: date,
		Notes:            flagGoalNotes,
	})
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(c)
	}
	fmt.Printf("  Added %s to goal %d\n", cli.FormatDollars(c.Amount), id)
	return nil
}

func runGoalsProjection(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "goal")
	if err != nil {
		return err
	}
	var monthly float64
	if flagGoalMonthly != "" {
		if monthly, err = dollarsValue("monthly", flagGoalMonthly); err != nil {
			return err
		}
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	p, err := client.GoalProjection(cmdContext(cmd), id, monthly)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(p)
	}

	onTrack := cli.RenderWarning("behind")
	if p.OnTrack {
		onTrack = "on track"
	}
	pairs := [][2]string{
		{"Completion", cli.FormatDate(p.ProjectedCompletionDate)},
		{"Months left", strconv.Itoa(p.MonthsRemaining)},
		{"Status", onTrack},
		{"Required monthly", cli.FormatDollars(p.RequiredMonthlyContribution)},
		{"Projected final", cli.FormatDollars(p.ProjectedFinalAmount)},
	}
	if p.Shortfall > 0 {
		pairs = append(pairs, [2]string{"Shortfall", cli.FormatDollars(p.Shortfall)})
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("Goal %d projection", id)))
	fmt.Print(cli.RenderKV(pairs))
	return nil
}

func runGoalsSummary(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	s, err := client.GoalSummary(cmdContext(cmd))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(s)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("Goals"))
	fmt.Print(cli.RenderKV([][2]string{
		{"Goals", fmt.Sprintf("%d (%d active, %d completed)", s.TotalGoals, s.ActiveGoals, s.CompletedGoals)},
		{"Saved", cli.FormatDollars(s.TotalCurrentAmount)},
		{"Target", cli.FormatDollars(s.TotalTargetAmount)},
		{"Monthly", cli.FormatDollars(s.TotalMonthlyContributions)},
		{"Progress", cli.RenderProgressBar(s.OverallProgressPercentage, 24)},
	}))
	return nil
}
