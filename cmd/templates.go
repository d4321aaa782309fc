package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagTplFilter string
	flagTplGroup  string
	flagTplSearch string
	flagTplAll    bool

	flagTplName   string
	flagTplType   string
	flagTplAmount string
	flagTplDescr  string
	flagTplForce  bool
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"template"},
	Short:   "Reusable category templates",
	RunE:    runTemplatesList,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List category templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a category template",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesCreate,
}

var templatesUpdateCmd = &cobra.Command{
	Use:   "update <template-id>",
	Short: "Change a category template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesUpdate,
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <template-id>",
	Short: "Delete a category template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesDelete,
}

func init() {
	f := templatesListCmd.Flags()
	f.StringVar(&flagTplFilter, "type", "", "income, expense or savings")
	f.StringVar(&flagTplGroup, "group", "", "Only this category group")
	f.StringVar(&flagTplSearch, "search", "", "Name contains")
	f.BoolVar(&flagTplAll, "all", false, "Include inactive templates")

	for _, c := range []*cobra.Command{templatesCreateCmd, templatesUpdateCmd} {
		c.Flags().StringVar(&flagTplName, "name", "", "Template name")
		c.Flags().StringVar(&flagTplType, "type", string(model.TemplateExpense), "income, expense or savings")
		c.Flags().StringVar(&flagTplAmount, "amount", "", "Default allocation in dollars")
		c.Flags().StringVar(&flagTplGroup, "group", "", "Category group")
		c.Flags().StringVar(&flagTplDescr, "description", "", "Description")
	}
	_ = templatesCreateCmd.MarkFlagRequired("name")

	templatesDeleteCmd.Flags().BoolVar(&flagTplForce, "force", false, "Delete even if budgets still use it")

	templatesCmd.AddCommand(templatesListCmd, templatesCreateCmd, templatesUpdateCmd, templatesDeleteCmd)
	rootCmd.AddCommand(templatesCmd)
}

func templateType(s string) (model.TemplateType, error) {
	switch t := model.TemplateType(s); t {
	case model.TemplateIncome, model.TemplateExpense, model.TemplateSavings:
		return t, nil
	}
	return "", fmt.Errorf("--type must be income, expense or savings, got %q", s)
}

func runTemplatesList(cmd *cobra.Command, _ []string) error {
	q := api.TemplateQuery{
		CategoryGroup: flagTplGroup,
		Search:        flagTplSearch,
	}
	if flagTplFilter != "" {
		t, err := templateType(flagTplFilter)
		if err != nil {
			return err
		}
		q.CategoryType = t
	}
	if !flagTplAll {
		active := true
		q.ActiveOnly = &active
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	page, err := client.ListTemplates(cmdContext(cmd), q)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(page)
	}
	if len(page.Templates) == 0 {
		fmt.Println("\n  No templates.")
		return nil
	}

	rows := make([][]string, 0, len(page.Templates))
	for _, t := range page.Templates {
		group := t.CategoryGroup
		if group == "" {
			group = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Name,
			string(t.CategoryType),
			group,
			cli.FormatCents(t.DefaultAllocationCents),
			cli.FormatBool(t.IsActive),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Templates (%d)", page.Total),
		Headers: []string{"ID", "Name", "Type", "Group", "Default", "Active"},
		Rows:    rows,
	}))
	return nil
}

// applyTemplateFlags copies the changed flags onto t.
func applyTemplateFlags(cmd *cobra.Command, t *model.CategoryTemplate) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		t.Name = flagTplName
	}
	if flags.Changed("type") || t.CategoryType == "" {
		typ, err := templateType(flagTplType)
		if err != nil {
			return err
		}
		t.CategoryType = typ
	}
	if flags.Changed("amount") {
		cents, err := dollarsFlag("amount", flagTplAmount)
		if err != nil {
			return err
		}
		t.DefaultAllocationCents = cents
	}
	if flags.Changed("group") {
		t.CategoryGroup = flagTplGroup
	}
	if flags.Changed("description") {
		t.Description = flagTplDescr
	}
	return finance.ValidateCategory(t.Name, t.DefaultAllocationCents, t.Order)
}

func runTemplatesCreate(cmd *cobra.Command, _ []string) error {
	t := model.CategoryTemplate{IsActive: true}
	if err := applyTemplateFlags(cmd, &t); err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	out, err := client.CreateTemplate(cmdContext(cmd), t)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(out)
	}
	fmt.Printf("  Created template %d (%s)\n", out.ID, out.Name)
	return nil
}

func runTemplatesUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "template")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)

	// There is no single-template endpoint; find it in the full list.
	page, err := client.ListTemplates(ctx, api.TemplateQuery{})
	if err != nil {
		return err
	}
	var current *model.CategoryTemplate
	for i := range page.Templates {
		if page.Templates[i].ID == id {
			current = &page.Templates[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("template %d: %w", id, api.ErrNotFound)
	}

	t := *current
	if err := applyTemplateFlags(cmd, &t); err != nil {
		return err
	}
	out, err := client.UpdateTemplate(ctx, id, t)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(out)
	}
	fmt.Printf("  Updated template %d (%s)\n", out.ID, out.Name)
	return nil
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "template")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	res, err := client.DeleteTemplate(cmdContext(cmd), id, flagTplForce)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(res)
	}
	if !res.Deleted {
		return fmt.Errorf("template %d is used by %d budgets; pass --force to delete anyway", id, res.UsageCount)
	}
	fmt.Printf("  Deleted template %d\n", id)
	return nil
}
