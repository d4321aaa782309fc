package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagCustName    string
	flagCustEmail   string
	flagCustPhone   string
	flagCustAddress string
)

var customersCmd = &cobra.Command{
	Use:     "customers",
	Aliases: []string{"customer"},
	Short:   "Invoice customers",
	RunE:    runCustomersList,
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers",
	Args:  cobra.NoArgs,
	RunE:  runCustomersList,
}

var customersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a customer",
	Args:  cobra.NoArgs,
	RunE:  runCustomersCreate,
}

var customersUpdateCmd = &cobra.Command{
	Use:   "update <customer-id>",
	Short: "Change a customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomersUpdate,
}

var customersDeleteCmd = &cobra.Command{
	Use:   "delete <customer-id>",
	Short: "Delete a customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomersDelete,
}

func init() {
	for _, c := range []*cobra.Command{customersCreateCmd, customersUpdateCmd} {
		c.Flags().StringVar(&flagCustName, "name", "", "Customer name")
		c.Flags().StringVar(&flagCustEmail, "email", "", "Email")
		c.Flags().StringVar(&flagCustPhone, "phone", "", "Phone")
		c.Flags().StringVar(&flagCustAddress, "address", "", "Postal address")
	}
	_ = customersCreateCmd.MarkFlagRequired("name")

	customersCmd.AddCommand(customersListCmd, customersCreateCmd, customersUpdateCmd, customersDeleteCmd)
	rootCmd.AddCommand(customersCmd)
}

func runCustomersList(cmd *cobra.Command, _ []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}
	customers, err := client.ListCustomers(cmdContext(cmd))
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(customers)
	}
	if len(customers) == 0 {
		fmt.Println("\n  No customers.")
		return nil
	}
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, c.Email, c.Phone})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Customers",
		Headers: []string{"ID", "Name", "Email", "Phone"},
		Rows:    rows,
	}))
	return nil
}

func runCustomersCreate(cmd *cobra.Command, _ []string) error {
	in := model.CustomerInput{
		Name:    strings.TrimSpace(flagCustName),
		Email:   flagCustEmail,
		Phone:   flagCustPhone,
		Address: flagCustAddress,
	}
	if in.Name == "" {
		return fmt.Errorf("--name must not be empty")
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	c, err := client.CreateCustomer(cmdContext(cmd), in)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(c)
	}
	fmt.Printf("  Created customer %d (%s)\n", c.ID, c.Name)
	return nil
}

func runCustomersUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "customer")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	cur, err := client.GetCustomer(ctx, id)
	if err != nil {
		return err
	}

	in := model.CustomerInput{Name: cur.Name, Email: cur.Email, Phone: cur.Phone, Address: cur.Address}
	flags := cmd.Flags()
	if flags.Changed("name") {
		in.Name = strings.TrimSpace(flagCustName)
	}
	if flags.Changed("email") {
		in.Email = flagCustEmail
	}
	if flags.Changed("phone") {
		in.Phone = flagCustPhone
	}
	if flags.Changed("address") {
		in.Address = flagCustAddress
	}
	if in.Name == "" {
		return fmt.Errorf("--name must not be empty")
	}

	c, err := client.UpdateCustomer(ctx, id, in)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(c)
	}
	fmt.Printf("  Updated customer %d (%s)\n", c.ID, c.Name)
	return nil
}

func runCustomersDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "customer")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.DeleteCustomer(cmdContext(cmd), id); err != nil {
		return err
	}
	fmt.Printf("  Deleted customer %d\n", id)
	return nil
}
