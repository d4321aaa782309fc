package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagInvStatus string
	flagInvSearch string

	flagInvCustomer int64
	flagInvIssue    string
	flagInvDue      string
	flagInvDiscount string
	flagInvNotes    string
	flagInvItems    []string
	flagInvTax      string
	flagInvDryRun   bool

	flagInvAmount string
	flagInvPaidAt string
	flagInvMethod string
	flagInvOut    string
)

var invoicesCmd = &cobra.Command{
	Use:     "invoices",
	Aliases: []string{"invoice", "inv"},
	Short:   "Invoices and payments",
	RunE:    runInvoicesList,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	Args:  cobra.NoArgs,
	RunE:  runInvoicesList,
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show <invoice-id>",
	Short: "Show an invoice with its line items",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicesShow,
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft invoice",
	Long: `Create a draft invoice.

Line items are given as --item "Description=QTYxPRICE", for example
--item "Logo design=1x450.00" --item "Revisions=3x75".`,
	Args: cobra.NoArgs,
	RunE: runInvoicesCreate,
}

var invoicesSendCmd = &cobra.Command{
	Use:   "send <invoice-id>",
	Short: "Mark an invoice sent and generate its PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicesSend,
}

var invoicesPDFCmd = &cobra.Command{
	Use:   "pdf <invoice-id>",
	Short: "Download an invoice PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicesPDF,
}

var invoicesPayCmd = &cobra.Command{
	Use:   "pay <invoice-id>",
	Short: "Record a payment",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicesPay,
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete <invoice-id>",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicesDelete,
}

func init() {
	invoicesListCmd.Flags().StringVar(&flagInvStatus, "status", "", "draft, sent, paid or overdue")
	invoicesListCmd.Flags().StringVar(&flagInvSearch, "search", "", "Invoice number contains")

	f := invoicesCreateCmd.Flags()
	f.Int64Var(&flagInvCustomer, "customer", 0, "Customer ID")
	f.StringVar(&flagInvIssue, "issue", "", "Issue date (YYYY-MM-DD, default today)")
	f.StringVar(&flagInvDue, "due", "", "Due date (YYYY-MM-DD, default issue + 30 days)")
	f.StringVar(&flagInvDiscount, "discount", "0", "Discount in dollars")
	f.StringVar(&flagInvNotes, "notes", "", "Notes printed on the invoice")
	f.StringArrayVar(&flagInvItems, "item", nil, `Line item "Description=QTYxPRICE" (repeatable)`)
	f.StringVar(&flagInvTax, "tax", "7.5", "Tax rate percent applied to every item")
	f.BoolVar(&flagInvDryRun, "dry-run", false, "Print the totals without creating the invoice")
	_ = invoicesCreateCmd.MarkFlagRequired("customer")
	_ = invoicesCreateCmd.MarkFlagRequired("item")

	f = invoicesPayCmd.Flags()
	f.StringVar(&flagInvAmount, "amount", "", "Payment in dollars (default the balance due)")
	f.StringVar(&flagInvPaidAt, "date", "", "Payment date (YYYY-MM-DD, default today)")
	f.StringVar(&flagInvMethod, "method", model.DefaultPaymentMethod, "Payment method")

	invoicesPDFCmd.Flags().StringVarP(&flagInvOut, "output", "o", "", `Output file ("-" for stdout)`)

	invoicesCmd.AddCommand(invoicesListCmd, invoicesShowCmd, invoicesCreateCmd, invoicesSendCmd,
		invoicesPDFCmd, invoicesPayCmd, invoicesDeleteCmd)
	rootCmd.AddCommand(invoicesCmd)
}

func invoiceStatus(s string) (model.InvoiceStatus, error) {
	switch st := model.InvoiceStatus(s); st {
	case "", model.InvoiceDraft, model.InvoiceSent, model.InvoicePaid, model.InvoiceOverdue:
		return st, nil
	}
	return "", fmt.Errorf("--status must be draft, sent, paid or overdue, got %q", s)
}

// taxBasisPoints converts a percentage such as "7.5" into 750.
func taxBasisPoints(pct string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(pct, "%")))
	if err != nil || d.IsNegative() {
		return 0, fmt.Errorf("--tax: invalid rate %q", pct)
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// parseInvoiceItem reads "Description=QTYxPRICE".
func parseInvoiceItem(spec string, taxRate int64) (model.InvoiceItem, error) {
	i := strings.LastIndex(spec, "=")
	if i <= 0 {
		return model.InvoiceItem{}, fmt.Errorf("--item %q: want Description=QTYxPRICE", spec)
	}
	desc := strings.TrimSpace(spec[:i])
	qtyStr, price, ok := strings.Cut(strings.ToLower(spec[i+1:]), "x")
	if !ok {
		qtyStr, price = "1", spec[i+1:]
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(qtyStr), 10, 64)
	if err != nil || qty <= 0 {
		return model.InvoiceItem{}, fmt.Errorf("--item %q: invalid quantity", spec)
	}
	cents, err := dollarsFlag("item", strings.TrimSpace(price))
	if err != nil {
		return model.InvoiceItem{}, err
	}
	return model.InvoiceItem{
		Description:    desc,
		Quantity:       qty,
		UnitPriceCents: cents,
		TaxRate:        taxRate,
	}, nil
}

func invoiceStatusCell(st model.InvoiceStatus) string {
	switch st {
	case model.InvoiceOverdue:
		return cli.RenderWarning(string(st))
	case model.InvoiceDraft:
		return cli.RenderMuted(string(st))
	}
	return string(st)
}

func runInvoicesList(cmd *cobra.Command, _ []string) error {
	status, err := invoiceStatus(flagInvStatus)
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	invoices, err := client.ListInvoices(cmdContext(cmd), status, flagInvSearch)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(invoices)
	}
	if len(invoices) == 0 {
		fmt.Println("\n  No invoices.")
		return nil
	}

	var due int64
	rows := make([][]string, 0, len(invoices)+2)
	for _, inv := range invoices {
		due += inv.BalanceDueCents
		rows = append(rows, []string{
			strconv.FormatInt(inv.ID, 10),
			inv.InvoiceNumber,
			cli.FormatDate(inv.IssueDate),
			cli.FormatDate(inv.DueDate),
			invoiceStatusCell(inv.Status),
			cli.FormatCents(inv.TotalCents),
			cli.FormatCents(inv.BalanceDueCents),
		})
	}
	rows = append(rows, []string{"---"}, []string{"", "", "", "", "Outstanding", "", cli.FormatCents(due)})
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Invoices (%d)", len(invoices)),
		Headers: []string{"ID", "Number", "Issued", "Due", "Status", "Total", "Balance"},
		Rows:    rows,
	}))
	return nil
}

func printInvoiceItems(items []model.InvoiceItem, t finance.Totals) {
	rows := make([][]string, 0, len(items)+5)
	for _, it := range items {
		rows = append(rows, []string{
			it.Description,
			strconv.FormatInt(it.Quantity, 10),
			cli.FormatCents(it.UnitPriceCents),
			cli.FormatPercent(float64(it.TaxRate) / 100),
			cli.FormatCents(finance.LineTotal(it)),
		})
	}
	rows = append(rows, []string{"---"},
		[]string{"Subtotal", "", "", "", cli.FormatCents(t.SubtotalCents)},
		[]string{"Tax", "", "", "", cli.FormatCents(t.TaxCents)},
	)
	if t.DiscountCents != 0 {
		rows = append(rows, []string{"Discount", "", "", "", cli.FormatCents(-t.DiscountCents)})
	}
	rows = append(rows, []string{"Total", "", "", "", cli.FormatCents(t.TotalCents)})
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Item", "Qty", "Price", "Tax", "Amount"},
		Rows:    rows,
	}))
}

func runInvoicesShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "invoice")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	inv, err := client.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(inv)
	}

	customer := strconv.FormatInt(inv.CustomerID, 10)
	if c, err := client.GetCustomer(ctx, inv.CustomerID); err == nil {
		customer = c.Name
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("Invoice " + inv.InvoiceNumber))
	fmt.Print(cli.RenderKV([][2]string{
		{"Customer", customer},
		{"Status", invoiceStatusCell(inv.Status)},
		{"Issued", cli.FormatDate(inv.IssueDate)},
		{"Due", cli.FormatDate(inv.DueDate)},
		{"Balance due", cli.FormatCents(inv.BalanceDueCents)},
	}))
	printInvoiceItems(inv.Items, finance.Totals{
		SubtotalCents: inv.SubtotalCents,
		TaxCents:      inv.TaxCents,
		DiscountCents: inv.DiscountCents,
		TotalCents:    inv.TotalCents,
	})
	if inv.Notes != "" {
		fmt.Println()
		fmt.Println("  " + cli.RenderMuted(inv.Notes))
	}
	return nil
}

func runInvoicesCreate(cmd *cobra.Command, _ []string) error {
	tax, err := taxBasisPoints(flagInvTax)
	if err != nil {
		return err
	}
	items := make([]model.InvoiceItem, 0, len(flagInvItems))
	for _, spec := range flagInvItems {
		it, err := parseInvoiceItem(spec, tax)
		if err != nil {
			return err
		}
		items = append(items, it)
	}
	discount, err := dollarsFlag("discount", flagInvDiscount)
	if err != nil {
		return err
	}

	issue := time.Now()
	if flagInvIssue != "" {
		if issue, err = time.Parse("2006-01-02", flagInvIssue); err != nil {
			return fmt.Errorf("--issue: want YYYY-MM-DD")
		}
	}
	due := flagInvDue
	if due == "" {
		due = issue.AddDate(0, 0, 30).Format("2006-01-02")
	}

	totals := finance.InvoiceTotals(items, discount)
	if totals.TotalCents < 0 {
		return fmt.Errorf("discount %s exceeds the invoice total", cli.FormatCents(discount))
	}
	if flagInvDryRun {
		printInvoiceItems(items, totals)
		return nil
	}

	client, err := authedClient()
	if err != nil {
		return err
	}
	inv, err := client.CreateInvoice(cmdContext(cmd), model.InvoiceInput{
		CustomerID:    flagInvCustomer,
		IssueDate:     issue.Format("2006-01-02"),
		DueDate:       due,
		DiscountCents: discount,
		Notes:         flagInvNotes,
		Items:         items,
	})
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(inv)
	}
	fmt.Printf("  Created invoice %s (id %d), total %s\n", inv.InvoiceNumber, inv.ID, cli.FormatCents(inv.TotalCents))
	if inv.TotalCents != totals.TotalCents {
		progress("  Server total differs from local estimate of %s\n", cli.FormatCents(totals.TotalCents))
	}
	return nil
}

func runInvoicesSend(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "invoice")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	res, err := client.SendInvoice(cmdContext(cmd), id)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(res)
	}
	fmt.Printf("  %s\n", res.Message)
	return nil
}

func runInvoicesPDF(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "invoice")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	blob, err := client.InvoicePDF(cmdContext(cmd), id)
	if err != nil {
		return err
	}
	return writeBlob(blob, flagInvOut)
}

func runInvoicesPay(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "invoice")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)

	var amount int64
	if flagInvAmount != "" {
		if amount, err = dollarsFlag("amount", flagInvAmount); err != nil {
			return err
		}
	} else {
		inv, err := client.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		amount = inv.BalanceDueCents
	}
	if amount <= 0 {
		return fmt.Errorf("nothing to pay on invoice %d", id)
	}

	p, err := client.RecordPayment(ctx, id, model.PaymentInput{
		AmountCents: amount,
		PaidAt:      flagInvPaidAt,
		Method:      flagInvMethod,
	})
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(p)
	}
	fmt.Printf("  Recorded %s by %s on invoice %d\n", cli.FormatCents(p.AmountCents), p.Method, id)
	return nil
}

func runInvoicesDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "invoice")
	if err != nil {
		return err
	}
	client, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.DeleteInvoice(cmdContext(cmd), id); err != nil {
		return err
	}
	fmt.Printf("  Deleted invoice %d\n", id)
	return nil
}
