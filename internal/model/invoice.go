package model

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// DefaultTaxRate is 7.5% in basis points.
const DefaultTaxRate = 750

// Customer is an invoiced party.
type Customer struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CustomerInput creates or updates a customer.
type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// InvoiceItem is one line. TaxRate is in basis points.
type InvoiceItem struct {
	ID             int64  `json:"id,omitempty"`
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TaxRate        int64  `json:"tax_rate"`
	LineTotalCents int64  `json:"line_total_cents,omitempty"`
}

// Invoice is a bill to a customer.
type Invoice struct {
	ID              int64         `json:"id"`
	CustomerID      int64         `json:"customer_id"`
	InvoiceNumber   string        `json:"invoice_number"`
	IssueDate       string        `json:"issue_date"`
	DueDate         string        `json:"due_date"`
	Status          InvoiceStatus `json:"status"`
	SubtotalCents   int64         `json:"subtotal_cents"`
	TaxCents        int64         `json:"tax_cents"`
	DiscountCents   int64         `json:"discount_cents"`
	TotalCents      int64         `json:"total_cents"`
	BalanceDueCents int64         `json:"balance_due_cents"`
	PDFPath         string        `json:"pdf_path,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       string        `json:"created_at,omitempty"`
	Items           []InvoiceItem `json:"items"`
}

// InvoiceInput creates or updates an invoice.
type InvoiceInput struct {
	CustomerID    int64         `json:"customer_id"`
	IssueDate     string        `json:"issue_date"`
	DueDate       string        `json:"due_date"`
	DiscountCents int64         `json:"discount_cents"`
	Notes         string        `json:"notes,omitempty"`
	Items         []InvoiceItem `json:"items"`
}

// Payment is a recorded payment against an invoice.
type Payment struct {
	ID          int64  `json:"id"`
	InvoiceID   int64  `json:"invoice_id"`
	AmountCents int64  `json:"amount_cents"`
	PaidAt      string `json:"paid_at"`
	Method      string `json:"method"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// DefaultPaymentMethod is used when none is given.
const DefaultPaymentMethod = "bank transfer"

// PaymentInput records a payment.
type PaymentInput struct {
	AmountCents int64  `json:"amount_cents"`
	PaidAt      string `json:"paid_at,omitempty"`
	Method      string `json:"method"`
}

// MonthlyRevenue is one point of the revenue series.
type MonthlyRevenue struct {
	Month        string `json:"month"`
	RevenueCents int64  `json:"revenue_cents"`
}

// TopCustomer ranks customers by collected revenue.
type TopCustomer struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	TotalPaidCents int64  `json:"total_paid_cents"`
}

// MetricsSummary is the invoicing dashboard.
type MetricsSummary struct {
	OutstandingCount      int              `json:"outstanding_count"`
	OutstandingTotalCents int64            `json:"outstanding_total_cents"`
	OverdueCount          int              `json:"overdue_count"`
	OverdueTotalCents     int64            `json:"overdue_total_cents"`
	MonthlyRevenue        []MonthlyRevenue `json:"monthly_revenue"`
	TopCustomers          []TopCustomer    `json:"top_customers"`
}
