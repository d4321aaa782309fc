package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/theirongolddev/tally/internal/model"
)

// ListInvoices returns invoices, filtered by status and an invoice-number
// search when non-empty.
func (c *Client) ListInvoices(ctx context.Context, status model.InvoiceStatus, search string) ([]model.Invoice, error) {
	v := url.Values{}
	if status != "" {
		v.Set("status", string(status))
	}
	if search != "" {
		v.Set("q", search)
	}
	var out []model.Invoice
	if err := c.get(ctx, "/api/invoices", v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInvoice returns an invoice with its items.
func (c *Client) GetInvoice(ctx context.Context, id int64) (*model.Invoice, error) {
	var inv model.Invoice
	if err := c.get(ctx, fmt.Sprintf("/api/invoices/%d", id), nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateInvoice adds an invoice. The server computes totals.
func (c *Client) CreateInvoice(ctx context.Context, in model.InvoiceInput) (*model.Invoice, error) {
	var inv model.Invoice
	if err := c.post(ctx, "/api/invoices", in, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateInvoice replaces an invoice.
func (c *Client) UpdateInvoice(ctx context.Context, id int64, in model.InvoiceInput) (*model.Invoice, error) {
	var inv model.Invoice
	if err := c.put(ctx, fmt.Sprintf("/api/invoices/%d", id), in, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// DeleteInvoice removes an invoice.
func (c *Client) DeleteInvoice(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/invoices/%d", id), nil)
}

// SendResult acknowledges a send request. PDF generation continues on the
// server after it returns.
type SendResult struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// SendInvoice marks an invoice sent and queues its PDF.
func (c *Client) SendInvoice(ctx context.Context, id int64) (*SendResult, error) {
	var out SendResult
	if err := c.post(ctx, fmt.Sprintf("/api/invoices/%d/send", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InvoicePDF downloads the rendered PDF.
func (c *Client) InvoicePDF(ctx context.Context, id int64) (*Blob, error) {
	return c.Download(ctx, fmt.Sprintf("/api/invoices/%d/pdf", id), nil, fmt.Sprintf("invoice-%d.pdf", id))
}

// RecordPayment records a payment. An empty method defaults to bank transfer.
func (c *Client) RecordPayment(ctx context.Context, invoiceID int64, in model.PaymentInput) (*model.Payment, error) {
	if in.Method == "" {
		in.Method = model.DefaultPaymentMethod
	}
	var p model.Payment
	if err := c.post(ctx, fmt.Sprintf("/api/invoices/%d/payments", invoiceID), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DashboardMetrics returns the invoicing overview.
func (c *Client) DashboardMetrics(ctx context.Context) (*model.MetricsSummary, error) {
	var m model.MetricsSummary
	if err := c.get(ctx, "/api/metrics/dashboard", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListCustomers returns all customers.
func (c *Client) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	var out []model.Customer
	if err := c.get(ctx, "/api/customers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCustomer returns one customer.
func (c *Client) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	var cu model.Customer
	if err := c.get(ctx, fmt.Sprintf("/api/customers/%d", id), nil, &cu); err != nil {
		return nil, err
	}
	return &cu, nil
}

// CreateCustomer adds a customer.
func (c *Client) CreateCustomer(ctx context.Context, in model.CustomerInput) (*model.Customer, error) {
	var cu model.Customer
	if err := c.post(ctx, "/api/customers", in, &cu); err != nil {
		return nil, err
	}
	return &cu, nil
}

// UpdateCustomer changes a customer.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error) {
	var cu model.Customer
	if err := c.put(ctx, fmt.Sprintf("/api/customers/%d", id), in, &cu); err != nil {
		return nil, err
	}
	return &cu, nil
}

// DeleteCustomer removes a customer.
func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/customers/%d", id), nil)
}
