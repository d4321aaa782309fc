package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

// TransactionQuery filters the transaction list. Zero values are omitted.
type TransactionQuery struct {
	BudgetID   int64
	CategoryID int64
	StartDate  string
	EndDate    string
	Limit      int
}

func (q TransactionQuery) values() url.Values {
	v := url.Values{}
	if q.BudgetID > 0 {
		v.Set("budget_id", strconv.FormatInt(q.BudgetID, 10))
	}
	if q.CategoryID > 0 {
		v.Set("category_id", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.StartDate != "" {
		v.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("end_date", q.EndDate)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// ListTransactions returns transactions matching q.
func (c *Client) ListTransactions(ctx context.Context, q TransactionQuery) ([]model.Transaction, error) {
	var out []model.Transaction
	if err := c.get(ctx, "/api/transactions", q.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransaction returns one transaction with its splits.
func (c *Client) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	var t model.Transaction
	if err := c.get(ctx, fmt.Sprintf("/api/transactions/%d", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTransaction records a transaction.
func (c *Client) CreateTransaction(ctx context.Context, in model.TransactionCreate) (*model.Transaction, error) {
	var t model.Transaction
	if err := c.post(ctx, "/api/transactions", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTransaction replaces a transaction.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, in model.TransactionCreate) (*model.Transaction, error) {
	var t model.Transaction
	if err := c.put(ctx, fmt.Sprintf("/api/transactions/%d", id), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/transactions/%d", id), nil)
}

// BudgetTransactionSummary returns spend per category for a budget.
func (c *Client) BudgetTransactionSummary(ctx context.Context, budgetID int64) (*model.TransactionSummary, error) {
	var s model.TransactionSummary
	if err := c.get(ctx, fmt.Sprintf("/api/transactions/budget/%d/summary", budgetID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
