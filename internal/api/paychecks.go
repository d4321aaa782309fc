package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

// ListPaychecks returns recurring paychecks.
func (c *Client) ListPaychecks(ctx context.Context, activeOnly bool) ([]model.Paycheck, error) {
	var out []model.Paycheck
	v := url.Values{"active_only": {strconv.FormatBool(activeOnly)}}
	if err := c.get(ctx, "/api/paychecks", v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPaycheck returns one paycheck.
func (c *Client) GetPaycheck(ctx context.Context, id int64) (*model.Paycheck, error) {
	var p model.Paycheck
	if err := c.get(ctx, fmt.Sprintf("/api/paychecks/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePaycheck adds a paycheck.
func (c *Client) CreatePaycheck(ctx context.Context, in model.PaycheckInput) (*model.Paycheck, error) {
	var p model.Paycheck
	if err := c.post(ctx, "/api/paychecks", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePaycheck changes a paycheck.
func (c *Client) UpdatePaycheck(ctx context.Context, id int64, in model.PaycheckInput) (*model.Paycheck, error) {
	var p model.Paycheck
	if err := c.put(ctx, fmt.Sprintf("/api/paychecks/%d", id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePaycheck removes a paycheck.
func (c *Client) DeletePaycheck(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/paychecks/%d", id), nil)
}

// PaycheckSchedule lists the next pay dates over monthsAhead months.
func (c *Client) PaycheckSchedule(ctx context.Context, id int64, monthsAhead int) (*model.PaycheckSchedule, error) {
	if monthsAhead <= 0 {
		monthsAhead = 3
	}
	var s model.PaycheckSchedule
	v := url.Values{"months_ahead": {strconv.Itoa(monthsAhead)}}
	if err := c.get(ctx, fmt.Sprintf("/api/paychecks/%d/schedule", id), v, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreatePaycheckInstance places a paycheck into a budget month.
func (c *Client) CreatePaycheckInstance(ctx context.Context, in model.PaycheckInstanceInput) (*model.PaycheckInstance, error) {
	var p model.PaycheckInstance
	if err := c.post(ctx, "/api/paychecks/instances", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListBudgetInstances returns the paycheck instances of a budget.
func (c *Client) ListBudgetInstances(ctx context.Context, budgetID int64) ([]model.PaycheckInstance, error) {
	var out []model.PaycheckInstance
	if err := c.get(ctx, fmt.Sprintf("/api/paychecks/instances/budget/%d", budgetID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReceivePaycheckInstance marks an instance as received.
func (c *Client) ReceivePaycheckInstance(ctx context.Context, instanceID int64) (*model.PaycheckInstance, error) {
	var p model.PaycheckInstance
	if err := c.put(ctx, fmt.Sprintf("/api/paychecks/instances/%d/receive", instanceID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FundingPlan returns how a budget is funded by its paychecks.
func (c *Client) FundingPlan(ctx context.Context, budgetID int64) (*model.FundingPlan, error) {
	var p model.FundingPlan
	if err := c.get(ctx, fmt.Sprintf("/api/paychecks/budget/%d/funding-plan", budgetID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CategoryFunding returns per-category funding status for a budget.
func (c *Client) CategoryFunding(ctx context.Context, budgetID int64) ([]model.CategoryFundingStatus, error) {
	var out []model.CategoryFundingStatus
	if err := c.get(ctx, fmt.Sprintf("/api/paychecks/budget/%d/category-funding", budgetID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AutoAllocate asks the server to distribute received income across
// categories. The response is passed through as a message map.
func (c *Client) AutoAllocate(ctx context.Context, budgetID int64) (map[string]any, error) {
	out := map[string]any{}
	if err := c.post(ctx, fmt.Sprintf("/api/paychecks/budget/%d/auto-allocate", budgetID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
