package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

// ListGoals returns goals, filtered by status when non-empty.
func (c *Client) ListGoals(ctx context.Context, status model.GoalStatus) ([]model.FinancialGoal, error) {
	v := url.Values{}
	if status != "" {
		v.Set("status", string(status))
	}
	var out []model.FinancialGoal
	if err := c.get(ctx, "/api/financial-goals", v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GoalSummary returns totals across goals.
func (c *Client) GoalSummary(ctx context.Context) (*model.GoalSummary, error) {
	var s model.GoalSummary
	if err := c.get(ctx, "/api/financial-goals/summary", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetGoal returns one goal with contributions and milestones.
func (c *Client) GetGoal(ctx context.Context, id int64) (*model.FinancialGoal, error) {
	var g model.FinancialGoal
	if err := c.get(ctx, fmt.Sprintf("/api/financial-goals/%d", id), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGoal adds a goal.
func (c *Client) CreateGoal(ctx context.Context, in model.GoalInput) (*model.FinancialGoal, error) {
	var g model.FinancialGoal
	if err := c.post(ctx, "/api/financial-goals", in, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGoal changes a goal.
func (c *Client) UpdateGoal(ctx context.Context, id int64, in model.GoalInput) (*model.FinancialGoal, error) {
	var g model.FinancialGoal
	if err := c.put(ctx, fmt.Sprintf("/api/financial-goals/%d", id), in, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// DeleteGoal removes a goal.
func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/financial-goals/%d", id), nil)
}

// GoalProjection forecasts completion. A positive monthly overrides the
// goal's own monthly contribution for the forecast.
func (c *Client) GoalProjection(ctx context.Context, id int64, monthly float64) (*model.GoalProjection, error) {
	v := url.Values{}
	if monthly > 0 {
		v.Set("monthly_contribution", strconv.FormatFloat(monthly, 'f', -1, 64))
	}
	var p model.GoalProjection
	if err := c.get(ctx, fmt.Sprintf("/api/financial-goals/%d/projection", id), v, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddGoalContribution records a payment toward a goal.
func (c *Client) AddGoalContribution(ctx context.Context, goalID int64, in model.GoalContributionInput) (*model.GoalContribution, error) {
	var out model.GoalContribution
	if err := c.post(ctx, fmt.Sprintf("/api/financial-goals/%d/contributions", goalID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListGoalContributions returns a goal's contributions.
func (c *Client) ListGoalContributions(ctx context.Context, goalID int64) ([]model.GoalContribution, error) {
	var out []model.GoalContribution
	if err := c.get(ctx, fmt.Sprintf("/api/financial-goals/%d/contributions", goalID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteGoalContribution removes a contribution.
func (c *Client) DeleteGoalContribution(ctx context.Context, goalID, contributionID int64) error {
	return c.del(ctx, fmt.Sprintf("/api/financial-goals/%d/contributions/%d", goalID, contributionID), nil)
}

// CreateMilestone adds a milestone to a goal.
func (c *Client) CreateMilestone(ctx context.Context, goalID int64, in model.MilestoneInput) (*model.GoalMilestone, error) {
	var out model.GoalMilestone
	if err := c.post(ctx, fmt.Sprintf("/api/financial-goals/%d/milestones", goalID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMilestones returns a goal's milestones.
func (c *Client) ListMilestones(ctx context.Context, goalID int64) ([]model.GoalMilestone, error) {
	var out []model.GoalMilestone
	if err := c.get(ctx, fmt.Sprintf("/api/financial-goals/%d/milestones", goalID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMilestone changes a milestone.
func (c *Client) UpdateMilestone(ctx context.Context, goalID, milestoneID int64, in model.MilestoneInput) (*model.GoalMilestone, error) {
	var out model.GoalMilestone
	if err := c.put(ctx, fmt.Sprintf("/api/financial-goals/%d/milestones/%d", goalID, milestoneID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMilestone removes a milestone.
func (c *Client) DeleteMilestone(ctx context.Context, goalID, milestoneID int64) error {
	return c.del(ctx, fmt.Sprintf("/api/financial-goals/%d/milestones/%d", goalID, milestoneID), nil)
}
