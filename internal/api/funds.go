package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

// ListFunds returns sinking funds, optionally including inactive ones.
func (c *Client) ListFunds(ctx context.Context, includeInactive bool) ([]model.SinkingFund, error) {
	v := url.Values{}
	if includeInactive {
		v.Set("include_inactive", "true")
	}
	var out []model.SinkingFund
	if err := c.get(ctx, "/api/sinking-funds", v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FundSummary returns totals across all funds.
func (c *Client) FundSummary(ctx context.Context) (*model.FundSummary, error) {
	var s model.FundSummary
	if err := c.get(ctx, "/api/sinking-funds/summary", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetFund returns a fund and up to limit of its latest contributions.
func (c *Client) GetFund(ctx context.Context, id int64, includeContributions bool, limit int) (*model.SinkingFund, error) {
	if limit <= 0 {
		limit = 10
	}
	v := url.Values{
		"include_contributions": {strconv.FormatBool(includeContributions)},
		"contribution_limit":    {strconv.Itoa(limit)},
	}
	var f model.SinkingFund
	if err := c.get(ctx, fmt.Sprintf("/api/sinking-funds/%d", id), v, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFund adds a sinking fund.
func (c *Client) CreateFund(ctx context.Context, in model.FundInput) (*model.SinkingFund, error) {
	var f model.SinkingFund
	if err := c.post(ctx, "/api/sinking-funds", in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateFund changes a fund.
func (c *Client) UpdateFund(ctx context.Context, id int64, in model.FundInput) (*model.SinkingFund, error) {
	var f model.SinkingFund
	if err := c.put(ctx, fmt.Sprintf("/api/sinking-funds/%d", id), in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFund removes a fund.
func (c *Client) DeleteFund(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/sinking-funds/%d", id), nil)
}

// FundProgress returns the server's progress computation for a fund.
func (c *Client) FundProgress(ctx context.Context, id int64) (*model.FundProgress, error) {
	var p model.FundProgress
	if err := c.get(ctx, fmt.Sprintf("/api/sinking-funds/%d/progress", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListContributions pages through a fund's contributions.
func (c *Client) ListContributions(ctx context.Context, fundID int64, limit, offset int) ([]model.Contribution, error) {
	if limit <= 0 {
		limit = 50
	}
	v := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	var out []model.Contribution
	if err := c.get(ctx, fmt.Sprintf("/api/sinking-funds/%d/contributions", fundID), v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddContribution deposits into a fund.
func (c *Client) AddContribution(ctx context.Context, fundID int64, in model.ContributionInput) (*model.Contribution, error) {
	var out model.Contribution
	if err := c.post(ctx, fmt.Sprintf("/api/sinking-funds/%d/contributions", fundID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteContribution removes a contribution.
func (c *Client) DeleteContribution(ctx context.Context, fundID, contributionID int64) error {
	return c.del(ctx, fmt.Sprintf("/api/sinking-funds/%d/contributions/%d", fundID, contributionID), nil)
}
