package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

func inactiveQuery(includeInactive bool) url.Values {
	return url.Values{"include_inactive": {strconv.FormatBool(includeInactive)}}
}

func monthsQuery(months int) url.Values {
	return url.Values{"months": {strconv.Itoa(months)}}
}

// ListAssets returns assets.
func (c *Client) ListAssets(ctx context.Context, includeInactive bool) ([]model.Asset, error) {
	var out []model.Asset
	if err := c.get(ctx, "/api/net-worth/assets", inactiveQuery(includeInactive), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAsset returns one asset.
func (c *Client) GetAsset(ctx context.Context, id int64) (*model.Asset, error) {
	var a model.Asset
	if err := c.get(ctx, fmt.Sprintf("/api/net-worth/assets/%d", id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAsset adds an asset.
func (c *Client) CreateAsset(ctx context.Context, in model.AssetInput) (*model.Asset, error) {
	var a model.Asset
	if err := c.post(ctx, "/api/net-worth/assets", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAsset changes an asset.
func (c *Client) UpdateAsset(ctx context.Context, id int64, in model.AssetInput) (*model.Asset, error) {
	var a model.Asset
	if err := c.put(ctx, fmt.Sprintf("/api/net-worth/assets/%d", id), in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAsset removes an asset.
func (c *Client) DeleteAsset(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/net-worth/assets/%d", id), nil)
}

// ListLiabilities returns liabilities.
func (c *Client) ListLiabilities(ctx context.Context, includeInactive bool) ([]model.Liability, error) {
	var out []model.Liability
	if err := c.get(ctx, "/api/net-worth/liabilities", inactiveQuery(includeInactive), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLiability returns one liability.
func (c *Client) GetLiability(ctx context.Context, id int64) (*model.Liability, error) {
	var l model.Liability
	if err := c.get(ctx, fmt.Sprintf("/api/net-worth/liabilities/%d", id), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLiability adds a liability.
func (c *Client) CreateLiability(ctx context.Context, in model.LiabilityInput) (*model.Liability, error) {
	var l model.Liability
	if err := c.post(ctx, "/api/net-worth/liabilities", in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLiability changes a liability.
func (c *Client) UpdateLiability(ctx context.Context, id int64, in model.LiabilityInput) (*model.Liability, error) {
	var l model.Liability
	if err := c.put(ctx, fmt.Sprintf("/api/net-worth/liabilities/%d", id), in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteLiability removes a liability.
func (c *Client) DeleteLiability(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/api/net-worth/liabilities/%d", id), nil)
}

// NetWorthSummary returns the current position.
func (c *Client) NetWorthSummary(ctx context.Context) (*model.NetWorthSummary, error) {
	var s model.NetWorthSummary
	if err := c.get(ctx, "/api/net-worth/summary", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// NetWorthTrends returns monthly history.
func (c *Client) NetWorthTrends(ctx context.Context, months int) ([]model.NetWorthTrend, error) {
	if months <= 0 {
		months = 12
	}
	var out []model.NetWorthTrend
	if err := c.get(ctx, "/api/net-worth/trends", monthsQuery(months), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AssetBreakdown groups assets by type.
func (c *Client) AssetBreakdown(ctx context.Context) ([]model.AssetBreakdown, error) {
	var out []model.AssetBreakdown
	if err := c.get(ctx, "/api/net-worth/breakdown/assets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LiabilityBreakdown groups liabilities by type.
func (c *Client) LiabilityBreakdown(ctx context.Context) ([]model.LiabilityBreakdown, error) {
	var out []model.LiabilityBreakdown
	if err := c.get(ctx, "/api/net-worth/breakdown/liabilities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NetWorthProjection forecasts net worth months ahead.
func (c *Client) NetWorthProjection(ctx context.Context, months int) (*model.NetWorthProjection, error) {
	if months <= 0 {
		months = 12
	}
	var p model.NetWorthProjection
	if err := c.get(ctx, "/api/net-worth/projection", monthsQuery(months), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// NetWorthAlerts returns notable changes.
func (c *Client) NetWorthAlerts(ctx context.Context) ([]model.NetWorthAlert, error) {
	var out []model.NetWorthAlert
	if err := c.get(ctx, "/api/net-worth/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSnapshot records today's net worth.
func (c *Client) CreateSnapshot(ctx context.Context) (*model.NetWorthSnapshot, error) {
	var s model.NetWorthSnapshot
	if err := c.post(ctx, "/api/net-worth/snapshots", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
