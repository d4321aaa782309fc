package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

const (
	// DefaultSuggestionLimit is how many categories a lookup returns.
	DefaultSuggestionLimit = 3
	// DefaultStatsDays is the stats window.
	DefaultStatsDays = 30
)

// SuggestCategories ranks categories for a pending transaction.
func (c *Client) SuggestCategories(ctx context.Context, req model.SuggestionRequest, limit int) ([]model.CategorySuggestion, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	var out struct {
		Suggestions []model.CategorySuggestion `json:"suggestions"`
	}
	v := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodPost, "/api/category-suggestions/suggest", v, req, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// SuggestionFeedback reports which category the user actually picked.
func (c *Client) SuggestionFeedback(ctx context.Context, fb model.SuggestionFeedback) error {
	return c.post(ctx, "/api/category-suggestions/feedback", fb, nil)
}

// SuggestionStats returns accuracy over the last days.
func (c *Client) SuggestionStats(ctx context.Context, days int) (*model.SuggestionStats, error) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	var s model.SuggestionStats
	v := url.Values{"days": {strconv.Itoa(days)}}
	if err := c.get(ctx, "/api/category-suggestions/stats", v, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
