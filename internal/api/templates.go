package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

// TemplateQuery filters category templates.
type TemplateQuery struct {
	ActiveOnly    *bool
	CategoryType  model.TemplateType
	CategoryGroup string
	Search        string
	Limit         int
	Offset        int
}

func (q TemplateQuery) values() url.Values {
	v := url.Values{}
	if q.ActiveOnly != nil {
		v.Set("active_only", strconv.FormatBool(*q.ActiveOnly))
	}
	if q.CategoryType != "" {
		v.Set("category_type", string(q.CategoryType))
	}
	if q.CategoryGroup != "" {
		v.Set("category_group", q.CategoryGroup)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// ListTemplates returns category templates.
func (c *Client) ListTemplates(ctx context.Context, q TemplateQuery) (*model.TemplatePage, error) {
	var page model.TemplatePage
	if err := c.get(ctx, "/api/category-templates", q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateTemplate adds a template.
func (c *Client) CreateTemplate(ctx context.Context, t model.CategoryTemplate) (*model.CategoryTemplate, error) {
	var out model.CategoryTemplate
	if err := c.post(ctx, "/api/category-templates", t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTemplate replaces a template's editable fields.
func (c *Client) UpdateTemplate(ctx context.Context, id int64, t model.CategoryTemplate) (*model.CategoryTemplate, error) {
	var out model.CategoryTemplate
	if err := c.put(ctx, fmt.Sprintf("/api/category-templates/%d", id), t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TemplateDeleteResult is the server's answer to a delete. When the
// template is still referenced and force was not set, Deleted is false.
type TemplateDeleteResult struct {
	Message    string `json:"message"`
	Deleted    bool   `json:"deleted"`
	UsageCount int    `json:"usage_count,omitempty"`
}

// DeleteTemplate deletes a template. Without force the server refuses when
// budgets still use it.
func (c *Client) DeleteTemplate(ctx context.Context, id int64, force bool) (*TemplateDeleteResult, error) {
	v := url.Values{}
	if force {
		v.Set("force", "true")
	}
	var out TemplateDeleteResult
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/category-templates/%d", id), v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
