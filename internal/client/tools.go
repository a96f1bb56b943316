package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/toolshed/internal/model"
)

// ListTools returns a page of the catalog. A zero limit leaves paging to
// the backend.
func (c *Client) ListTools(ctx context.Context, skip, limit int) ([]model.Tool, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("skip", strconv.Itoa(skip))
		q.Set("limit", strconv.Itoa(limit))
	}
	var tools []model.Tool
	err := c.do(ctx, request{method: http.MethodGet, route: "/tools", path: "/tools", query: q, out: &tools})
	return tools, err
}

// SearchTools returns the tools matching term.
func (c *Client) SearchTools(ctx context.Context, term string) ([]model.Tool, error) {
	var tools []model.Tool
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/tools",
		path:   "/tools",
		query:  url.Values{"search_term": {term}},
		out:    &tools,
	})
	return tools, err
}

// ToolsByCategory returns the tools in category.
func (c *Client) ToolsByCategory(ctx context.Context, category string) ([]model.Tool, error) {
	var tools []model.Tool
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/tools/category/{category}",
		path:   "/tools/category/" + url.PathEscape(category),
		out:    &tools,
	})
	return tools, err
}

// CreateTool adds a tool to the catalog (admin).
func (c *Client) CreateTool(ctx context.Context, in model.ToolInput) (model.Tool, error) {
	var tool model.Tool
	err := c.do(ctx, request{method: http.MethodPost, route: "/tools", path: "/tools", body: in, out: &tool})
	return tool, err
}

// UpdateTool replaces a tool's details (admin).
func (c *Client) UpdateTool(ctx context.Context, id int64, in model.ToolInput) (model.Tool, error) {
	var tool model.Tool
	err := c.do(ctx, request{
		method: http.MethodPut,
		route:  "/tools/{id}",
		path:   idPath("/tools/%d", id),
		body:   in,
		out:    &tool,
	})
	return tool, err
}

// DeleteTool removes a tool from the catalog (admin).
func (c *Client) DeleteTool(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, route: "/tools/{id}", path: idPath("/tools/%d", id)})
}
