package dropinblog

import (
	"context"
	"fmt"
	"net/http"
)

// ListBlogs returns every blog the account can access. The endpoint is not
// paginated.
func (c *Client) ListBlogs(ctx context.Context) ([]Blog, error) {
	var blogs []Blog
	if err := c.doJSON(ctx, Request{
		Method: http.MethodGet,
		Path:   "/v2/automations/blogs",
	}, &blogs); err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	return blogs, nil
}

// ListStatuses returns the post statuses available to the account.
func (c *Client) ListStatuses(ctx context.Context) ([]Status, error) {
	var statuses []Status
	if err := c.doJSON(ctx, Request{
		Method: http.MethodGet,
		Path:   "/v2/automations/statuses",
	}, &statuses); err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	return statuses, nil
}

// Ping verifies the credentials by listing blogs.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/v2/automations/blogs",
	}); err != nil {
		return fmt.Errorf("credential test failed: %w", err)
	}
	return nil
}
