package dropinblog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// CreatePost creates a post in a blog. body is sent as-is.
func (c *Client) CreatePost(ctx context.Context, blogID string, body map[string]any) (json.RawMessage, error) {
	resp, err := c.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     fmt.Sprintf("/v2/blog/%s/posts", url.PathEscape(blogID)),
		Endpoint: "/v2/blog/{blogId}/posts",
		Body:     body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return resp, nil
}

// GetPost fetches a post by numeric id or slug. The API resolves which one
// it is; identifier is only escaped.
func (c *Client) GetPost(ctx context.Context, blogID, identifier string) (json.RawMessage, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path: fmt.Sprintf("/v2/automations/%s/posts/%s",
			url.PathEscape(blogID),
			url.PathEscape(identifier)),
		Endpoint: "/v2/automations/{blogId}/posts/{identifier}",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return resp, nil
}

// SearchPosts searches a blog's posts. query must contain "search".
func (c *Client) SearchPosts(ctx context.Context, blogID string, query url.Values) (json.RawMessage, error) {
	resp, err := c.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     fmt.Sprintf("/v2/automations/%s/posts/search", url.PathEscape(blogID)),
		Endpoint: "/v2/automations/{blogId}/posts/search",
		Query:    query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return resp, nil
}
