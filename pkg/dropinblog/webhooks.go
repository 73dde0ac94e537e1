package dropinblog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// WebhookSource tags registrations made by this connector.
const WebhookSource = "n8n"

// CreateWebhook registers a webhook on a blog. A response without a hookId
// is returned as-is with an empty HookID; callers decide what that means.
func (c *Client) CreateWebhook(ctx context.Context, blogID string, req WebhookRequest) (*Webhook, error) {
	resp, err := c.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     fmt.Sprintf("/v2/blog/%s/webhooks", url.PathEscape(blogID)),
		Endpoint: "/v2/blog/{blogId}/webhooks",
		Body:     req,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}

	hook := &Webhook{Raw: resp}
	if len(resp) > 0 {
		if err := json.Unmarshal(resp, hook); err != nil {
			return nil, fmt.Errorf("failed to decode webhook response: %w", err)
		}
	}
	return hook, nil
}

// DeleteWebhook removes a webhook registration.
func (c *Client) DeleteWebhook(ctx context.Context, blogID, hookID string) error {
	if _, err := c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path: fmt.Sprintf("/v2/blog/%s/webhooks/%s",
			url.PathEscape(blogID),
			url.PathEscape(hookID)),
		Endpoint: "/v2/blog/{blogId}/webhooks/{hookId}",
	}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}
