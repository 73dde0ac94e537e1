// Package state persists per-node webhook subscriptions and OAuth2 tokens.
package state

import (
	"context"
	"errors"
)

// ErrIncompleteSubscription is returned by Save when either field is empty.
var ErrIncompleteSubscription = errors.New("subscription requires a webhook id and a blog id")

// Subscription is the remote webhook registration of one trigger node. Both
// fields are stored and cleared together.
type Subscription struct {
	WebhookID string `json:"webhookId"`
	BlogID    string `json:"blogId"`
}

func (s Subscription) validate() error {
	if s.WebhookID == "" || s.BlogID == "" {
		return ErrIncompleteSubscription
	}
	return nil
}

// SubscriptionStore holds the subscription of a single node instance.
type SubscriptionStore interface {
	// Load returns the stored subscription, or nil when there is none.
	Load(ctx context.Context) (*Subscription, error)

	// Save replaces the stored subscription.
	Save(ctx context.Context, sub Subscription) error

	// Clear removes the stored subscription. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
}

// Backend hands out node-scoped stores that share one storage medium.
type Backend interface {
	Store(nodeID string) SubscriptionStore
}
