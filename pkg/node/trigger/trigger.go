// Package trigger manages the remote webhook behind a DropInBlog trigger
// node and turns inbound deliveries into output records.
//
// A node is either unsubscribed (no stored webhook id) or subscribed. The
// stored state is the only source of truth: CheckExists never asks the
// remote API, so a webhook deleted out-of-band stays "subscribed" locally
// until Delete runs.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/mapstructure"

	"github.com/hashicorp-forge/dropinblog/pkg/dropinblog"
	"github.com/hashicorp-forge/dropinblog/pkg/metrics"
	"github.com/hashicorp-forge/dropinblog/pkg/node"
	"github.com/hashicorp-forge/dropinblog/pkg/output"
	"github.com/hashicorp-forge/dropinblog/pkg/state"
)

// API is the part of the DropInBlog client the manager calls.
type API interface {
	CreateWebhook(ctx context.Context, blogID string, req dropinblog.WebhookRequest) (*dropinblog.Webhook, error)
	DeleteWebhook(ctx context.Context, blogID, hookID string) error
}

// Parameters are the configured values of a trigger node.
type Parameters struct {
	BlogID string `json:"blogId" mapstructure:"blogId"`
	Event  string `json:"event" mapstructure:"event"`
}

// DecodeParameters reads node parameters from a generic map. An empty event
// means post.published.
func DecodeParameters(raw map[string]any) (Parameters, error) {
	var p Parameters
	if err := mapstructure.WeakDecode(raw, &p); err != nil {
		return p, fmt.Errorf("invalid trigger parameters: %w", err)
	}
	p.applyDefaults()
	return p, p.Validate()
}

func (p *Parameters) applyDefaults() {
	if p.Event == "" {
		p.Event = node.EventPostPublished
	}
}

func (p Parameters) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.BlogID, validation.Required),
		validation.Field(&p.Event, validation.Required),
	)
}

// Options configures a Manager.
type Options struct {
	// NodeID identifies the node instance.
	NodeID string

	// WebhookURL is the callback URL registered with the remote API.
	WebhookURL string

	Parameters Parameters

	API    API
	Store  state.SubscriptionStore
	Sink   output.Sink
	Logger hclog.Logger
}

// Manager drives one trigger node's subscription. Transitions for a node are
// expected to run one at a time.
type Manager struct {
	nodeID     string
	webhookURL string
	params     Parameters

	api    API
	store  state.SubscriptionStore
	sink   output.Sink
	logger hclog.Logger
}

func NewManager(opts Options) (*Manager, error) {
	if opts.NodeID == "" {
		return nil, errors.New("node id is required")
	}
	if opts.API == nil {
		return nil, errors.New("API client is required")
	}
	if opts.Store == nil {
		return nil, errors.New("subscription store is required")
	}

	params := opts.Parameters
	params.applyDefaults()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters for node %q: %w", opts.NodeID, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Manager{
		nodeID:     opts.NodeID,
		webhookURL: opts.WebhookURL,
		params:     params,
		api:        opts.API,
		store:      opts.Store,
		sink:       opts.Sink,
		logger:     logger.With("node", opts.NodeID),
	}, nil
}

// NodeID returns the node instance id.
func (m *Manager) NodeID() string {
	return m.nodeID
}

// Parameters returns the node's configured parameters.
func (m *Manager) Parameters() Parameters {
	return m.params
}

// Subscription returns the stored subscription, or nil.
func (m *Manager) Subscription(ctx context.Context) (*state.Subscription, error) {
	return m.store.Load(ctx)
}

// CheckExists reports whether a webhook id is stored. It makes no API call.
func (m *Manager) CheckExists(ctx context.Context) (bool, error) {
	sub, err := m.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("error checking subscription: %w", err)
	}
	return sub != nil && sub.WebhookID != "", nil
}

// Create registers the webhook for the configured blog and event and stores
// the returned id together with the blog id.
func (m *Manager) Create(ctx context.Context) error {
	if strings.TrimSpace(m.webhookURL) == "" {
		return m.fail("create", errors.New("webhook URL is not set"))
	}

	events, err := dropinblog.EncodeEvents(m.params.Event)
	if err != nil {
		return m.fail("create", err)
	}

	hook, err := m.api.CreateWebhook(ctx, m.params.BlogID, dropinblog.WebhookRequest{
		HookURL: m.webhookURL,
		Events:  events,
		Source:  dropinblog.WebhookSource,
	})
	if err != nil {
		return m.fail("create", err)
	}
	if hook == nil || hook.HookID == "" {
		return m.fail("create", dropinblog.ErrMissingHookID)
	}

	sub := state.Subscription{
		WebhookID: hook.HookID.String(),
		BlogID:    m.params.BlogID,
	}
	if err := m.store.Save(ctx, sub); err != nil {
		return m.fail("create", fmt.Errorf("webhook %s registered but not stored: %w", sub.WebhookID, err))
	}

	metrics.SubscriptionTransitions.WithLabelValues("create", "success").Inc()
	m.logger.Info("webhook subscription created",
		"blog_id", sub.BlogID,
		"webhook_id", sub.WebhookID,
		"event", m.params.Event,
	)
	return nil
}

// Delete removes the stored webhook. It uses the stored blog id, which may
// differ from the configured one. Without a stored id it does nothing. When
// the API call fails the stored state is kept and the error returned; a
// caller tearing the node down should log it and carry on.
func (m *Manager) Delete(ctx context.Context) error {
	sub, err := m.store.Load(ctx)
	if err != nil {
		return m.fail("delete", fmt.Errorf("error loading subscription: %w", err))
	}
	if sub == nil || sub.WebhookID == "" {
		metrics.SubscriptionTransitions.WithLabelValues("delete", "noop").Inc()
		return nil
	}

	if err := m.api.DeleteWebhook(ctx, sub.BlogID, sub.WebhookID); err != nil {
		return m.fail("delete", err)
	}

	if err := m.store.Clear(ctx); err != nil {
		return m.fail("delete", fmt.Errorf("webhook %s deleted but not cleared: %w", sub.WebhookID, err))
	}

	metrics.SubscriptionTransitions.WithLabelValues("delete", "success").Inc()
	m.logger.Info("webhook subscription deleted",
		"blog_id", sub.BlogID,
		"webhook_id", sub.WebhookID,
	)
	return nil
}

// Activate creates the subscription unless one is already stored.
func (m *Manager) Activate(ctx context.Context) error {
	exists, err := m.CheckExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		m.logger.Debug("webhook subscription already exists")
		return nil
	}
	return m.Create(ctx)
}

// HandleDelivery passes one inbound body to the sink, unmodified. Every call
// yields exactly one record; there is no filtering or de-duplication.
func (m *Manager) HandleDelivery(ctx context.Context, body []byte) (output.Delivery, error) {
	d := output.NewDelivery(m.nodeID, body)

	if m.sink != nil {
		if err := m.sink.Emit(ctx, d); err != nil {
			metrics.Deliveries.WithLabelValues(m.nodeID, "error").Inc()
			m.logger.Error("error emitting delivery", "delivery_id", d.ID, "error", err)
			return d, fmt.Errorf("error emitting delivery: %w", err)
		}
	}

	metrics.Deliveries.WithLabelValues(m.nodeID, "success").Inc()
	m.logger.Debug("delivery received", "delivery_id", d.ID, "bytes", len(body))
	return d, nil
}

func (m *Manager) fail(transition string, err error) error {
	metrics.SubscriptionTransitions.WithLabelValues(transition, "failure").Inc()
	m.logger.Warn("webhook subscription "+transition+" failed", "error", err)
	return fmt.Errorf("failed to %s webhook subscription: %w", transition, err)
}
