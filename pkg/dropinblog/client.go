package dropinblog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/hashicorp-forge/dropinblog/pkg/metrics"
)

// Client is an OAuth2-authenticated client for the DropInBlog REST API.
//
// Every call is a single attempt: timeouts come from Config, and failures are
// returned to the caller as *APIError or *CredentialError.
type Client struct {
	config *Config
	client *http.Client
	logger hclog.Logger
}

// Request describes one API call.
type Request struct {
	Method string

	// Path is the request path below BaseURL, already escaped.
	Path string

	// Endpoint is the path template used as the metrics label, e.g.
	// "/v2/blog/{blogId}/posts". Defaults to Path.
	Endpoint string

	// Query is encoded into the URL when non-empty.
	Query url.Values

	// Body is marshaled as JSON when non-nil.
	Body any
}

// NewClient creates a new API client. Every request carries a bearer token
// obtained from ts.
func NewClient(cfg *Config, ts oauth2.TokenSource, logger hclog.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid API client config: %w", err)
	}
	if ts == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	httpClient := cfg.NewHTTPClient()
	httpClient.Transport = &oauth2.Transport{
		Source: credentialSource{ts},
		Base:   httpClient.Transport,
	}

	return &Client{
		config: cfg,
		client: httpClient,
		logger: logger,
	}, nil
}

// BaseURL returns the API host the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Do executes req and returns the raw JSON response body.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = req.Path
	}

	u := c.config.BaseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	metrics.APIDuration.WithLabelValues(req.Method, endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(req.Method, endpoint, "error").Inc()

		var credErr *CredentialError
		if errors.As(err, &credErr) {
			return nil, credErr
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.APIRequests.WithLabelValues(req.Method, endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, req.Method, req.Path, respBody)
	}

	return json.RawMessage(respBody), nil
}

// doJSON executes req and decodes the response into result. An empty body
// leaves result untouched.
func (c *Client) doJSON(ctx context.Context, req Request, result any) error {
	body, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// credentialSource marks token acquisition failures as CredentialErrors so
// they can be told apart from API and transport failures.
type credentialSource struct {
	src oauth2.TokenSource
}

func (s credentialSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, &CredentialError{Err: err}
	}
	return tok, nil
}
