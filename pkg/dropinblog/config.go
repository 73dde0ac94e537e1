package dropinblog

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the DropInBlog API host.
	DefaultBaseURL = "https://api.dropinblog.com"

	// DefaultAuthURL is where users grant the connector access.
	DefaultAuthURL = "https://app.dropinblog.com/oauth/authorize"

	defaultTimeout = 30 * time.Second
)

// Config contains configuration for the DropInBlog API client.
//
// Example configuration (HCL):
//
//	api {
//	  base_url   = "https://api.dropinblog.com"
//	  timeout    = "30s"
//	  tls_verify = true
//	}
type Config struct {
	// BaseURL is the base URL of the DropInBlog API.
	BaseURL string `hcl:"base_url,optional" json:"baseUrl"`

	// Timeout for API requests, as a duration string. Default: 30s.
	Timeout string `hcl:"timeout,optional" json:"timeout,omitempty"`

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development/testing with self-signed certs.
	TLSVerify *bool `hcl:"tls_verify,optional" json:"tlsVerify,omitempty"`

	// UserAgent is sent with every request when set.
	UserAgent string `hcl:"user_agent,optional" json:"userAgent,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   defaultTimeout.String(),
		TLSVerify: &tlsVerify,
	}
}

// ApplyDefaults fills unset fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.Timeout == "" {
		c.Timeout = defaults.Timeout
	}
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	timeout, err := c.TimeoutDuration()
	if err != nil {
		return err
	}
	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", timeout)
	}

	return nil
}

// TimeoutDuration parses Timeout. An empty value means the default.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return defaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

// TokenURL returns the OAuth2 token endpoint for this API host.
func (c *Config) TokenURL() string {
	return c.BaseURL + "/oauth/token"
}

// NewHTTPClient creates the base (unauthenticated) HTTP client. The OAuth2
// transport is layered on top of it by NewClient.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	timeout, err := c.TimeoutDuration()
	if err != nil {
		timeout = defaultTimeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
