package dropinblog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

// OAuthConfig holds the OAuth2 application credentials.
//
// Example configuration (HCL):
//
//	oauth {
//	  client_id     = env("DROPINBLOG_CLIENT_ID")
//	  client_secret = env("DROPINBLOG_CLIENT_SECRET")
//	  redirect_url  = "http://localhost:8000/oauth/callback"
//	}
type OAuthConfig struct {
	ClientID     string `hcl:"client_id,optional"`
	ClientSecret string `hcl:"client_secret,optional"`
	RedirectURL  string `hcl:"redirect_url,optional"`

	// AuthURL overrides the authorization endpoint.
	AuthURL string `hcl:"auth_url,optional"`

	// AccessToken is a pre-issued token. When set, no code exchange or
	// refresh takes place.
	AccessToken string `hcl:"access_token,optional"`
}

// OAuth2Config builds the authorization-code configuration for the API
// host in cfg. The scope is empty and client credentials are sent in the
// token request body.
func (o *OAuthConfig) OAuth2Config(cfg *Config) *oauth2.Config {
	authURL := o.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		RedirectURL:  o.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  baseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// TokenStore persists OAuth2 tokens between runs.
type TokenStore interface {
	// LoadToken returns the stored token, or nil when there is none.
	LoadToken(ctx context.Context) (*oauth2.Token, error)

	// SaveToken replaces the stored token.
	SaveToken(ctx context.Context, tok *oauth2.Token) error
}

// ErrNoToken is returned when no token is configured or stored. Run the auth
// command first.
var ErrNoToken = errors.New("no OAuth2 token available")

// withHTTPClient makes oauth2 use cfg's HTTP settings for token requests.
func withHTTPClient(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, cfg.NewHTTPClient())
}

// Exchange trades an authorization code for a token and stores it.
func Exchange(ctx context.Context, cfg *Config, o *OAuthConfig, store TokenStore, code string) (*oauth2.Token, error) {
	conf := o.OAuth2Config(cfg)

	tok, err := conf.Exchange(withHTTPClient(ctx, cfg), code)
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("failed to exchange authorization code: %w", err)}
	}

	if store != nil {
		if err := store.SaveToken(ctx, tok); err != nil {
			return nil, fmt.Errorf("failed to save token: %w", err)
		}
	}
	return tok, nil
}

// TokenSource returns the token source for API calls. A static access token
// in o wins; otherwise the stored token is refreshed as needed and every
// new token is written back to store.
func TokenSource(ctx context.Context, cfg *Config, o *OAuthConfig, store TokenStore, logger hclog.Logger) (oauth2.TokenSource, error) {
	if o.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: o.AccessToken,
			TokenType:   "Bearer",
		}), nil
	}

	if store == nil {
		return nil, ErrNoToken
	}
	tok, err := store.LoadToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if tok == nil {
		return nil, ErrNoToken
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	src := o.OAuth2Config(cfg).TokenSource(withHTTPClient(ctx, cfg), tok)
	return &PersistentTokenSource{
		ctx:    ctx,
		src:    oauth2.ReuseTokenSource(tok, src),
		store:  store,
		last:   tok.AccessToken,
		logger: logger,
	}, nil
}

// PersistentTokenSource saves refreshed tokens to a TokenStore.
type PersistentTokenSource struct {
	ctx    context.Context
	src    oauth2.TokenSource
	store  TokenStore
	logger hclog.Logger

	mu   sync.Mutex
	last string
}

// Token implements oauth2.TokenSource.
func (s *PersistentTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tok.AccessToken != s.last {
		if err := s.store.SaveToken(s.ctx, tok); err != nil {
			// The token is still usable for this request.
			s.logger.Warn("error saving refreshed token", "error", err)
		} else {
			s.logger.Debug("saved refreshed token", "expiry", tok.Expiry)
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
