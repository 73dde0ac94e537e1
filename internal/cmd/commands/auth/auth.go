package auth

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"

	"github.com/hashicorp-forge/dropinblog/internal/cmd/base"
	"github.com/hashicorp-forge/dropinblog/pkg/dropinblog"
)

type Command struct {
	*base.Command

	flagConfig    string
	flagCode      string
	flagNoBrowser bool
	flagTimeout   time.Duration
}

func (c *Command) Synopsis() string {
	return "Authorize the connector with DropInBlog"
}

func (c *Command) Help() string {
	return `Usage: dropinblog auth [options]

  Run the OAuth2 authorization-code flow and store the resulting token.

  The authorization page is opened in a browser and the redirect is caught
  on oauth.redirect_url, which must point at this machine. With -code an
  already obtained code is exchanged directly.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("auth", flag.ContinueOnError))

	f.StringEnvVar(&c.flagConfig, "config", base.ConfigEnvVar, "", "Path to the config file.")
	f.StringVar(&c.flagCode, "code", "", "Exchange this authorization `code` instead of opening a browser.")
	f.BoolVar(&c.flagNoBrowser, "no-browser", false, "Print the authorization URL without opening it.")
	f.DurationVar(&c.flagTimeout, "timeout", 5*time.Minute, "How long to wait for the redirect.")

	return f
}

func (c *Command) Run(args []string) int {
	log, ui := c.Log, c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	srv, err := c.OpenServer(c.flagConfig, false)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer srv.Close()

	cfg := srv.Config
	if cfg.OAuth.ClientID == "" || cfg.OAuth.ClientSecret == "" {
		ui.Error("oauth.client_id and oauth.client_secret are required")
		return 1
	}

	code := c.flagCode
	if code == "" {
		if cfg.OAuth.RedirectURL == "" {
			ui.Error("oauth.redirect_url is required to receive the authorization code")
			return 1
		}
		code, err = c.awaitCode(cfg.OAuth.OAuth2Config(cfg.API))
		if err != nil {
			ui.Error(err.Error())
			return 1
		}
	}

	tok, err := dropinblog.Exchange(c.Context, cfg.API, cfg.OAuth, srv.Tokens, code)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	log.Debug("stored token", "expiry", tok.Expiry)

	client, err := dropinblog.NewClient(cfg.API, oauth2.StaticTokenSource(tok), log.Named("api"))
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	if err := client.Ping(c.Context); err != nil {
		ui.Error(err.Error())
		return 1
	}

	ui.Info("Authorized. The token has been stored.")
	return 0
}

// awaitCode opens the authorization page and waits for the redirect.
func (c *Command) awaitCode(conf *oauth2.Config) (string, error) {
	redirect, err := url.Parse(conf.RedirectURL)
	if err != nil {
		return "", fmt.Errorf("invalid redirect_url: %w", err)
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	r := chi.NewRouter()
	r.Get(redirectPath(redirect), callbackHandler(state, results))

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return "", fmt.Errorf("error listening for redirect on %s: %w", redirect.Host, err)
	}
	httpServer := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go httpServer.Serve(ln)
	defer httpServer.Close()

	authURL := conf.AuthCodeURL(state)
	c.UI.Output(fmt.Sprintf("Authorize the connector at:\n\n  %s\n", authURL))
	if !c.flagNoBrowser {
		if err := browser.OpenURL(authURL); err != nil {
			c.Log.Warn("error opening browser", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(c.Context, c.flagTimeout)
	defer cancel()

	select {
	case res := <-results:
		return res.code, res.err
	case <-ctx.Done():
		return "", errors.New("timed out waiting for authorization")
	}
}

func redirectPath(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

type callbackResult struct {
	code string
	err  error
}

// callbackHandler accepts the first redirect carrying the expected state.
func callbackHandler(state string, results chan<- callbackResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			return
		}

		var res callbackResult
		if e := q.Get("error"); e != "" {
			res.err = fmt.Errorf("authorization denied: %s %s", e, q.Get("error_description"))
		} else if res.code = q.Get("code"); res.code == "" {
			res.err = errors.New("redirect did not include a code")
		}

		select {
		case results <- res:
		default:
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "DropInBlog authorization complete. You can close this window.")
	}
}
