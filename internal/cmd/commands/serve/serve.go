package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp-forge/dropinblog/internal/api"
	"github.com/hashicorp-forge/dropinblog/internal/cmd/base"
	"github.com/hashicorp-forge/dropinblog/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

type Command struct {
	*base.Command

	flagConfig            string
	flagAddr              string
	flagKeepSubscriptions bool
}

func (c *Command) Synopsis() string {
	return "Run the webhook callback server"
}

func (c *Command) Help() string {
	return `Usage: dropinblog serve [options]

  Subscribe every configured trigger, then serve webhook deliveries on
  POST /webhook/{trigger} until interrupted. Each delivery is written to
  stdout (and to Kafka when configured). With output.framing = "raw" the
  body is written as received; "envelope" writes one JSON object per line.

  On shutdown the triggers' webhooks are deleted again unless
  -keep-subscriptions is set. A failed delete is logged and does not
  block shutdown.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("serve", flag.ContinueOnError))

	f.StringEnvVar(&c.flagConfig, "config", base.ConfigEnvVar, "", "Path to the config file.")
	f.StringVar(&c.flagAddr, "addr", "", "Listen address. Overrides server.addr.")
	f.BoolVar(&c.flagKeepSubscriptions, "keep-subscriptions", false,
		"Leave webhooks registered on shutdown.")

	return f
}

func (c *Command) Run(args []string) int {
	log, ui := c.Log, c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	srv, err := c.OpenServer(c.flagConfig, true)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer srv.Close()

	metrics.RegisterDefault()

	addr := srv.Config.Server.Addr
	if c.flagAddr != "" {
		addr = c.flagAddr
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "public_url", srv.Config.PublicURL, "triggers", len(srv.Triggers))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Subscribe once the listener is up so early deliveries are not lost.
	if err := srv.ActivateTriggers(c.Context); err != nil {
		log.Error("error activating triggers", "error", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	exitCode := 0
	select {
	case err := <-errCh:
		log.Error("server failed", "error", err)
		exitCode = 1
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if c.flagKeepSubscriptions {
		log.Info("keeping webhook subscriptions")
	} else if err := srv.DeactivateTriggers(ctx); err != nil {
		log.Warn("error deleting webhook subscriptions", "error", err)
	}

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("error shutting down server", "error", err)
		exitCode = 1
	}

	return exitCode
}
