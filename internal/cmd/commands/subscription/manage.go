package subscription

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/dropinblog/internal/cmd/base"
)

// Action is one of the lifecycle subcommands.
type Action string

const (
	ActionStatus Action = "status"
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
)

type ManageCommand struct {
	*base.Command

	Action Action

	flagConfig  string
	flagTrigger string
}

type statusOutput struct {
	Trigger    string `json:"trigger"`
	Subscribed bool   `json:"subscribed"`
	WebhookID  string `json:"webhookId,omitempty"`
	BlogID     string `json:"blogId,omitempty"`
	WebhookURL string `json:"webhookUrl"`
}

func (c *ManageCommand) Synopsis() string {
	switch c.Action {
	case ActionCreate:
		return "Register a trigger's webhook"
	case ActionDelete:
		return "Delete a trigger's webhook"
	}
	return "Show a trigger's stored subscription"
}

func (c *ManageCommand) Help() string {
	return fmt.Sprintf(`Usage: dropinblog subscription %s -trigger=<name> [options]

  %s. The status subcommand reads only the stored state; it does not
  check whether the webhook still exists remotely.`, c.Action, c.Synopsis()) + c.Flags().Help()
}

func (c *ManageCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet(string(c.Action), flag.ContinueOnError))
	f.StringEnvVar(&c.flagConfig, "config", base.ConfigEnvVar, "", "Path to the config file.")
	f.StringVar(&c.flagTrigger, "trigger", "", "(Required) Name of the trigger block.")
	return f
}

func (c *ManageCommand) Run(args []string) int {
	ui := c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagTrigger == "" {
		ui.Error("trigger flag is required")
		return 1
	}

	srv, err := c.OpenServer(c.flagConfig, c.Action != ActionStatus)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer srv.Close()

	if srv.Config.Trigger(c.flagTrigger) == nil {
		ui.Error(fmt.Sprintf("no trigger %q in config", c.flagTrigger))
		return 1
	}

	switch c.Action {
	case ActionStatus:
		sub, err := srv.Subscriptions.Store(c.flagTrigger).Load(c.Context)
		if err != nil {
			ui.Error(fmt.Sprintf("error loading subscription: %v", err))
			return 1
		}
		out := statusOutput{
			Trigger:    c.flagTrigger,
			WebhookURL: srv.Config.WebhookURL(c.flagTrigger),
		}
		if sub != nil {
			out.Subscribed = true
			out.WebhookID = sub.WebhookID
			out.BlogID = sub.BlogID
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			ui.Error(err.Error())
			return 1
		}
		fmt.Fprintln(c.Stdout, string(b))

	case ActionCreate:
		m := srv.Triggers[c.flagTrigger]
		exists, err := m.CheckExists(c.Context)
		if err != nil {
			ui.Error(err.Error())
			return 1
		}
		if exists {
			ui.Info(fmt.Sprintf("trigger %q is already subscribed", c.flagTrigger))
			return 0
		}
		if err := m.Create(c.Context); err != nil {
			ui.Error(err.Error())
			return 1
		}
		ui.Info(fmt.Sprintf("subscribed trigger %q", c.flagTrigger))

	case ActionDelete:
		if err := srv.Triggers[c.flagTrigger].Delete(c.Context); err != nil {
			ui.Error(err.Error())
			return 1
		}
		ui.Info(fmt.Sprintf("unsubscribed trigger %q", c.flagTrigger))

	default:
		ui.Error(fmt.Sprintf("unknown action %q", c.Action))
		return 1
	}

	return 0
}
