package subscription

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/dropinblog/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Inspect and manage trigger webhook subscriptions"
}

func (c *Command) Help() string {
	return `Usage: dropinblog subscription <subcommand> [options]

  This command groups subcommands for a configured trigger's webhook:

    status    Show the stored subscription
    create    Register the webhook unless one is stored
    delete    Delete the stored webhook`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
