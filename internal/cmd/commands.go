package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/dropinblog/internal/cmd/base"
	"github.com/hashicorp-forge/dropinblog/internal/cmd/commands/auth"
	"github.com/hashicorp-forge/dropinblog/internal/cmd/commands/blogs"
	"github.com/hashicorp-forge/dropinblog/internal/cmd/commands/describe"
	"github.com/hashicorp-forge/dropinblog/internal/cmd/commands/post"
	"github.com/hashicorp-forge/dropinblog/internal/cmd/commands/serve"
	"github.com/hashicorp-forge/dropinblog/internal/cmd/commands/subscription"
	"github.com/hashicorp-forge/dropinblog/internal/cmd/commands/version"
)

// Commands returns the CLI command factories.
func Commands(log hclog.Logger, ui cli.Ui) map[string]cli.CommandFactory {
	b := base.NewCommand(log, ui)

	return map[string]cli.CommandFactory{
		"serve": func() (cli.Command, error) {
			return &serve.Command{Command: b}, nil
		},
		"auth": func() (cli.Command, error) {
			return &auth.Command{Command: b}, nil
		},
		"blogs": func() (cli.Command, error) {
			return blogs.NewBlogsCommand(b), nil
		},
		"statuses": func() (cli.Command, error) {
			return blogs.NewStatusesCommand(b), nil
		},
		"post": func() (cli.Command, error) {
			return &post.Command{Command: b}, nil
		},
		"subscription": func() (cli.Command, error) {
			return &subscription.Command{Command: b}, nil
		},
		"subscription status": func() (cli.Command, error) {
			return &subscription.ManageCommand{Command: b, Action: subscription.ActionStatus}, nil
		},
		"subscription create": func() (cli.Command, error) {
			return &subscription.ManageCommand{Command: b, Action: subscription.ActionCreate}, nil
		},
		"subscription delete": func() (cli.Command, error) {
			return &subscription.ManageCommand{Command: b, Action: subscription.ActionDelete}, nil
		},
		"describe": func() (cli.Command, error) {
			return &describe.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
