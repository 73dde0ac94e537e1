package version

import (
	"github.com/hashicorp-forge/dropinblog/internal/cmd/base"
	"github.com/hashicorp-forge/dropinblog/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return "Usage: dropinblog version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output("dropinblog " + version.String())
	return 0
}
