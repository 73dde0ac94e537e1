package blogs

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/dropinblog/internal/cmd/base"
	"github.com/hashicorp-forge/dropinblog/pkg/node"
	"github.com/hashicorp-forge/dropinblog/pkg/node/options"
)

// Command prints the options of one loader. It backs both the blogs and the
// statuses command.
type Command struct {
	*base.Command

	// Loader is the option loader name, e.g. "getBlogs".
	Loader string

	flagConfig string
}

// NewBlogsCommand lists the account's blogs.
func NewBlogsCommand(b *base.Command) *Command {
	return &Command{Command: b, Loader: node.LoadBlogs}
}

// NewStatusesCommand lists the account's post statuses.
func NewStatusesCommand(b *base.Command) *Command {
	return &Command{Command: b, Loader: node.LoadStatuses}
}

func (c *Command) noun() string {
	if c.Loader == node.LoadStatuses {
		return "statuses"
	}
	return "blogs"
}

func (c *Command) Synopsis() string {
	return fmt.Sprintf("List the account's %s", c.noun())
}

func (c *Command) Help() string {
	return fmt.Sprintf(`Usage: dropinblog %s [options]

  Print one {"label", "value"} JSON object per line, as offered to the
  node's option lists.`, c.noun()) + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet(c.noun(), flag.ContinueOnError))
	f.StringEnvVar(&c.flagConfig, "config", base.ConfigEnvVar, "", "Path to the config file.")
	return f
}

func (c *Command) Run(args []string) int {
	ui := c.UI

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

	opts, err := options.DefaultRegistry().Load(c.Context, c.Loader, srv.Client)
	if err != nil {
		ui.Error(fmt.Sprintf("error listing %s: %v", c.noun(), err))
		return 1
	}

	for _, o := range opts {
		b, err := json.Marshal(o)
		if err != nil {
			ui.Error(fmt.Sprintf("error encoding option: %v", err))
			return 1
		}
		fmt.Fprintln(c.Stdout, string(b))
	}
	return 0
}
