package describe

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/dropinblog/internal/cmd/base"
	"github.com/hashicorp-forge/dropinblog/pkg/node"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the node descriptors"
}

func (c *Command) Help() string {
	return `Usage: dropinblog describe [node]

  Print the descriptor of the named node (dropInBlog or dropInBlogTrigger)
  as JSON, or of every node when no name is given.`
}

func (c *Command) Run(args []string) int {
	f := flag.NewFlagSet("describe", flag.ContinueOnError)
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	descriptors := node.All()
	if name := f.Arg(0); name != "" {
		var found *node.Descriptor
		for _, d := range descriptors {
			if d.Name == name {
				found = d
			}
		}
		if found == nil {
			c.UI.Error(fmt.Sprintf("unknown node %q", name))
			return 1
		}
		descriptors = []*node.Descriptor{found}
	}

	b, err := json.MarshalIndent(descriptors, "", "  ")
	if err != nil {
		c.UI.Error(fmt.Sprintf("error encoding descriptors: %v", err))
		return 1
	}
	fmt.Fprintln(c.Stdout, string(b))
	return 0
}
