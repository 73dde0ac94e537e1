package post

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp-forge/dropinblog/internal/cmd/base"
	"github.com/hashicorp-forge/dropinblog/pkg/node/post"
)

type Command struct {
	*base.Command

	flagConfig         string
	flagInput          string
	flagContinueOnFail bool
}

func (c *Command) Synopsis() string {
	return "Run post operations from JSON input"
}

func (c *Command) Help() string {
	return `Usage: dropinblog post [options]

  Read input items as a stream of JSON objects and run each as a post
  operation, in order:

    {"operation": "create", "parameters": {"blogId": "1", "title": "Hi", "content": "<p>Hi</p>"}}
    {"operation": "get",    "parameters": {"blogId": "1", "postIdentifier": "my-post"}}
    {"operation": "search", "parameters": {"blogId": "1", "search": "go", "limit": 5}}

  Output records are written one per line as {"item": N, "json": {...}}.
  By default the first failing item stops the run; with -continue-on-fail
  it produces an {"error": "..."} record instead.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("post", flag.ContinueOnError))

	f.StringEnvVar(&c.flagConfig, "config", base.ConfigEnvVar, "", "Path to the config file.")
	f.StringVar(&c.flagInput, "input", "-", "Input `file`, or - for stdin.")
	f.BoolVar(&c.flagContinueOnFail, "continue-on-fail", false,
		"Record failing items as error records and keep going.")

	return f
}

func (c *Command) Run(args []string) int {
	ui := c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	in := c.Stdin
	if c.flagInput != "-" {
		file, err := os.Open(c.flagInput)
		if err != nil {
			ui.Error(fmt.Sprintf("error opening input: %v", err))
			return 1
		}
		defer file.Close()
		in = file
	}

	items, err := ReadItems(in)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	srv, err := c.OpenServer(c.flagConfig, true)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer srv.Close()

	mode := post.Abort
	if c.flagContinueOnFail {
		mode = post.Continue
	}
	executor := post.NewExecutor(srv.Client, mode, c.Log.Named("post"))

	records, runErr := executor.Run(c.Context, items)
	for _, r := range records {
		if err := srv.Output.WriteRecord(r); err != nil {
			ui.Error(err.Error())
			return 1
		}
	}
	if runErr != nil {
		ui.Error(fmt.Sprintf("error running post operations: %v", runErr))
		return 1
	}
	return 0
}

// ReadItems decodes a stream of JSON input items.
func ReadItems(r io.Reader) ([]post.Item, error) {
	var items []post.Item

	dec := json.NewDecoder(r)
	for {
		var item post.Item
		err := dec.Decode(&item)
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, fmt.Errorf("error reading input item %d: %w", len(items), err)
		}
		items = append(items, item)
	}
}
