package base

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command holds what every subcommand shares.
type Command struct {
	Context context.Context
	Log     hclog.Logger
	UI      cli.Ui

	// Stdin and Stdout carry record input and output. Logs go to stderr.
	Stdin  io.Reader
	Stdout io.Writer
}

// NewCommand returns a Command with a background context.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		Context: context.Background(),
		Log:     log,
		UI:      ui,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
	}
}

// FlagSet wraps flag.FlagSet with help output and environment fallbacks.
type FlagSet struct {
	*flag.FlagSet
}

func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// StringEnvVar is StringVar with its default taken from env when set.
func (f *FlagSet) StringEnvVar(p *string, name, env, value, usage string) {
	if v, ok := os.LookupEnv(env); ok {
		value = v
	}
	f.StringVar(p, name, value, fmt.Sprintf("%s Env: %s.", usage, env))
}

// Help returns the flag usage text.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("\n\nOptions:\n\n")

	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "  -%s", fl.Name)
		if name, _ := flag.UnquoteUsage(fl); name != "" {
			fmt.Fprintf(&b, "=<%s>", name)
		}
		_, usage := flag.UnquoteUsage(fl)
		fmt.Fprintf(&b, "\n      %s", usage)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&b, " Default: %s.", fl.DefValue)
		}
		b.WriteString("\n\n")
	})

	return strings.TrimRight(b.String(), "\n")
}
