package base

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringEnvVar(t *testing.T) {
	t.Setenv("DROPINBLOG_TEST_CONFIG", "from-env.hcl")

	var config, other string
	f := NewFlagSet(flag.NewFlagSet("test", flag.ContinueOnError))
	f.StringEnvVar(&config, "config", "DROPINBLOG_TEST_CONFIG", "", "Path to config file.")
	f.StringEnvVar(&other, "other", "DROPINBLOG_TEST_UNSET", "fallback", "Other value.")

	require.NoError(t, f.Parse(nil))
	assert.Equal(t, "from-env.hcl", config)
	assert.Equal(t, "fallback", other)

	require.NoError(t, f.Parse([]string{"-config", "flag.hcl"}))
	assert.Equal(t, "flag.hcl", config)
}

func TestHelp(t *testing.T) {
	var addr string
	var verbose bool
	f := NewFlagSet(flag.NewFlagSet("test", flag.ContinueOnError))
	f.StringVar(&addr, "addr", ":8000", "Listen `address`.")
	f.BoolVar(&verbose, "verbose", false, "Log more.")

	help := f.Help()
	assert.Contains(t, help, "-addr=<address>")
	assert.Contains(t, help, "Default: :8000.")
	assert.Contains(t, help, "-verbose\n      Log more.")
}
