package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/dropinblog/internal/cmd/base"
	"github.com/hashicorp-forge/dropinblog/internal/cmd/commands/describe"
)

func TestEveryCommandHasHelp(t *testing.T) {
	for name, factory := range Commands(hclog.NewNullLogger(), cli.NewMockUi()) {
		c, err := factory()
		require.NoError(t, err, name)
		assert.NotEmpty(t, c.Synopsis(), name)
		assert.Contains(t, c.Help(), "Usage: dropinblog", name)
	}
}

func TestDescribeCommand(t *testing.T) {
	ui := cli.NewMockUi()
	b := base.NewCommand(hclog.NewNullLogger(), ui)
	var out bytes.Buffer
	b.Stdout = &out

	c := &describe.Command{Command: b}
	require.Equal(t, 0, c.Run([]string{"dropInBlogTrigger"}))

	var descriptors []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &descriptors))
	require.Len(t, descriptors, 1)
	assert.Equal(t, "dropInBlogTrigger", descriptors[0]["name"])

	assert.Equal(t, 1, c.Run([]string{"unknown"}))
	assert.Contains(t, ui.ErrorWriter.String(), "unknown node")
}
