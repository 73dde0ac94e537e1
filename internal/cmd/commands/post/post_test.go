package post

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadItems(t *testing.T) {
	input := `{"operation":"get","parameters":{"blogId":"1","postIdentifier":"a"}}
{"operation":"search","parameters":{"blogId":"1","search":"go"}}
`
	items, err := ReadItems(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "get", items[0].Operation)
	assert.Equal(t, "go", items[1].Parameters["search"])

	items, err = ReadItems(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = ReadItems(strings.NewReader(`{"operation":`))
	assert.Error(t, err)
}
