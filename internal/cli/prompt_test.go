package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlwaysYes(t *testing.T) {
	ok, err := AlwaysYes()("Delete this session?")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPromptKitFor(t *testing.T) {
	kit := promptKitFor(true)
	assert.Nil(t, kit.Prompt)
	assert.Nil(t, kit.Confirm)
	assert.Nil(t, kit.Select)

	kit = promptKitFor(false)
	assert.NotNil(t, kit.Prompt)
	assert.NotNil(t, kit.Confirm)
	assert.NotNil(t, kit.Select)
}
