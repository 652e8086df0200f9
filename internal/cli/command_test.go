package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafCommandBuild(t *testing.T) {
	cmd := LeafCommand{
		Use:     "pause",
		Aliases: []string{"p"},
		Short:   "Pause the running session",
		Args:    cobra.NoArgs,
		BoolFlags: []BoolFlag{
			{Name: "no-prompt", Usage: "never prompt for input"},
			{Name: "quiet", Usage: "print nothing", Default: true},
		},
		StrFlags: []StringFlag{
			{Name: "reason", Usage: "why you are pausing", Default: "break"},
		},
		IntFlags: []IntFlag{
			{Name: "top", Usage: "how many rows", Default: 5},
		},
		RunE: func(cmd *cobra.Command, args []string) error { return nil },
	}.Build()

	assert.Equal(t, "pause", cmd.Use)
	assert.Equal(t, []string{"p"}, cmd.Aliases)
	assert.Equal(t, "Pause the running session", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	for name, def := range map[string]string{
		"no-prompt": "false",
		"quiet":     "true",
		"reason":    "break",
		"top":       "5",
	} {
		f := cmd.Flags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, def, f.DefValue, name)
	}
}

func TestLeafCommandBuildNoFlags(t *testing.T) {
	cmd := LeafCommand{
		Use:   "start",
		Short: "Start a study session",
		RunE:  func(cmd *cobra.Command, args []string) error { return nil },
	}.Build()

	assert.Equal(t, "start", cmd.Use)
	assert.Empty(t, cmd.Aliases)
	assert.False(t, cmd.HasFlags())
}

func TestGroupCommandBuild(t *testing.T) {
	cmd := GroupCommand{
		Use:     "backups",
		Aliases: []string{"snapshots"},
		Short:   "List or restore automatic snapshots",
		Subcommands: []*cobra.Command{
			{Use: "list"},
			{Use: "restore"},
		},
	}.Build()

	assert.Equal(t, "backups", cmd.Use)
	assert.Equal(t, []string{"snapshots"}, cmd.Aliases)
	assert.Nil(t, cmd.RunE)

	names := make([]string, len(cmd.Commands()))
	for i, c := range cmd.Commands() {
		names[i] = c.Name()
	}
	assert.ElementsMatch(t, []string{"list", "restore"}, names)
}
