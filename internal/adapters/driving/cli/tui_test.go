package cli

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUI_RequiresServices(t *testing.T) {
	SetServices(&Services{})
	defer resetFlags()

	_, err := execute(t, "tui")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestNewTUIApp(t *testing.T) {
	setupTestServices(t)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	app, err := newTUIApp(cmd)

	require.NoError(t, err)
	assert.False(t, app.Ready())
}
