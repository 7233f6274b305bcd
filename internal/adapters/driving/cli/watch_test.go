package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCmd_StopsWithContext(t *testing.T) {
	setupTestServices(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	out, err := executeContext(t, ctx, "watch", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Watching "+dir)
}

func TestWatchCmd_MissingDir(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "watch", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
