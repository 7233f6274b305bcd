package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

func TestStoreCmd_Content(t *testing.T) {
	s := setupTestServices(t)

	out, err := execute(t, "store", "--name", "plan", "--type", "todo", "--content", "ship the release")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored")
	assert.Contains(t, out, "(plan, 1 chunks)")

	list, err := s.Resource.List(t.Context(), driving.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.ResourceTypeTodo, list[0].Type)
}

func TestStoreCmd_File(t *testing.T) {
	s := setupTestServices(t)

	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644))

	out, err := execute(t, "store", path, "--json")
	require.NoError(t, err)

	var res domain.Resource
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "main.go", res.Name)
	assert.Equal(t, domain.ResourceTypeCode, res.Type)

	content, err := s.Resource.Content(t.Context(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc main() {}", content)
}

func TestStoreCmd_FileExtractsHTML(t *testing.T) {
	s := setupTestServices(t)

	path := filepath.Join(t.TempDir(), "runbook.html")
	require.NoError(t, os.WriteFile(path,
		[]byte("<html><head><title>Runbook</title></head><body><p>Restart the &amp; queue</p></body></html>"), 0o644))

	out, err := execute(t, "store", path, "--json")
	require.NoError(t, err)

	var res domain.Resource
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	content, err := s.Resource.Content(t.Context(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Runbook\n\nRestart the & queue", content)
}

func TestStoreCmd_FileNotText(t *testing.T) {
	setupTestServices(t)

	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644))

	_, err := execute(t, "store", path)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStoreCmd_Stdin(t *testing.T) {
	setupTestServices(t)

	rootCmd.SetIn(strings.NewReader("from a pipe"))
	out, err := execute(t, "store", "-", "--name", "piped")
	require.NoError(t, err)
	assert.Contains(t, out, "(piped, 1 chunks)")
}

func TestStoreCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no input", args: []string{"store"}},
		{name: "file and content", args: []string{"store", "a.md", "--content", "x"}},
		{name: "blank content", args: []string{"store", "--name", "x", "--content", "   "}},
		{name: "unknown type", args: []string{"store", "--type", "video", "--content", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestServices(t)
			_, err := execute(t, tt.args...)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestStoreCmd_MissingFile(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "store", filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
