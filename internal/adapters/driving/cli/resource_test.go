package cli

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

const twoParagraphs = "The first paragraph is about deployment.\n\n" +
	"The second paragraph is about rollback and is long enough to need its own chunk. " +
	"It keeps going so the paragraph chunker cannot pack it together with the first one at all."

func TestResourceListCmd(t *testing.T) {
	s := setupTestServices(t)
	storeFixture(t, s, "a.md", "alpha")
	storeFixture(t, s, "b.md", "beta")

	out, err := execute(t, "resource", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "a.md")
	assert.Contains(t, out, "b.md")
}

func TestResourceListCmd_Filters(t *testing.T) {
	s := setupTestServices(t)
	storeFixture(t, s, "a.md", "alpha")

	out, err := execute(t, "resource", "list", "--type", "code", "--json")
	require.NoError(t, err)
	var list []domain.Resource
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Empty(t, list)

	_, err = execute(t, "resource", "list", "--type", "video")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResourceListCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "resource", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No resources stored.")
}

func TestResourceGetCmd(t *testing.T) {
	s := setupTestServices(t)
	res := storeFixture(t, s, "notes.md", twoParagraphs)
	require.Equal(t, 2, res.ChunkCount)

	out, err := execute(t, "resource", "get", res.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "notes.md")
	assert.Contains(t, out, "POS")
	assert.Contains(t, out, "The first paragraph is about deployment.")
}

func TestResourceGetCmd_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "resource", "get", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResourceContentCmd(t *testing.T) {
	s := setupTestServices(t)
	res := storeFixture(t, s, "notes.md", twoParagraphs)

	out, err := execute(t, "resource", "content", res.ID)
	require.NoError(t, err)
	assert.Equal(t, twoParagraphs+"\n", out)
}

func TestResourceDeleteCmd(t *testing.T) {
	s := setupTestServices(t)
	res := storeFixture(t, s, "notes.md", "alpha")

	out, err := execute(t, "resource", "delete", res.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted resource")

	_, err = execute(t, "resource", "delete", res.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChunkDeleteCmd(t *testing.T) {
	s := setupTestServices(t)
	res := storeFixture(t, s, "notes.md", twoParagraphs)
	chunks, err := s.Resource.Chunks(t.Context(), res.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	_, err = execute(t, "chunk", "delete", strconv.FormatInt(chunks[0].ID, 10))
	require.NoError(t, err)

	remaining, err := s.Resource.Chunks(t.Context(), res.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	_, err = execute(t, "chunk", "delete", "abc")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = execute(t, "chunk", "delete", strconv.FormatInt(chunks[0].ID, 10))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveCmd(t *testing.T) {
	s := setupTestServices(t)
	res := storeFixture(t, s, "notes.md", twoParagraphs)
	chunks, err := s.Resource.Chunks(t.Context(), res.ID)
	require.NoError(t, err)

	out, err := execute(t, "resolve", strconv.FormatInt(chunks[1].VectorID, 10), "999999", "--json")
	require.NoError(t, err)

	var result domain.ResolveResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, chunks[1].ID, result.Chunks[0].ChunkID)
	assert.Equal(t, []int64{999999}, result.Missing)
}

func TestResolveCmd_Table(t *testing.T) {
	s := setupTestServices(t)
	res := storeFixture(t, s, "notes.md", "alpha")
	chunks, err := s.Resource.Chunks(t.Context(), res.ID)
	require.NoError(t, err)

	out, err := execute(t, "resolve", strconv.FormatInt(chunks[0].VectorID, 10), "424242")
	require.NoError(t, err)
	assert.Contains(t, out, "notes.md")
	assert.Contains(t, out, "Missing: 424242")
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", "22", "333"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 22, 333}, ids)

	_, err = parseIDs([]string{"1", "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, "1, 22, 333", joinIDs(ids))
	assert.Empty(t, joinIDs(nil))
}
