package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

func seed(t *testing.T, s *Store) []domain.Chunk {
	t.Helper()
	ctx := context.Background()
	chunks := []domain.Chunk{
		{Position: 0, Content: "a", VectorID: 10},
		{Position: 1, Content: "b", VectorID: 11},
	}
	require.NoError(t, s.ResourceStore().SaveResource(ctx,
		&domain.Resource{ID: "r1", Name: "one", Type: domain.ResourceTypeCode}, chunks))
	require.NoError(t, s.ChatLog().SaveMessage(ctx,
		&domain.Message{ID: "m1", ConversationID: "c", Role: domain.RoleUser, Content: "hi"}))
	return chunks
}

func TestStore_ResourceLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	chunks := seed(t, s)

	assert.Equal(t, int64(1), chunks[0].ID)
	assert.Equal(t, "r1", chunks[1].ResourceID)

	res, err := s.ResourceStore().GetResource(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ChunkCount)

	resolved, err := s.ResourceStore().ResolveVectorIDs(ctx, []int64{11, 99})
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
	assert.Equal(t, "one", resolved[11].ResourceName)

	err = s.ResourceStore().SaveResource(ctx, &domain.Resource{ID: "r2", Type: domain.ResourceTypeCode},
		[]domain.Chunk{{VectorID: 10}})
	assert.ErrorIs(t, err, domain.ErrConsistency)

	err = s.ResourceStore().SaveResource(ctx, &domain.Resource{ID: "r1", Type: domain.ResourceTypeCode}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_DeleteCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	chunks := seed(t, s)

	n, err := s.LinkStore().AddLinks(ctx, "m1", []int64{chunks[0].ID, chunks[1].ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	vectorID, ok, err := s.ResourceStore().DeleteChunk(ctx, chunks[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(10), vectorID)

	ids, err := s.LinkStore().ChunksForMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []int64{chunks[1].ID}, ids)

	vectors, ok, err := s.ResourceStore().DeleteResource(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{11}, vectors)

	usage, err := s.LinkStore().UsageCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, usage)

	_, ok, err = s.ResourceStore().DeleteResource(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_LinksValidation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	chunks := seed(t, s)

	_, err := s.LinkStore().AddLinks(ctx, "nope", []int64{chunks[0].ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.LinkStore().AddLinks(ctx, "m1", []int64{chunks[0].ID, 999})
	assert.ErrorIs(t, err, domain.ErrValidation)

	ids, err := s.LinkStore().ChunksForMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	unlinked, err := s.LinkStore().UnlinkedChunks(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{chunks[0].ID}, unlinked)
}

func TestStore_DeleteMessageCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	chunks := seed(t, s)

	_, err := s.LinkStore().AddLinks(ctx, "m1", []int64{chunks[0].ID})
	require.NoError(t, err)

	ok, err := s.ChatLog().DeleteMessage(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, ok)

	msgs, err := s.LinkStore().MessagesForChunk(ctx, chunks[0].ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	history, err := s.ChatLog().ListMessages(ctx, "c", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestVectorIndex(t *testing.T) {
	idx := NewVectorIndex(2)
	ctx := context.Background()

	a, err := idx.Insert(ctx, []float32{1, 0})
	require.NoError(t, err)
	b, err := idx.Insert(ctx, []float32{0, 3})
	require.NoError(t, err)

	hits, err := idx.Search(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, b, hits[0].VectorID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)

	require.NoError(t, idx.Delete(ctx, b))
	assert.Equal(t, []int64{a}, idx.IDs())

	c, err := idx.Insert(ctx, []float32{1, 1})
	require.NoError(t, err)
	assert.Greater(t, c, b)

	_, err = idx.Insert(ctx, []float32{1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	idx.FailInsertAfter = 1
	_, err = idx.Insert(ctx, []float32{1, 0})
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}
