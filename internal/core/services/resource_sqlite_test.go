package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/ltmc/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ltmc/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/ltmc/internal/chunker"
	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

// newSQLiteService builds a resource service over on-disk SQLite stores.
func newSQLiteService(t *testing.T) (*ResourceService, *flat.Index) {
	t.Helper()
	dir := t.TempDir()

	store, err := sqlite.NewStore(dir)
	require.NoError(t, err)
	index, err := flat.New(filepath.Join(dir, "vectors.db"), testDims)
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		store.Close()
	})

	svc := NewResourceService(
		store.ResourceStore(),
		index,
		hash.NewEmbeddingService(testDims),
		chunker.NewParagraph(chunker.WithChunkSize(40)),
		10*time.Second,
	)
	return svc, index
}

func TestResourceService_SQLiteConcurrentStoreAndDelete(t *testing.T) {
	svc, index := newSQLiteService(t)
	ctx := context.Background()

	const workers = 20
	existing := make([]*domain.Resource, 2*workers)
	for i := range existing {
		res, err := svc.Store(ctx, driving.StoreRequest{
			Name:    fmt.Sprintf("old-%d", i),
			Content: threeParagraphs,
			Type:    domain.ResourceTypeDocument,
		})
		require.NoError(t, err)
		existing[i] = res
	}

	// The second half loses one chunk each instead of the whole resource.
	chunkIDs := make([]int64, workers)
	for i := range chunkIDs {
		chunks, err := svc.Chunks(ctx, existing[workers+i].ID)
		require.NoError(t, err)
		chunkIDs[i] = chunks[0].ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, 3*workers)
	for i := 0; i < workers; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Store(ctx, driving.StoreRequest{
				Name:    fmt.Sprintf("new-%d", i),
				Content: threeParagraphs,
				Type:    domain.ResourceTypeDocument,
			})
			errs <- err
		}(i)
		go func(i int) {
			defer wg.Done()
			deleted, err := svc.Delete(ctx, existing[i].ID)
			if err == nil && !deleted {
				err = fmt.Errorf("resource %s was not deleted", existing[i].ID)
			}
			errs <- err
		}(i)
		go func(i int) {
			defer wg.Done()
			deleted, err := svc.DeleteChunk(ctx, chunkIDs[i])
			if err == nil && !deleted {
				err = fmt.Errorf("chunk %d was not deleted", chunkIDs[i])
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, driving.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 2*workers)
	assert.Equal(t, workers*3+workers*2, index.Len())

	report, err := svc.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.OrphanedVectors)
	assert.Empty(t, report.DanglingChunks)
}
