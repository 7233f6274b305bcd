package driven

import (
	"context"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// ResourceStore persists resources and their chunks.
// Backed by SQLite for metadata storage.
type ResourceStore interface {
	// SaveResource writes the resource and all of its chunks in one transaction.
	// Chunk IDs are assigned by the store and written back into chunks.
	SaveResource(ctx context.Context, res *domain.Resource, chunks []domain.Chunk) error

	// GetResource retrieves a resource by ID.
	GetResource(ctx context.Context, id string) (*domain.Resource, error)

	// ListResources returns resources newest first, optionally filtered by type.
	ListResources(ctx context.Context, resourceType domain.ResourceType, limit int) ([]domain.Resource, error)

	// GetChunks retrieves all chunks for a resource ordered by position.
	GetChunks(ctx context.Context, resourceID string) ([]domain.Chunk, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id int64) (*domain.Chunk, error)

	// ResolveVectorIDs maps vector ids to chunks with resource metadata.
	// Ids with no chunk are absent from the returned map.
	ResolveVectorIDs(ctx context.Context, vectorIDs []int64) (map[int64]domain.ResolvedChunk, error)

	// ExistingChunkIDs returns the subset of ids that exist.
	ExistingChunkIDs(ctx context.Context, ids []int64) ([]int64, error)

	// DeleteResource removes the resource, its chunks, and links to those chunks
	// in one transaction. Returns the vector ids of the removed chunks and
	// whether a resource was removed.
	DeleteResource(ctx context.Context, id string) ([]int64, bool, error)

	// DeleteChunk removes one chunk and its links.
	// Returns the removed chunk's vector id and whether it existed.
	DeleteChunk(ctx context.Context, id int64) (int64, bool, error)

	// ChunkVectorIDs returns chunk id to vector id for every stored chunk.
	ChunkVectorIDs(ctx context.Context) (map[int64]int64, error)
}
