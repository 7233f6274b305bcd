package driving

import (
	"context"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// StoreRequest carries the input of a store operation.
type StoreRequest struct {
	// Name is the logical name, e.g. "notes.md".
	Name string

	// Content is the full text to ingest. Must not be blank.
	Content string

	// Type is the content kind.
	Type domain.ResourceType
}

// ListOptions filters resource listings.
type ListOptions struct {
	// Type restricts results to one resource type. Empty lists all types.
	Type domain.ResourceType

	// Limit caps the number of results. Zero means no limit.
	Limit int
}

// ResourceService ingests, resolves and deletes resources.
type ResourceService interface {
	// Store chunks, embeds and persists content.
	Store(ctx context.Context, req StoreRequest) (*domain.Resource, error)

	// Get retrieves a resource by ID.
	Get(ctx context.Context, resourceID string) (*domain.Resource, error)

	// List returns stored resources, newest first.
	List(ctx context.Context, opts ListOptions) ([]domain.Resource, error)

	// Chunks returns the chunks of a resource ordered by position.
	Chunks(ctx context.Context, resourceID string) ([]domain.Chunk, error)

	// Content reassembles a resource's text from its chunks.
	Content(ctx context.Context, resourceID string) (string, error)

	// ResolveChunks maps vector ids to chunk metadata, reporting missing ids.
	ResolveChunks(ctx context.Context, vectorIDs []int64) (*domain.ResolveResult, error)

	// Delete removes a resource and everything derived from it.
	// Returns false when the resource did not exist.
	Delete(ctx context.Context, resourceID string) (bool, error)

	// DeleteChunk removes a single chunk, its vector and its links.
	DeleteChunk(ctx context.Context, chunkID int64) (bool, error)

	// CheckConsistency compares the resource store with the vector index.
	CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error)

	// Repair deletes orphaned vectors and returns the report taken before repair.
	Repair(ctx context.Context) (*domain.ConsistencyReport, error)
}
