package driven

import (
	"context"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// VectorIndex provides nearest-neighbour search over embeddings keyed by
// an opaque integer vector id.
//
// Implementations must persist every mutation before returning and must never
// reuse a vector id, even after the entry has been deleted.
type VectorIndex interface {
	// Insert allocates the next vector id and stores the embedding under it.
	Insert(ctx context.Context, embedding []float32) (int64, error)

	// Delete removes a vector from the index. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id int64) error

	// Search finds up to k nearest neighbours ordered by descending similarity.
	// An empty index yields an empty slice, not an error.
	Search(ctx context.Context, query []float32, k int) ([]domain.VectorHit, error)

	// Contains reports whether the id is present.
	Contains(id int64) bool

	// IDs returns every stored vector id in ascending order.
	IDs() []int64

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the vector size the index accepts.
	Dimensions() int

	// Close releases resources.
	Close() error
}
