package driving

import (
	"context"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// SearchService provides semantic retrieval to external actors.
type SearchService interface {
	// Search embeds the query text and returns the top-k nearest vectors.
	Search(ctx context.Context, query string, topK int) ([]domain.VectorHit, error)

	// SearchVector returns the top-k nearest vectors to a query embedding.
	SearchVector(ctx context.Context, query []float32, topK int) ([]domain.VectorHit, error)

	// Retrieve searches and resolves hits to their chunks.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
}
