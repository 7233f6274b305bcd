package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
	"github.com/custodia-labs/ltmc/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService provides semantic retrieval over the vector index.
type SearchService struct {
	store       driven.ResourceStore
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
	defaultTopK int
	timeout     time.Duration
}

// NewSearchService creates a new search service.
// defaultTopK is used when a caller passes a non-positive topK.
func NewSearchService(
	store driven.ResourceStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	defaultTopK int,
	timeout time.Duration,
) *SearchService {
	if defaultTopK <= 0 {
		defaultTopK = domain.DefaultAppSettings().Search.TopK
	}
	return &SearchService{
		store:       store,
		vectorIndex: vectorIndex,
		embedder:    embedder,
		defaultTopK: defaultTopK,
		timeout:     timeout,
	}
}

// Search embeds the query text and returns the nearest vectors.
func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]domain.VectorHit, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q, topK: %d", query, topK)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", domain.ErrEmbeddingUnavailable, err)
	}
	logger.Since("embed query", start)

	return s.search(ctx, embedding, topK)
}

// SearchVector returns the nearest vectors to a query embedding.
func (s *SearchService) SearchVector(ctx context.Context, query []float32, topK int) ([]domain.VectorHit, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return s.search(ctx, query, topK)
}

// Retrieve searches and resolves each hit to its chunk.
// Hits whose chunk was deleted after the search are skipped.
func (s *SearchService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	hits, err := s.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []domain.RetrievedChunk{}, nil
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ids := make([]int64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.VectorID
	}

	resolved, err := s.store.ResolveVectorIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving hits: %w", err)
	}

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		rc, ok := resolved[hit.VectorID]
		if !ok {
			logger.Debug("Skipping vector %d: no chunk references it", hit.VectorID)
			continue
		}
		results = append(results, domain.RetrievedChunk{ResolvedChunk: rc, Score: hit.Score})
	}

	return results, nil
}

func (s *SearchService) search(ctx context.Context, query []float32, topK int) ([]domain.VectorHit, error) {
	if s.vectorIndex == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	start := time.Now()
	hits, err := s.vectorIndex.Search(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("searching vectors: %w", err)
	}
	logger.Since("vector search", start)
	logger.Debug("Vector search returned %d hits", len(hits))

	return hits, nil
}
