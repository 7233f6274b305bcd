package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
	"github.com/custodia-labs/ltmc/internal/logger"
)

// Ensure ResourceService implements the interface.
var _ driving.ResourceService = (*ResourceService)(nil)

// cleanupTimeout bounds best-effort vector removal after a failed or
// cancelled operation.
const cleanupTimeout = 5 * time.Second

// ResourceService ingests content into the resource store and vector index
// and keeps the two in agreement.
//
// Vectors are always written before the rows that reference them and removed
// after those rows are gone, so a committed chunk always has its vector.
// Failures in between leave orphaned vectors, which Repair removes.
type ResourceService struct {
	store    driven.ResourceStore
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	chunker  driven.Chunker
	timeout  time.Duration

	locks *keyedMutex

	// maintenance is held shared by mutations and exclusively by consistency
	// checks, so vectors of an in-flight Store are never seen as orphans.
	maintenance sync.RWMutex
}

// NewResourceService creates a new resource service.
// A zero timeout disables the per-operation deadline.
func NewResourceService(
	store driven.ResourceStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
	timeout time.Duration,
) *ResourceService {
	return &ResourceService{
		store:    store,
		index:    index,
		embedder: embedder,
		chunker:  chunker,
		timeout:  timeout,
		locks:    newKeyedMutex(),
	}
}

// Store chunks, embeds and persists content as a new resource.
func (s *ResourceService) Store(ctx context.Context, req driving.StoreRequest) (*domain.Resource, error) {
	if err := validateStoreRequest(req); err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	defer logger.Since("store", time.Now())

	s.maintenance.RLock()
	defer s.maintenance.RUnlock()

	res := &domain.Resource{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		CreatedAt: time.Now().UTC(),
	}
	texts := s.chunker.Split(req.Content)
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: content produced no chunks", domain.ErrValidation)
	}
	logger.Debug("Store %q: %d chunks (%s)", res.Name, len(texts), s.chunker.Name())

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding chunks: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingUnavailable, len(embeddings), len(texts))
	}

	vectorIDs := make([]int64, 0, len(embeddings))
	for _, emb := range embeddings {
		id, err := s.index.Insert(ctx, emb)
		if err != nil {
			s.removeVectors(ctx, vectorIDs)
			return nil, fmt.Errorf("inserting vector: %w", err)
		}
		vectorIDs = append(vectorIDs, id)
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ResourceID: res.ID,
			Position:   i,
			Content:    text,
			VectorID:   vectorIDs[i],
		}
	}

	if err := s.store.SaveResource(ctx, res, chunks); err != nil {
		s.removeVectors(ctx, vectorIDs)
		return nil, fmt.Errorf("saving resource: %w", err)
	}

	logger.Debug("Stored resource %s with vectors %v", res.ID, vectorIDs)
	return res, nil
}

// Get retrieves a resource by ID.
func (s *ResourceService) Get(ctx context.Context, resourceID string) (*domain.Resource, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.store.GetResource(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", resourceID, err)
	}
	return res, nil
}

// List returns stored resources, newest first.
func (s *ResourceService) List(ctx context.Context, opts driving.ListOptions) ([]domain.Resource, error) {
	if opts.Type != "" && !opts.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown resource type %q", domain.ErrValidation, opts.Type)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return s.store.ListResources(ctx, opts.Type, opts.Limit)
}

// Chunks returns the chunks of a resource ordered by position.
func (s *ResourceService) Chunks(ctx context.Context, resourceID string) ([]domain.Chunk, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.store.GetResource(ctx, resourceID); err != nil {
		return nil, fmt.Errorf("resource %s: %w", resourceID, err)
	}
	return s.store.GetChunks(ctx, resourceID)
}

// Content reassembles a resource's text by joining its chunks with blank lines.
func (s *ResourceService) Content(ctx context.Context, resourceID string) (string, error) {
	chunks, err := s.Chunks(ctx, resourceID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(chunk.Content)
	}
	return builder.String(), nil
}

// ResolveChunks maps vector ids to chunk metadata in request order.
// Ids with no chunk are reported in Missing. A chunk whose vector is absent
// from the index is a consistency violation and fails the call.
func (s *ResourceService) ResolveChunks(ctx context.Context, vectorIDs []int64) (*domain.ResolveResult, error) {
	result := &domain.ResolveResult{
		Chunks:  []domain.ResolvedChunk{},
		Missing: []int64{},
	}
	if len(vectorIDs) == 0 {
		return result, nil
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	resolved, err := s.store.ResolveVectorIDs(ctx, vectorIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving chunks: %w", err)
	}

	for _, id := range vectorIDs {
		rc, ok := resolved[id]
		if !ok {
			result.Missing = append(result.Missing, id)
			continue
		}
		if !s.index.Contains(id) {
			return nil, fmt.Errorf("%w: chunk %d references vector %d which is not in the index",
				domain.ErrConsistency, rc.ChunkID, id)
		}
		result.Chunks = append(result.Chunks, rc)
	}

	return result, nil
}

// Delete removes a resource, its chunks, their vectors and their context links.
// Deleting an unknown resource returns false and no error.
func (s *ResourceService) Delete(ctx context.Context, resourceID string) (bool, error) {
	if strings.TrimSpace(resourceID) == "" {
		return false, fmt.Errorf("%w: resource id is required", domain.ErrValidation)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	s.maintenance.RLock()
	defer s.maintenance.RUnlock()

	unlock := s.locks.Lock(resourceID)
	defer unlock()

	vectorIDs, removed, err := s.store.DeleteResource(ctx, resourceID)
	if err != nil {
		return false, fmt.Errorf("deleting resource: %w", err)
	}
	if !removed {
		return false, nil
	}

	s.removeVectors(ctx, vectorIDs)
	logger.Debug("Deleted resource %s and %d vectors", resourceID, len(vectorIDs))
	return true, nil
}

// DeleteChunk removes one chunk, its vector and its context links.
func (s *ResourceService) DeleteChunk(ctx context.Context, chunkID int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	s.maintenance.RLock()
	defer s.maintenance.RUnlock()

	chunk, err := s.store.GetChunk(ctx, chunkID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("chunk %d: %w", chunkID, err)
	}

	unlock := s.locks.Lock(chunk.ResourceID)
	defer unlock()

	vectorID, removed, err := s.store.DeleteChunk(ctx, chunkID)
	if err != nil {
		return false, fmt.Errorf("deleting chunk: %w", err)
	}
	if !removed {
		return false, nil
	}

	s.removeVectors(ctx, []int64{vectorID})
	return true, nil
}

// CheckConsistency compares the resource store with the vector index.
func (s *ResourceService) CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	s.maintenance.Lock()
	defer s.maintenance.Unlock()

	return s.consistencyReport(ctx)
}

// Repair deletes orphaned vectors and returns the report taken before repair.
// Dangling chunks cannot be repaired without their content's embedding and
// are reported as a consistency error alongside the report.
func (s *ResourceService) Repair(ctx context.Context) (*domain.ConsistencyReport, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	s.maintenance.Lock()
	defer s.maintenance.Unlock()

	report, err := s.consistencyReport(ctx)
	if err != nil {
		return nil, err
	}

	for _, id := range report.OrphanedVectors {
		if err := s.index.Delete(ctx, id); err != nil {
			return report, fmt.Errorf("removing orphaned vector %d: %w", id, err)
		}
	}
	if len(report.OrphanedVectors) > 0 {
		logger.Info("Removed %d orphaned vectors", len(report.OrphanedVectors))
	}

	if len(report.DanglingChunks) > 0 {
		return report, fmt.Errorf("%w: %d chunks reference missing vectors",
			domain.ErrConsistency, len(report.DanglingChunks))
	}
	return report, nil
}

func (s *ResourceService) consistencyReport(ctx context.Context) (*domain.ConsistencyReport, error) {
	chunkVectors, err := s.store.ChunkVectorIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chunk vectors: %w", err)
	}
	indexed := s.index.IDs()

	report := &domain.ConsistencyReport{
		OrphanedVectors: []int64{},
		DanglingChunks:  []int64{},
		ChunkCount:      len(chunkVectors),
		VectorCount:     len(indexed),
	}

	referenced := make(map[int64]struct{}, len(chunkVectors))
	for chunkID, vectorID := range chunkVectors {
		referenced[vectorID] = struct{}{}
		if !s.index.Contains(vectorID) {
			report.DanglingChunks = append(report.DanglingChunks, chunkID)
		}
	}
	sort.Slice(report.DanglingChunks, func(i, j int) bool {
		return report.DanglingChunks[i] < report.DanglingChunks[j]
	})

	for _, id := range indexed {
		if _, ok := referenced[id]; !ok {
			report.OrphanedVectors = append(report.OrphanedVectors, id)
		}
	}

	return report, nil
}

// removeVectors deletes vectors best-effort. It runs even when ctx is done;
// anything left behind is an orphan that Repair removes.
func (s *ResourceService) removeVectors(ctx context.Context, ids []int64) {
	if len(ids) == 0 {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	for _, id := range ids {
		if err := s.index.Delete(cleanupCtx, id); err != nil {
			logger.Warn("could not remove vector %d, run 'ltmc check --repair': %v", id, err)
		}
	}
}

func validateStoreRequest(req driving.StoreRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if !req.Type.IsValid() {
		return fmt.Errorf("%w: unknown resource type %q", domain.ErrValidation, req.Type)
	}
	return nil
}

// withTimeout bounds ctx by timeout. A non-positive timeout only adds cancellation.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
