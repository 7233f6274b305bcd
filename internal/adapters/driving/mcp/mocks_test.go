package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/ltmc/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/ltmc/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ltmc/internal/chunker"
	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
	"github.com/custodia-labs/ltmc/internal/core/services"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits      []domain.VectorHit
	retrieved []domain.RetrievedChunk
	lastTopK  int
	err       error
}

func (m *mockSearchService) Search(_ context.Context, _ string, topK int) ([]domain.VectorHit, error) {
	m.lastTopK = topK
	return m.hits, m.err
}

func (m *mockSearchService) SearchVector(_ context.Context, _ []float32, topK int) ([]domain.VectorHit, error) {
	m.lastTopK = topK
	return m.hits, m.err
}

func (m *mockSearchService) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievedChunk, error) {
	m.lastTopK = topK
	return m.retrieved, m.err
}

// mockResourceService is a mock implementation of driving.ResourceService.
type mockResourceService struct {
	resources []domain.Resource
	content   string
	resolved  *domain.ResolveResult
	lastStore driving.StoreRequest
	err       error
}

func (m *mockResourceService) Store(_ context.Context, req driving.StoreRequest) (*domain.Resource, error) {
	m.lastStore = req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Resource{ID: "res-1", Name: req.Name, Type: req.Type, ChunkCount: 2}, nil
}

func (m *mockResourceService) Get(_ context.Context, _ string) (*domain.Resource, error) {
	if len(m.resources) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.resources[0], m.err
}

func (m *mockResourceService) List(_ context.Context, _ driving.ListOptions) ([]domain.Resource, error) {
	return m.resources, m.err
}

func (m *mockResourceService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockResourceService) Content(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockResourceService) ResolveChunks(_ context.Context, _ []int64) (*domain.ResolveResult, error) {
	return m.resolved, m.err
}

func (m *mockResourceService) Delete(_ context.Context, _ string) (bool, error) {
	return m.err == nil, m.err
}

func (m *mockResourceService) DeleteChunk(_ context.Context, _ int64) (bool, error) {
	return m.err == nil, m.err
}

func (m *mockResourceService) CheckConsistency(_ context.Context) (*domain.ConsistencyReport, error) {
	return &domain.ConsistencyReport{}, m.err
}

func (m *mockResourceService) Repair(_ context.Context) (*domain.ConsistencyReport, error) {
	return &domain.ConsistencyReport{}, m.err
}

// newMemoryPorts wires real services over in-memory storage.
func newMemoryPorts() *Ports {
	const dims = 64
	store := memory.NewStore()
	embedder := hash.NewEmbeddingService(dims)
	index := memory.NewVectorIndex(dims)

	return &Ports{
		Resource: services.NewResourceService(store.ResourceStore(), index, embedder,
			chunker.NewParagraph(chunker.WithChunkSize(200)), time.Second),
		Search:  services.NewSearchService(store.ResourceStore(), index, embedder, 5, time.Second),
		Context: services.NewContextService(store.LinkStore(), store.ResourceStore(), store.ChatLog(), time.Second),
		Chat:    services.NewChatService(store.ChatLog(), time.Second),
	}
}
