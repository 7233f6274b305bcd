package domain

// VectorHit is a single nearest-neighbour result.
type VectorHit struct {
	// VectorID is the matched vector.
	VectorID int64

	// Score is the cosine similarity (-1 to 1, higher is closer).
	Score float64
}

// ResolvedChunk is a chunk together with its resource metadata.
type ResolvedChunk struct {
	VectorID     int64
	ChunkID      int64
	ResourceID   string
	ResourceName string
	Type         ResourceType
	Position     int
	Content      string
}

// ResolveResult is the outcome of resolving a batch of vector ids.
// Unknown ids are reported in Missing rather than failing the batch.
type ResolveResult struct {
	// Chunks holds resolved entries in request order.
	Chunks []ResolvedChunk

	// Missing lists requested vector ids with no corresponding chunk.
	Missing []int64
}

// RetrievedChunk is a search hit resolved to its chunk.
type RetrievedChunk struct {
	ResolvedChunk
	Score float64
}

// ConsistencyReport describes disagreement between the resource store
// and the vector index.
type ConsistencyReport struct {
	// OrphanedVectors are index entries no chunk references.
	OrphanedVectors []int64

	// DanglingChunks are chunks whose vector id is absent from the index.
	DanglingChunks []int64

	// ChunkCount and VectorCount are the totals inspected.
	ChunkCount  int
	VectorCount int
}

// Consistent returns true if no violations were found.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.OrphanedVectors) == 0 && len(r.DanglingChunks) == 0
}
