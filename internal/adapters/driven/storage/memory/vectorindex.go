package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a non-persistent exact cosine index.
type VectorIndex struct {
	mu        sync.RWMutex
	dimension int
	nextID    int64
	vectors   map[int64][]float32

	// FailInsertAfter makes Insert fail once this many inserts have succeeded.
	// Zero disables the failure. Used to exercise rollback paths.
	FailInsertAfter int
	inserts         int
}

// NewVectorIndex creates an empty index for vectors of the given dimension.
func NewVectorIndex(dimension int) *VectorIndex {
	return &VectorIndex{
		dimension: dimension,
		nextID:    1,
		vectors:   make(map[int64][]float32),
	}
}

// Insert stores a unit-length copy of embedding.
func (v *VectorIndex) Insert(_ context.Context, embedding []float32) (int64, error) {
	vec, err := v.normalise(embedding)
	if err != nil {
		return 0, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.FailInsertAfter > 0 && v.inserts >= v.FailInsertAfter {
		return 0, fmt.Errorf("%w: injected insert failure", domain.ErrVectorIndexUnavailable)
	}
	id := v.nextID
	v.nextID++
	v.inserts++
	v.vectors[id] = vec
	return id, nil
}

// Delete removes id. Unknown ids are ignored.
func (v *VectorIndex) Delete(_ context.Context, id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.vectors, id)
	return nil
}

// Search returns up to k hits by descending similarity, ties by ascending id.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]domain.VectorHit, error) {
	if k <= 0 {
		return []domain.VectorHit{}, nil
	}
	q, err := v.normalise(query)
	if err != nil {
		return nil, err
	}

	v.mu.RLock()
	hits := make([]domain.VectorHit, 0, len(v.vectors))
	for id, vec := range v.vectors {
		var dot float64
		for i := range q {
			dot += float64(q[i]) * float64(vec[i])
		}
		hits = append(hits, domain.VectorHit{VectorID: id, Score: dot})
	}
	v.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].VectorID < hits[j].VectorID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Contains reports whether id is stored.
func (v *VectorIndex) Contains(id int64) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.vectors[id]
	return ok
}

// IDs returns stored ids ascending.
func (v *VectorIndex) IDs() []int64 {
	v.mu.RLock()
	ids := make([]int64, 0, len(v.vectors))
	for id := range v.vectors {
		ids = append(ids, id)
	}
	v.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of stored vectors.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.vectors)
}

// Dimensions returns the accepted vector size.
func (v *VectorIndex) Dimensions() int { return v.dimension }

// Close is a no-op.
func (v *VectorIndex) Close() error { return nil }

func (v *VectorIndex) normalise(in []float32) ([]float32, error) {
	if len(in) != v.dimension {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrValidation, v.dimension, len(in))
	}
	var sum float64
	for _, x := range in {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return nil, fmt.Errorf("%w: vector must have a non-zero norm", domain.ErrValidation)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(in))
	for i, x := range in {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}
