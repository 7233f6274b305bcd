package flat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/ltmc/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS vectors (
    id   INTEGER PRIMARY KEY,
    data BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS index_meta (
    key   TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);
`

const (
	metaNextID     = "next_id"
	metaDimensions = "dimensions"
)

// Index is an exact cosine-similarity index.
type Index struct {
	db        *sql.DB
	path      string
	dimension int

	nextID atomic.Int64
	closed atomic.Bool

	mu      sync.RWMutex
	vectors map[int64][]float32
}

// New creates or opens an index at path for vectors of the given dimension.
// Opening an existing index built for another dimension fails.
func New(path string, dimension int) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: index path cannot be empty", domain.ErrValidation)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", domain.ErrValidation)
	}

	db, err := sqlite.OpenDB(path)
	if err != nil {
		return nil, unavailable(err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", unavailable(err))
	}

	idx := &Index{
		db:        db,
		path:      path,
		dimension: dimension,
		vectors:   make(map[int64][]float32),
	}
	if err := idx.load(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) load() error {
	var stored int
	err := idx.db.QueryRow("SELECT value FROM index_meta WHERE key = ?", metaDimensions).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := idx.db.Exec("INSERT INTO index_meta (key, value) VALUES (?, ?)",
			metaDimensions, idx.dimension); err != nil {
			return fmt.Errorf("saving dimensions: %w", unavailable(err))
		}
	case err != nil:
		return fmt.Errorf("reading dimensions: %w", unavailable(err))
	case stored != idx.dimension:
		return fmt.Errorf("%w: index at %s holds %d-dimensional vectors, not %d",
			domain.ErrValidation, idx.path, stored, idx.dimension)
	}

	var next int64
	err = idx.db.QueryRow("SELECT value FROM index_meta WHERE key = ?", metaNextID).Scan(&next)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading next id: %w", unavailable(err))
	}

	rows, err := idx.db.Query("SELECT id, data FROM vectors")
	if err != nil {
		return fmt.Errorf("loading vectors: %w", unavailable(err))
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("scanning vector: %w", err)
		}
		vec := sqlite.DecodeVector(data)
		if len(vec) != idx.dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions", domain.ErrConsistency, id, len(vec))
		}
		idx.vectors[id] = vec
		if id >= next {
			next = id + 1
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading vectors: %w", unavailable(err))
	}

	if next < 1 {
		next = 1
	}
	idx.nextID.Store(next)
	return nil
}

// Insert stores embedding under a freshly allocated id.
func (idx *Index) Insert(ctx context.Context, embedding []float32) (int64, error) {
	if idx.closed.Load() {
		return 0, domain.ErrVectorIndexUnavailable
	}
	vec, err := idx.normalise(embedding)
	if err != nil {
		return 0, err
	}

	id := idx.nextID.Add(1) - 1

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", unavailable(err))
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "INSERT INTO vectors (id, data) VALUES (?, ?)",
		id, sqlite.EncodeVector(vec)); err != nil {
		return 0, fmt.Errorf("saving vector: %w", unavailable(err))
	}
	// Concurrent inserts may commit out of order; keep the highest.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = MAX(value, excluded.value)
	`, metaNextID, id+1); err != nil {
		return 0, fmt.Errorf("saving next id: %w", unavailable(err))
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing vector: %w", unavailable(err))
	}

	idx.mu.Lock()
	idx.vectors[id] = vec
	idx.mu.Unlock()

	return id, nil
}

// Delete removes a vector. Unknown ids are ignored.
func (idx *Index) Delete(ctx context.Context, id int64) error {
	if idx.closed.Load() {
		return domain.ErrVectorIndexUnavailable
	}
	if _, err := idx.db.ExecContext(ctx, "DELETE FROM vectors WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting vector: %w", unavailable(err))
	}

	idx.mu.Lock()
	delete(idx.vectors, id)
	idx.mu.Unlock()
	return nil
}

// Search returns up to k hits by descending cosine similarity.
// Equal scores are ordered by ascending vector id.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.VectorHit, error) {
	if idx.closed.Load() {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if k <= 0 {
		return []domain.VectorHit{}, nil
	}
	q, err := idx.normalise(query)
	if err != nil {
		return nil, err
	}

	idx.mu.RLock()
	hits := make([]domain.VectorHit, 0, len(idx.vectors))
	for id, vec := range idx.vectors {
		hits = append(hits, domain.VectorHit{VectorID: id, Score: dot(q, vec)})
	}
	idx.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

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
func (idx *Index) Contains(id int64) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.vectors[id]
	return ok
}

// IDs returns all stored ids in ascending order.
func (idx *Index) IDs() []int64 {
	idx.mu.RLock()
	ids := make([]int64, 0, len(idx.vectors))
	for id := range idx.vectors {
		ids = append(ids, id)
	}
	idx.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Dimensions returns the accepted vector size.
func (idx *Index) Dimensions() int {
	return idx.dimension
}

// Path returns the index file path.
func (idx *Index) Path() string {
	return idx.path
}

// Close releases the database handle. Later calls fail with
// domain.ErrVectorIndexUnavailable.
func (idx *Index) Close() error {
	if idx.closed.Swap(true) {
		return nil
	}
	return idx.db.Close()
}

// normalise validates the dimension and returns a unit-length copy.
func (idx *Index) normalise(v []float32) ([]float32, error) {
	if len(v) != idx.dimension {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d",
			domain.ErrValidation, idx.dimension, len(v))
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, fmt.Errorf("%w: vector must have a finite non-zero norm", domain.ErrValidation)
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
}
