package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

// resourceStore implements driven.ResourceStore.
type resourceStore struct {
	store *Store
}

var _ driven.ResourceStore = (*resourceStore)(nil)

// SaveResource stores a resource and its chunks in one transaction.
func (s *resourceStore) SaveResource(ctx context.Context, res *domain.Resource, chunks []domain.Chunk) error {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	res.ChunkCount = len(chunks)

	tx, err := s.store.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO resources (id, name, type, chunk_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, res.ID, res.Name, string(res.Type), res.ChunkCount, res.CreatedAt)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("%w: resource %s already exists or has an invalid type", domain.ErrValidation, res.ID)
		}
		return fmt.Errorf("saving resource: %w", Classify(err))
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (resource_id, position, content, vector_id)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", Classify(err))
	}
	defer stmt.Close()

	for i := range chunks {
		chunks[i].ResourceID = res.ID
		result, err := stmt.ExecContext(ctx, res.ID, chunks[i].Position, chunks[i].Content, chunks[i].VectorID)
		if err != nil {
			if isConstraint(err) {
				return fmt.Errorf("%w: vector id %d already assigned to another chunk",
					domain.ErrConsistency, chunks[i].VectorID)
			}
			return fmt.Errorf("saving chunk: %w", Classify(err))
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading chunk id: %w", err)
		}
		chunks[i].ID = id
	}

	return commitTx(tx)
}

// GetResource retrieves a resource by ID.
func (s *resourceStore) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, type, chunk_count, created_at
		FROM resources WHERE id = ?
	`, id)

	var res domain.Resource
	var resourceType string
	if err := row.Scan(&res.ID, &res.Name, &resourceType, &res.ChunkCount, &res.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning resource: %w", Classify(err))
	}
	res.Type = domain.ResourceType(resourceType)

	return &res, nil
}

// ListResources returns resources newest first, optionally filtered by type.
func (s *resourceStore) ListResources(
	ctx context.Context,
	resourceType domain.ResourceType,
	limit int,
) ([]domain.Resource, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, type, chunk_count, created_at
		FROM resources
		WHERE (? = '' OR type = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, string(resourceType), string(resourceType), limit)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", Classify(err))
	}
	defer rows.Close()

	var resources []domain.Resource //nolint:prealloc // size unknown from query
	for rows.Next() {
		var res domain.Resource
		var rt string
		if err := rows.Scan(&res.ID, &res.Name, &rt, &res.ChunkCount, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		res.Type = domain.ResourceType(rt)
		resources = append(resources, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resources: %w", Classify(err))
	}

	return resources, nil
}

// GetChunks retrieves all chunks for a resource.
func (s *resourceStore) GetChunks(ctx context.Context, resourceID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, resource_id, position, content, vector_id
		FROM chunks WHERE resource_id = ?
		ORDER BY position
	`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", Classify(err))
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.ResourceID, &c.Position, &c.Content, &c.VectorID); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", Classify(err))
	}

	return chunks, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *resourceStore) GetChunk(ctx context.Context, id int64) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, resource_id, position, content, vector_id
		FROM chunks WHERE id = ?
	`, id)

	var c domain.Chunk
	if err := row.Scan(&c.ID, &c.ResourceID, &c.Position, &c.Content, &c.VectorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", Classify(err))
	}

	return &c, nil
}

// ResolveVectorIDs maps vector ids to chunks joined with their resource.
func (s *resourceStore) ResolveVectorIDs(
	ctx context.Context,
	vectorIDs []int64,
) (map[int64]domain.ResolvedChunk, error) {
	resolved := make(map[int64]domain.ResolvedChunk, len(vectorIDs))

	for _, batch := range batches(vectorIDs) {
		rows, err := s.store.db.QueryContext(ctx, `
			SELECT c.vector_id, c.id, c.resource_id, r.name, r.type, c.position, c.content
			FROM chunks c
			JOIN resources r ON r.id = c.resource_id
			WHERE c.vector_id IN (`+placeholders(len(batch))+`)
		`, int64Args(batch)...)
		if err != nil {
			return nil, fmt.Errorf("resolving vector ids: %w", Classify(err))
		}

		for rows.Next() {
			var rc domain.ResolvedChunk
			var rt string
			if err := rows.Scan(&rc.VectorID, &rc.ChunkID, &rc.ResourceID, &rc.ResourceName,
				&rt, &rc.Position, &rc.Content); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning resolved chunk: %w", err)
			}
			rc.Type = domain.ResourceType(rt)
			resolved[rc.VectorID] = rc
		}

		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterating resolved chunks: %w", Classify(err))
		}
	}

	return resolved, nil
}

// ExistingChunkIDs returns the subset of ids that exist, ascending.
func (s *resourceStore) ExistingChunkIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var existing []int64

	for _, batch := range batches(ids) {
		rows, err := s.store.db.QueryContext(ctx,
			`SELECT id FROM chunks WHERE id IN (`+placeholders(len(batch))+`) ORDER BY id`,
			int64Args(batch)...)
		if err != nil {
			return nil, fmt.Errorf("querying chunk ids: %w", Classify(err))
		}

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning chunk id: %w", err)
			}
			existing = append(existing, id)
		}

		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterating chunk ids: %w", Classify(err))
		}
	}

	return existing, nil
}

// DeleteResource removes a resource; chunks and their links cascade.
func (s *resourceStore) DeleteResource(ctx context.Context, id string) ([]int64, bool, error) {
	tx, err := s.store.beginTx(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx, "SELECT vector_id FROM chunks WHERE resource_id = ? ORDER BY position", id)
	if err != nil {
		return nil, false, fmt.Errorf("querying chunk vectors: %w", Classify(err))
	}
	var vectorIDs []int64
	for rows.Next() {
		var vid int64
		if err := rows.Scan(&vid); err != nil {
			rows.Close()
			return nil, false, fmt.Errorf("scanning vector id: %w", err)
		}
		vectorIDs = append(vectorIDs, vid)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, false, fmt.Errorf("iterating chunk vectors: %w", Classify(err))
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", id)
	if err != nil {
		return nil, false, fmt.Errorf("deleting resource: %w", Classify(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("reading affected rows: %w", err)
	}

	if err := commitTx(tx); err != nil {
		return nil, false, err
	}
	return vectorIDs, affected > 0, nil
}

// DeleteChunk removes a chunk; its links cascade.
func (s *resourceStore) DeleteChunk(ctx context.Context, id int64) (int64, bool, error) {
	tx, err := s.store.beginTx(ctx)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback() //nolint:errcheck

	var vectorID int64
	var resourceID string
	err = tx.QueryRowContext(ctx, "SELECT vector_id, resource_id FROM chunks WHERE id = ?", id).
		Scan(&vectorID, &resourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying chunk: %w", Classify(err))
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE id = ?", id); err != nil {
		return 0, false, fmt.Errorf("deleting chunk: %w", Classify(err))
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE resources SET chunk_count = chunk_count - 1 WHERE id = ?", resourceID); err != nil {
		return 0, false, fmt.Errorf("updating chunk count: %w", Classify(err))
	}

	if err := commitTx(tx); err != nil {
		return 0, false, err
	}
	return vectorID, true, nil
}

// ChunkVectorIDs returns chunk id to vector id for every chunk.
func (s *resourceStore) ChunkVectorIDs(ctx context.Context) (map[int64]int64, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT id, vector_id FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("querying chunk vectors: %w", Classify(err))
	}
	defer rows.Close()

	out := make(map[int64]int64)
	for rows.Next() {
		var chunkID, vectorID int64
		if err := rows.Scan(&chunkID, &vectorID); err != nil {
			return nil, fmt.Errorf("scanning chunk vector: %w", err)
		}
		out[chunkID] = vectorID
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk vectors: %w", Classify(err))
	}
	return out, nil
}
