package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

// linkStore implements driven.LinkStore.
type linkStore struct {
	store *Store
}

var _ driven.LinkStore = (*linkStore)(nil)

// AddLinks inserts links for a message in one transaction.
// A foreign key failure rolls back the whole batch.
func (l *linkStore) AddLinks(ctx context.Context, messageID string, chunkIDs []int64) (int, error) {
	tx, err := l.store.beginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO context_links (message_id, chunk_id, created_at)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", Classify(err))
	}
	defer stmt.Close()

	now := time.Now().UTC()
	created := 0
	for _, chunkID := range chunkIDs {
		result, err := stmt.ExecContext(ctx, messageID, chunkID, now)
		if err != nil {
			if isConstraint(err) {
				return 0, fmt.Errorf("%w: message %s or chunk %d does not exist",
					domain.ErrValidation, messageID, chunkID)
			}
			return 0, fmt.Errorf("saving link: %w", Classify(err))
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("reading affected rows: %w", err)
		}
		created += int(n)
	}

	if err := commitTx(tx); err != nil {
		return 0, err
	}
	return created, nil
}

// ChunksForMessage returns linked chunk ids in ascending order.
func (l *linkStore) ChunksForMessage(ctx context.Context, messageID string) ([]int64, error) {
	rows, err := l.store.db.QueryContext(ctx,
		"SELECT chunk_id FROM context_links WHERE message_id = ? ORDER BY chunk_id", messageID)
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", Classify(err))
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", Classify(err))
	}
	return ids, nil
}

// MessagesForChunk returns ids of messages linked to the chunk, oldest link first.
func (l *linkStore) MessagesForChunk(ctx context.Context, chunkID int64) ([]string, error) {
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT message_id FROM context_links
		WHERE chunk_id = ?
		ORDER BY created_at, message_id
	`, chunkID)
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", Classify(err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", Classify(err))
	}
	return ids, nil
}

// UsageCounts returns the number of distinct messages linked to each chunk.
// Chunks without links are absent.
func (l *linkStore) UsageCounts(ctx context.Context) (map[int64]int, error) {
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT chunk_id, COUNT(DISTINCT message_id)
		FROM context_links
		GROUP BY chunk_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying usage: %w", Classify(err))
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var chunkID int64
		var n int
		if err := rows.Scan(&chunkID, &n); err != nil {
			return nil, fmt.Errorf("scanning usage: %w", err)
		}
		counts[chunkID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage: %w", Classify(err))
	}
	return counts, nil
}

// UnlinkedChunks returns up to limit chunk ids that no message links to.
func (l *linkStore) UnlinkedChunks(ctx context.Context, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := l.store.db.QueryContext(ctx, `
		SELECT c.id FROM chunks c
		WHERE NOT EXISTS (SELECT 1 FROM context_links l WHERE l.chunk_id = c.id)
		ORDER BY c.id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unlinked chunks: %w", Classify(err))
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk ids: %w", Classify(err))
	}
	return ids, nil
}

// DeleteLinksForMessage removes every link of the message.
func (l *linkStore) DeleteLinksForMessage(ctx context.Context, messageID string) (int, error) {
	result, err := l.store.db.ExecContext(ctx, "DELETE FROM context_links WHERE message_id = ?", messageID)
	if err != nil {
		return 0, fmt.Errorf("deleting links: %w", Classify(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(n), nil
}
