package driven

import "context"

// LinkStore persists context links between messages and chunks.
type LinkStore interface {
	// AddLinks inserts one link per chunk id, ignoring pairs that already exist.
	// Returns the number of links created.
	AddLinks(ctx context.Context, messageID string, chunkIDs []int64) (int, error)

	// ChunksForMessage returns linked chunk ids in ascending order.
	ChunksForMessage(ctx context.Context, messageID string) ([]int64, error)

	// MessagesForChunk returns ids of messages linked to the chunk.
	MessagesForChunk(ctx context.Context, chunkID int64) ([]string, error)

	// UsageCounts returns the number of distinct messages linked to each chunk.
	UsageCounts(ctx context.Context) (map[int64]int, error)

	// UnlinkedChunks returns up to limit chunk ids with no links, ascending.
	UnlinkedChunks(ctx context.Context, limit int) ([]int64, error)

	// DeleteLinksForMessage removes every link of the message.
	// Returns the number of links removed.
	DeleteLinksForMessage(ctx context.Context, messageID string) (int, error)
}
