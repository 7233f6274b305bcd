package driving

import "context"

// ContextService records and queries which chunks informed which messages.
type ContextService interface {
	// Link records that a message used the given chunks.
	// Returns the number of new links; existing pairs are left untouched.
	Link(ctx context.Context, messageID string, chunkIDs []int64) (int, error)

	// LinksForMessage returns the chunk ids linked to a message.
	LinksForMessage(ctx context.Context, messageID string) ([]int64, error)

	// MessagesForChunk returns the message ids linked to a chunk.
	MessagesForChunk(ctx context.Context, chunkID int64) ([]string, error)

	// UsageStatistics returns, per chunk, the number of distinct messages using it.
	UsageStatistics(ctx context.Context) (map[int64]int, error)

	// UnusedChunks returns chunk ids no message has linked, up to limit.
	UnusedChunks(ctx context.Context, limit int) ([]int64, error)

	// DeleteLinksForMessage removes all links of a message.
	DeleteLinksForMessage(ctx context.Context, messageID string) (int, error)
}
