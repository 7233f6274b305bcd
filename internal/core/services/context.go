package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
	"github.com/custodia-labs/ltmc/internal/logger"
)

// Ensure ContextService implements the interface.
var _ driving.ContextService = (*ContextService)(nil)

// ContextService records which chunks informed which conversation messages.
type ContextService struct {
	links   driven.LinkStore
	chunks  driven.ResourceStore
	chatLog driven.ChatLog
	timeout time.Duration
}

// NewContextService creates a new context service.
func NewContextService(
	links driven.LinkStore,
	chunks driven.ResourceStore,
	chatLog driven.ChatLog,
	timeout time.Duration,
) *ContextService {
	return &ContextService{
		links:   links,
		chunks:  chunks,
		chatLog: chatLog,
		timeout: timeout,
	}
}

// Link records that a message used the given chunks.
// The call is rejected as a whole if the message or any chunk is unknown.
func (s *ContextService) Link(ctx context.Context, messageID string, chunkIDs []int64) (int, error) {
	if strings.TrimSpace(messageID) == "" {
		return 0, fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}
	if len(chunkIDs) == 0 {
		return 0, fmt.Errorf("%w: at least one chunk id is required", domain.ErrValidation)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	exists, err := s.chatLog.MessageExists(ctx, messageID)
	if err != nil {
		return 0, fmt.Errorf("checking message: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: unknown message %s", domain.ErrValidation, messageID)
	}

	ids := dedupe(chunkIDs)
	existing, err := s.chunks.ExistingChunkIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("checking chunks: %w", err)
	}
	if unknown := missingIDs(ids, existing); len(unknown) > 0 {
		return 0, fmt.Errorf("%w: unknown chunks %v", domain.ErrValidation, unknown)
	}

	// A chunk deleted after the check is still rejected by the store.
	created, err := s.links.AddLinks(ctx, messageID, ids)
	if err != nil {
		return 0, fmt.Errorf("linking message %s: %w", messageID, err)
	}

	logger.Debug("Linked message %s to %d chunks (%d new)", messageID, len(chunkIDs), created)
	return created, nil
}

// LinksForMessage returns the chunk ids linked to a message in ascending order.
func (s *ContextService) LinksForMessage(ctx context.Context, messageID string) ([]int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.links.ChunksForMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// MessagesForChunk returns the ids of messages linked to a chunk.
func (s *ContextService) MessagesForChunk(ctx context.Context, chunkID int64) ([]string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.links.MessagesForChunk(ctx, chunkID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// UsageStatistics returns the number of distinct messages linked to each
// chunk. Chunks with no links are absent.
func (s *ContextService) UsageStatistics(ctx context.Context) (map[int64]int, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return s.links.UsageCounts(ctx)
}

// UnusedChunks returns chunk ids that no message has linked.
// A non-positive limit returns all of them.
func (s *ContextService) UnusedChunks(ctx context.Context, limit int) ([]int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.links.UnlinkedChunks(ctx, limit)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// DeleteLinksForMessage removes all links of a message and returns how many there were.
func (s *ContextService) DeleteLinksForMessage(ctx context.Context, messageID string) (int, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return s.links.DeleteLinksForMessage(ctx, messageID)
}

func dedupe(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 0
	for i, id := range out {
		if i == 0 || id != out[n-1] {
			out[n] = id
			n++
		}
	}
	return out[:n]
}

// missingIDs returns the ids in want that are absent from have.
// Both slices are ascending.
func missingIDs(want, have []int64) []int64 {
	var out []int64
	j := 0
	for _, id := range want {
		for j < len(have) && have[j] < id {
			j++
		}
		if j >= len(have) || have[j] != id {
			out = append(out, id)
		}
	}
	return out
}
