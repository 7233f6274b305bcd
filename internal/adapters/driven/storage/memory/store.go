package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

// Store is an in-memory metadata store with the same cascade rules as the
// SQLite store. It backs service tests and the --ephemeral mode of the CLI.
type Store struct {
	mu          sync.RWMutex
	resources   map[string]domain.Resource
	order       []string // resource ids in insertion order
	chunks      map[int64]domain.Chunk
	byVector    map[int64]int64 // vector id -> chunk id
	messages    map[string]domain.Message
	msgOrder    []string
	links       map[string]map[int64]time.Time // message id -> chunk id -> created
	nextChunkID int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		resources:   make(map[string]domain.Resource),
		chunks:      make(map[int64]domain.Chunk),
		byVector:    make(map[int64]int64),
		messages:    make(map[string]domain.Message),
		links:       make(map[string]map[int64]time.Time),
		nextChunkID: 1,
	}
}

// ResourceStore returns a driven.ResourceStore view of the store.
func (s *Store) ResourceStore() driven.ResourceStore { return (*resourceStore)(s) }

// ChatLog returns a driven.ChatLog view of the store.
func (s *Store) ChatLog() driven.ChatLog { return (*chatLog)(s) }

// LinkStore returns a driven.LinkStore view of the store.
func (s *Store) LinkStore() driven.LinkStore { return (*linkStore)(s) }

// removeChunk deletes a chunk and its links (caller must hold lock).
func (s *Store) removeChunk(id int64) {
	c, ok := s.chunks[id]
	if !ok {
		return
	}
	delete(s.chunks, id)
	delete(s.byVector, c.VectorID)
	for _, set := range s.links {
		delete(set, id)
	}
}

// ==================== ResourceStore ====================

type resourceStore Store

var _ driven.ResourceStore = (*resourceStore)(nil)

func (r *resourceStore) SaveResource(_ context.Context, res *domain.Resource, chunks []domain.Chunk) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.resources[res.ID]; exists {
		return fmt.Errorf("%w: resource %s already exists", domain.ErrValidation, res.ID)
	}
	seen := make(map[int64]bool, len(chunks))
	for _, c := range chunks {
		if _, taken := s.byVector[c.VectorID]; taken || seen[c.VectorID] {
			return fmt.Errorf("%w: vector id %d already assigned to another chunk", domain.ErrConsistency, c.VectorID)
		}
		seen[c.VectorID] = true
	}

	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	res.ChunkCount = len(chunks)

	for i := range chunks {
		chunks[i].ID = s.nextChunkID
		chunks[i].ResourceID = res.ID
		s.nextChunkID++
		s.chunks[chunks[i].ID] = chunks[i]
		s.byVector[chunks[i].VectorID] = chunks[i].ID
	}
	s.resources[res.ID] = *res
	s.order = append(s.order, res.ID)
	return nil
}

func (r *resourceStore) GetResource(_ context.Context, id string) (*domain.Resource, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.resources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &res, nil
}

func (r *resourceStore) ListResources(_ context.Context, resourceType domain.ResourceType, limit int) ([]domain.Resource, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Resource
	for i := len(s.order) - 1; i >= 0; i-- {
		res, ok := s.resources[s.order[i]]
		if !ok || (resourceType != "" && res.Type != resourceType) {
			continue
		}
		out = append(out, res)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *resourceStore) GetChunks(_ context.Context, resourceID string) ([]domain.Chunk, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Chunk
	for _, c := range s.chunks {
		if c.ResourceID == resourceID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *resourceStore) GetChunk(_ context.Context, id int64) (*domain.Chunk, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *resourceStore) ResolveVectorIDs(_ context.Context, vectorIDs []int64) (map[int64]domain.ResolvedChunk, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]domain.ResolvedChunk, len(vectorIDs))
	for _, vid := range vectorIDs {
		cid, ok := s.byVector[vid]
		if !ok {
			continue
		}
		c := s.chunks[cid]
		res := s.resources[c.ResourceID]
		out[vid] = domain.ResolvedChunk{
			VectorID:     vid,
			ChunkID:      c.ID,
			ResourceID:   res.ID,
			ResourceName: res.Name,
			Type:         res.Type,
			Position:     c.Position,
			Content:      c.Content,
		}
	}
	return out, nil
}

func (r *resourceStore) ExistingChunkIDs(_ context.Context, ids []int64) ([]int64, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]bool)
	var out []int64
	for _, id := range ids {
		if _, ok := s.chunks[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *resourceStore) DeleteResource(_ context.Context, id string) ([]int64, bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[id]; !ok {
		return nil, false, nil
	}

	var owned []domain.Chunk
	for _, c := range s.chunks {
		if c.ResourceID == id {
			owned = append(owned, c)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Position < owned[j].Position })

	vectorIDs := make([]int64, 0, len(owned))
	for _, c := range owned {
		vectorIDs = append(vectorIDs, c.VectorID)
		s.removeChunk(c.ID)
	}
	delete(s.resources, id)
	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return vectorIDs, true, nil
}

func (r *resourceStore) DeleteChunk(_ context.Context, id int64) (int64, bool, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chunks[id]
	if !ok {
		return 0, false, nil
	}
	s.removeChunk(id)
	if res, ok := s.resources[c.ResourceID]; ok {
		res.ChunkCount--
		s.resources[c.ResourceID] = res
	}
	return c.VectorID, true, nil
}

func (r *resourceStore) ChunkVectorIDs(_ context.Context) (map[int64]int64, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]int64, len(s.chunks))
	for id, c := range s.chunks {
		out[id] = c.VectorID
	}
	return out, nil
}

// ==================== ChatLog ====================

type chatLog Store

var _ driven.ChatLog = (*chatLog)(nil)

func (c *chatLog) SaveMessage(_ context.Context, msg *domain.Message) error {
	s := (*Store)(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages[msg.ID]; exists {
		return fmt.Errorf("%w: message %s already exists", domain.ErrValidation, msg.ID)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.messages[msg.ID] = *msg
	s.msgOrder = append(s.msgOrder, msg.ID)
	return nil
}

func (c *chatLog) GetMessage(_ context.Context, id string) (*domain.Message, error) {
	s := (*Store)(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &msg, nil
}

func (c *chatLog) MessageExists(_ context.Context, id string) (bool, error) {
	s := (*Store)(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.messages[id]
	return ok, nil
}

func (c *chatLog) ListMessages(_ context.Context, conversationID string, limit int) ([]domain.Message, error) {
	s := (*Store)(c)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Message
	for _, id := range s.msgOrder {
		if msg, ok := s.messages[id]; ok && msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (c *chatLog) DeleteMessage(_ context.Context, id string) (bool, error) {
	s := (*Store)(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[id]; !ok {
		return false, nil
	}
	delete(s.messages, id)
	delete(s.links, id)
	for i, mid := range s.msgOrder {
		if mid == id {
			s.msgOrder = append(s.msgOrder[:i], s.msgOrder[i+1:]...)
			break
		}
	}
	return true, nil
}

// ==================== LinkStore ====================

type linkStore Store

var _ driven.LinkStore = (*linkStore)(nil)

func (l *linkStore) AddLinks(_ context.Context, messageID string, chunkIDs []int64) (int, error) {
	s := (*Store)(l)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[messageID]; !ok {
		return 0, fmt.Errorf("%w: message %s does not exist", domain.ErrValidation, messageID)
	}
	for _, id := range chunkIDs {
		if _, ok := s.chunks[id]; !ok {
			return 0, fmt.Errorf("%w: chunk %d does not exist", domain.ErrValidation, id)
		}
	}

	set, ok := s.links[messageID]
	if !ok {
		set = make(map[int64]time.Time)
		s.links[messageID] = set
	}
	now := time.Now().UTC()
	created := 0
	for _, id := range chunkIDs {
		if _, exists := set[id]; !exists {
			set[id] = now
			created++
		}
	}
	return created, nil
}

func (l *linkStore) ChunksForMessage(_ context.Context, messageID string) ([]int64, error) {
	s := (*Store)(l)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []int64
	for id := range s.links[messageID] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (l *linkStore) MessagesForChunk(_ context.Context, chunkID int64) ([]string, error) {
	s := (*Store)(l)
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		id string
		at time.Time
	}
	var found []entry
	for msgID, set := range s.links {
		if at, ok := set[chunkID]; ok {
			found = append(found, entry{msgID, at})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].at.Equal(found[j].at) {
			return found[i].at.Before(found[j].at)
		}
		return found[i].id < found[j].id
	})

	out := make([]string, len(found))
	for i, e := range found {
		out[i] = e.id
	}
	return out, nil
}

func (l *linkStore) UsageCounts(_ context.Context) (map[int64]int, error) {
	s := (*Store)(l)
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, set := range s.links {
		for id := range set {
			counts[id]++
		}
	}
	return counts, nil
}

func (l *linkStore) UnlinkedChunks(_ context.Context, limit int) ([]int64, error) {
	s := (*Store)(l)
	s.mu.RLock()
	defer s.mu.RUnlock()

	linked := make(map[int64]bool)
	for _, set := range s.links {
		for id := range set {
			linked[id] = true
		}
	}
	var out []int64
	for id := range s.chunks {
		if !linked[id] {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *linkStore) DeleteLinksForMessage(_ context.Context, messageID string) (int, error) {
	s := (*Store)(l)
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.links[messageID])
	delete(s.links, messageID)
	return n, nil
}
