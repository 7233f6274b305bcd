package mcp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

// StoreInput is the input schema for the store_memory tool.
type StoreInput struct {
	Name    string `json:"name" jsonschema:"logical name of the content, e.g. a file name"`
	Content string `json:"content" jsonschema:"the full text to remember"`
	Type    string `json:"type,omitempty" jsonschema:"one of document, code, chat or todo (default document)"`
}

// StoreOutput is the output schema for the store_memory tool.
type StoreOutput struct {
	ResourceID string `json:"resource_id"`
	ChunkCount int    `json:"chunk_count"`
}

// QueryInput is the input schema for the retrieval tools.
type QueryInput struct {
	Query string `json:"query" jsonschema:"natural language query"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of results (default from settings)"`
}

// ChunkOutput is a chunk resolved to its resource.
type ChunkOutput struct {
	VectorID     int64   `json:"vector_id"`
	ChunkID      int64   `json:"chunk_id"`
	ResourceID   string  `json:"resource_id"`
	ResourceName string  `json:"resource_name"`
	Type         string  `json:"type"`
	Position     int     `json:"position"`
	Content      string  `json:"content"`
	Score        float64 `json:"score,omitempty"`
}

// RetrieveOutput is the output schema for the retrieve_memory tool.
type RetrieveOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// HitOutput is a single nearest-neighbour result.
type HitOutput struct {
	VectorID int64   `json:"vector_id"`
	Score    float64 `json:"score"`
}

// SearchOutput is the output schema for the search_vectors tool.
type SearchOutput struct {
	Hits  []HitOutput `json:"hits"`
	Count int         `json:"count"`
}

// ResolveInput is the input schema for the resolve_chunks tool.
type ResolveInput struct {
	VectorIDs []int64 `json:"vector_ids" jsonschema:"vector ids returned by search_vectors"`
}

// ResolveOutput is the output schema for the resolve_chunks tool.
type ResolveOutput struct {
	Chunks  []ChunkOutput `json:"chunks"`
	Missing []int64       `json:"missing"`
}

// DeleteResourceInput is the input schema for the delete_resource tool.
type DeleteResourceInput struct {
	ResourceID string `json:"resource_id" jsonschema:"id returned by store_memory"`
}

// DeleteOutput reports whether anything was removed.
type DeleteOutput struct {
	Deleted bool `json:"deleted"`
}

// LogChatInput is the input schema for the log_chat tool.
type LogChatInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"conversation the message belongs to"`
	Content        string `json:"content" jsonschema:"message text"`
	Role           string `json:"role,omitempty" jsonschema:"user, assistant, system or tool (default user)"`
	MessageID      string `json:"message_id,omitempty" jsonschema:"message id to use instead of a generated one"`
	AgentName      string `json:"agent_name,omitempty" jsonschema:"name of the agent that produced the message"`
	SourceTool     string `json:"source_tool,omitempty" jsonschema:"name of the tool logging the message"`
}

// LogChatOutput is the output schema for the log_chat tool.
type LogChatOutput struct {
	MessageID string `json:"message_id"`
}

// LinkInput is the input schema for the link_context tool.
type LinkInput struct {
	MessageID string  `json:"message_id" jsonschema:"id of a logged chat message"`
	ChunkIDs  []int64 `json:"chunk_ids" jsonschema:"chunks that informed the message"`
}

// LinkOutput is the output schema for the link_context tool.
type LinkOutput struct {
	Added int `json:"added"`
}

// MessageInput identifies a chat message.
type MessageInput struct {
	MessageID string `json:"message_id" jsonschema:"id of a logged chat message"`
}

// ChunkIDsOutput lists chunk ids.
type ChunkIDsOutput struct {
	ChunkIDs []int64 `json:"chunk_ids"`
}

// ChunkInput identifies a chunk.
type ChunkInput struct {
	ChunkID int64 `json:"chunk_id" jsonschema:"chunk id"`
}

// MessageIDsOutput lists message ids.
type MessageIDsOutput struct {
	MessageIDs []string `json:"message_ids"`
}

// UsageInput is the input schema for the usage_statistics tool.
type UsageInput struct{}

// UsageEntry is the usage count of one chunk.
type UsageEntry struct {
	ChunkID  int64 `json:"chunk_id"`
	Messages int   `json:"messages"`
}

// UsageOutput is the output schema for the usage_statistics tool.
type UsageOutput struct {
	Usage []UsageEntry `json:"usage"`
}

// HistoryInput is the input schema for the chat_history tool.
type HistoryInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"conversation to read"`
	Limit          int    `json:"limit,omitempty" jsonschema:"maximum number of messages (default 20)"`
}

// MessageOutput is a logged chat message.
type MessageOutput struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	AgentName      string `json:"agent_name,omitempty"`
	SourceTool     string `json:"source_tool,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// HistoryOutput is the output schema for the chat_history tool.
type HistoryOutput struct {
	Messages []MessageOutput `json:"messages"`
}

const defaultHistoryLimit = 20

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "store_memory",
		Description: "Store text in long-term memory so it can be retrieved later",
	}, s.handleStore)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_memory",
		Description: "Find stored memory relevant to a query and return the matching chunks",
	}, s.handleRetrieve)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_vectors",
		Description: "Return the vector ids nearest to a query with their similarity",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_chunks",
		Description: "Map vector ids to chunk text and resource metadata",
	}, s.handleResolve)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_resource",
		Description: "Delete a stored resource with its chunks and links",
	}, s.handleDeleteResource)

	if s.ports.Chat != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "log_chat",
			Description: "Record a conversation message and return its id",
		}, s.handleLogChat)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "chat_history",
			Description: "Return the latest messages of a conversation, oldest first",
		}, s.handleHistory)
	}

	if s.ports.Context != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "link_context",
			Description: "Record that a message used the given chunks",
		}, s.handleLink)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_context_links",
			Description: "List the chunks a message used",
		}, s.handleLinksForMessage)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_messages_for_chunk",
			Description: "List the messages that used a chunk",
		}, s.handleMessagesForChunk)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "usage_statistics",
			Description: "Count, per chunk, the distinct messages that used it",
		}, s.handleUsage)
	}
}

func (s *Server) handleStore(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StoreInput,
) (*mcp.CallToolResult, StoreOutput, error) {
	typ := domain.ResourceType(input.Type)
	if typ == "" {
		typ = domain.ResourceTypeDocument
	}

	res, err := s.ports.Resource.Store(ctx, driving.StoreRequest{
		Name:    input.Name,
		Content: input.Content,
		Type:    typ,
	})
	if err != nil {
		return nil, StoreOutput{}, err
	}
	return nil, StoreOutput{ResourceID: res.ID, ChunkCount: res.ChunkCount}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	results, err := s.ports.Search.Retrieve(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = toChunkOutput(&results[i].ResolvedChunk)
		output.Results[i].Score = results[i].Score
	}
	return nil, output, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	hits, err := s.ports.Search.Search(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Hits:  make([]HitOutput, len(hits)),
		Count: len(hits),
	}
	for i, h := range hits {
		output.Hits[i] = HitOutput{VectorID: h.VectorID, Score: h.Score}
	}
	return nil, output, nil
}

func (s *Server) handleResolve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveInput,
) (*mcp.CallToolResult, ResolveOutput, error) {
	result, err := s.ports.Resource.ResolveChunks(ctx, input.VectorIDs)
	if err != nil {
		return nil, ResolveOutput{}, err
	}

	output := ResolveOutput{
		Chunks:  make([]ChunkOutput, len(result.Chunks)),
		Missing: result.Missing,
	}
	if output.Missing == nil {
		output.Missing = []int64{}
	}
	for i := range result.Chunks {
		output.Chunks[i] = toChunkOutput(&result.Chunks[i])
	}
	return nil, output, nil
}

func (s *Server) handleDeleteResource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteResourceInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	deleted, err := s.ports.Resource.Delete(ctx, input.ResourceID)
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{Deleted: deleted}, nil
}

func (s *Server) handleLogChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LogChatInput,
) (*mcp.CallToolResult, LogChatOutput, error) {
	msg, err := s.ports.Chat.Log(ctx, domain.Message{
		ID:             input.MessageID,
		ConversationID: input.ConversationID,
		Role:           domain.Role(input.Role),
		Content:        input.Content,
		AgentName:      input.AgentName,
		SourceTool:     input.SourceTool,
	})
	if err != nil {
		return nil, LogChatOutput{}, err
	}
	return nil, LogChatOutput{MessageID: msg.ID}, nil
}

func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	msgs, err := s.ports.Chat.History(ctx, input.ConversationID, limit)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	output := HistoryOutput{Messages: make([]MessageOutput, len(msgs))}
	for i := range msgs {
		output.Messages[i] = toMessageOutput(&msgs[i])
	}
	return nil, output, nil
}

func (s *Server) handleLink(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LinkInput,
) (*mcp.CallToolResult, LinkOutput, error) {
	added, err := s.ports.Context.Link(ctx, input.MessageID, input.ChunkIDs)
	if err != nil {
		return nil, LinkOutput{}, err
	}
	return nil, LinkOutput{Added: added}, nil
}

func (s *Server) handleLinksForMessage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MessageInput,
) (*mcp.CallToolResult, ChunkIDsOutput, error) {
	ids, err := s.ports.Context.LinksForMessage(ctx, input.MessageID)
	if err != nil {
		return nil, ChunkIDsOutput{}, err
	}
	return nil, ChunkIDsOutput{ChunkIDs: ids}, nil
}

func (s *Server) handleMessagesForChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChunkInput,
) (*mcp.CallToolResult, MessageIDsOutput, error) {
	ids, err := s.ports.Context.MessagesForChunk(ctx, input.ChunkID)
	if err != nil {
		return nil, MessageIDsOutput{}, err
	}
	return nil, MessageIDsOutput{MessageIDs: ids}, nil
}

func (s *Server) handleUsage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ UsageInput,
) (*mcp.CallToolResult, UsageOutput, error) {
	stats, err := s.ports.Context.UsageStatistics(ctx)
	if err != nil {
		return nil, UsageOutput{}, fmt.Errorf("usage statistics: %w", err)
	}

	output := UsageOutput{Usage: make([]UsageEntry, 0, len(stats))}
	for id, n := range stats {
		output.Usage = append(output.Usage, UsageEntry{ChunkID: id, Messages: n})
	}
	sort.Slice(output.Usage, func(i, j int) bool {
		return output.Usage[i].ChunkID < output.Usage[j].ChunkID
	})
	return nil, output, nil
}

func toChunkOutput(c *domain.ResolvedChunk) ChunkOutput {
	return ChunkOutput{
		VectorID:     c.VectorID,
		ChunkID:      c.ChunkID,
		ResourceID:   c.ResourceID,
		ResourceName: c.ResourceName,
		Type:         string(c.Type),
		Position:     c.Position,
		Content:      c.Content,
	}
}

func toMessageOutput(m *domain.Message) MessageOutput {
	return MessageOutput{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           string(m.Role),
		Content:        m.Content,
		AgentName:      m.AgentName,
		SourceTool:     m.SourceTool,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
