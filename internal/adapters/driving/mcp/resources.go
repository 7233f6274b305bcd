package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

const (
	// uriScheme is the custom URI scheme for ltmc resources.
	uriScheme = "ltmc://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "resources",
		Name:        "resources",
		Description: "Stored memory resources, newest first",
		MIMEType:    "application/json",
	}, s.handleResourcesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "resources/{resourceId}",
		Name:        "resource-content",
		Description: "Full text of a stored resource",
		MIMEType:    "text/plain",
	}, s.handleResourceContent)

	if s.ports.Chat != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "conversations/{conversationId}",
			Name:        "conversation",
			Description: "Latest messages of a conversation",
			MIMEType:    "application/json",
		}, s.handleConversationResource)
	}
}

// handleResourcesResource lists stored resources.
func (s *Server) handleResourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	list, err := s.ports.Resource.List(ctx, driving.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}

	type resourceInfo struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Type       string `json:"type"`
		ChunkCount int    `json:"chunk_count"`
		CreatedAt  string `json:"created_at"`
	}

	infos := make([]resourceInfo, len(list))
	for i := range list {
		infos[i] = resourceInfo{
			ID:         list[i].ID,
			Name:       list[i].Name,
			Type:       string(list[i].Type),
			ChunkCount: list[i].ChunkCount,
			CreatedAt:  list[i].CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleResourceContent returns the reassembled text of a resource.
func (s *Server) handleResourceContent(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	resourceID := extractID(req.Params.URI, "resources/")
	if resourceID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Resource.Content(ctx, resourceID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting resource content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		}},
	}, nil
}

// handleConversationResource returns the latest messages of a conversation.
func (s *Server) handleConversationResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	conversationID := extractID(req.Params.URI, "conversations/")
	if conversationID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	msgs, err := s.ports.Chat.History(ctx, conversationID, defaultHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}

	out := make([]MessageOutput, len(msgs))
	for i := range msgs {
		out[i] = toMessageOutput(&msgs[i])
	}
	return jsonResult(req.Params.URI, out)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractID extracts the trailing id from a URI like ltmc://resources/{id}.
// Nested paths are rejected.
func extractID(uri, kind string) string {
	prefix := uriScheme + kind
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
