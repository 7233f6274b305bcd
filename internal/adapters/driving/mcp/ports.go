package mcp

import (
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server uses.
type Ports struct {
	// Resource stores, resolves and deletes memory.
	Resource driving.ResourceService

	// Search provides semantic retrieval.
	Search driving.SearchService

	// Context records message to chunk links. Optional.
	Context driving.ContextService

	// Chat records conversation turns. Optional.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Resource == nil {
		return ErrMissingResourceService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
