// Package tui provides an interactive terminal browser for ltmc memory.
// It is a driving adapter: every action goes through the driving ports.
package tui

import (
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Search retrieves chunks for a query.
	Search driving.SearchService

	// Resource lists, reads and deletes stored resources.
	Resource driving.ResourceService
}

// NewPorts creates a Ports aggregate.
func NewPorts(search driving.SearchService, resource driving.ResourceService) *Ports {
	return &Ports{
		Search:   search,
		Resource: resource,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Resource == nil {
		return ErrMissingResourceService
	}
	return nil
}
