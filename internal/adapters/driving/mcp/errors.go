// Package mcp exposes ltmc memory to AI assistants over the Model Context Protocol.
// Agents store and retrieve memory and record which chunks informed their replies.
package mcp

import "errors"

var (
	// ErrMissingResourceService is returned when the resource service is not provided.
	ErrMissingResourceService = errors.New("mcp: resource service is required")

	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")
)
