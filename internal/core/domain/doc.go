// Package domain defines the core business entities for LTMC.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Resource: An ingested unit of content (document, code, chat, todo)
//   - Chunk: A contiguous span of a resource, embedded under one vector id
//   - Message: A conversation turn recorded in the chat log
//   - ContextLink: Provenance linking a message to a chunk it drew upon
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
