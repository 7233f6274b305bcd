package domain

import "time"

// ResourceType is the kind of content a Resource holds.
type ResourceType string

// Recognised resource types.
const (
	ResourceTypeDocument ResourceType = "document"
	ResourceTypeCode     ResourceType = "code"
	ResourceTypeChat     ResourceType = "chat"
	ResourceTypeTodo     ResourceType = "todo"
)

// IsValid returns true if the resource type is recognised.
func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceTypeDocument, ResourceTypeCode, ResourceTypeChat, ResourceTypeTodo:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ResourceType) String() string {
	return string(t)
}

// AllResourceTypes returns every recognised resource type.
func AllResourceTypes() []ResourceType {
	return []ResourceType{
		ResourceTypeDocument,
		ResourceTypeCode,
		ResourceTypeChat,
		ResourceTypeTodo,
	}
}

// Resource is an ingested unit of content.
// It is immutable once created; the only mutation is deletion.
type Resource struct {
	// ID is the unique identifier (UUID).
	ID string

	// Name is the logical name, e.g. a file name.
	Name string

	// Type is the content kind.
	Type ResourceType

	// ChunkCount is the number of chunks the resource was split into.
	ChunkCount int

	// CreatedAt is when the resource was stored.
	CreatedAt time.Time
}

// Chunk is a contiguous span of text derived from a Resource.
type Chunk struct {
	// ID is the unique chunk identifier. Assigned by the store.
	ID int64

	// ResourceID links to the owning Resource.
	ResourceID string

	// Position is the ordinal position within the resource.
	Position int

	// Content is the chunk text.
	Content string

	// VectorID is the key of this chunk's embedding in the vector index.
	VectorID int64
}
