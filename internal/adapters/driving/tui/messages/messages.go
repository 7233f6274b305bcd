// Package messages defines Bubbletea message types for the TUI.
// Messages carry service results and navigation events through the Elm loop.
package messages

import (
	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the recall input and results view.
	ViewSearch ViewType = iota
	// ViewResources lists stored resources.
	ViewResources
	// ViewContent shows the full text of one resource.
	ViewContent
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewResources:
		return "resources"
	case ViewContent:
		return "content"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// RetrieveCompleted carries resolved search hits back to the model.
type RetrieveCompleted struct {
	Query   string
	Results []domain.RetrievedChunk
	Err     error
}

// ResourcesLoaded carries the stored resources, newest first.
type ResourcesLoaded struct {
	Resources []domain.Resource
	Err       error
}

// ResourceSelected asks for a resource's content to be shown.
type ResourceSelected struct {
	ResourceID string
	Name       string
}

// ContentLoaded carries the reassembled text of a resource.
type ContentLoaded struct {
	ResourceID string
	Content    string
	Err        error
}

// ResourceDeleted reports the outcome of a delete.
// Deleted is false when the resource was already gone.
type ResourceDeleted struct {
	ResourceID string
	Deleted    bool
	Err        error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
