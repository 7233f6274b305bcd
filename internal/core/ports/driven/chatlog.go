package driven

import (
	"context"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// ChatLog persists conversation messages.
type ChatLog interface {
	// SaveMessage stores a new message. Returns an error wrapping
	// domain.ErrValidation if the ID is already taken.
	SaveMessage(ctx context.Context, msg *domain.Message) error

	// GetMessage retrieves a message by ID.
	GetMessage(ctx context.Context, id string) (*domain.Message, error)

	// MessageExists reports whether a message ID is known.
	MessageExists(ctx context.Context, id string) (bool, error)

	// ListMessages returns the most recent messages of a conversation,
	// oldest first. A limit of zero returns all.
	ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)

	// DeleteMessage removes a message and its context links.
	// Returns whether a message was removed.
	DeleteMessage(ctx context.Context, id string) (bool, error)
}
