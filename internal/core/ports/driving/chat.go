package driving

import (
	"context"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

// ChatService records conversation turns.
type ChatService interface {
	// Log stores a message. ID and CreatedAt are assigned when empty.
	Log(ctx context.Context, msg domain.Message) (*domain.Message, error)

	// Get retrieves a message by ID.
	Get(ctx context.Context, messageID string) (*domain.Message, error)

	// History returns the latest messages of a conversation, oldest first.
	History(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)

	// Delete removes a message and its context links.
	Delete(ctx context.Context, messageID string) (bool, error)
}
