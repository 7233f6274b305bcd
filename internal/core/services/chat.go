package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
	"github.com/custodia-labs/ltmc/internal/core/ports/driving"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService records conversation messages, the targets of context links.
type ChatService struct {
	chatLog driven.ChatLog
	timeout time.Duration
}

// NewChatService creates a new chat service.
func NewChatService(chatLog driven.ChatLog, timeout time.Duration) *ChatService {
	return &ChatService{
		chatLog: chatLog,
		timeout: timeout,
	}
}

// Log stores a message. A missing ID is generated and a missing role defaults to user.
func (s *ChatService) Log(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	msg.ConversationID = strings.TrimSpace(msg.ConversationID)
	msg.ID = strings.TrimSpace(msg.ID)

	if msg.ConversationID == "" {
		return nil, fmt.Errorf("%w: conversation id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if msg.Role == "" {
		msg.Role = domain.RoleUser
	}
	if !msg.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, msg.Role)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.chatLog.SaveMessage(ctx, &msg); err != nil {
		return nil, fmt.Errorf("logging message: %w", err)
	}
	return &msg, nil
}

// Get retrieves a message by ID.
func (s *ChatService) Get(ctx context.Context, messageID string) (*domain.Message, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := s.chatLog.GetMessage(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", messageID, err)
	}
	return msg, nil
}

// History returns the latest messages of a conversation, oldest first.
func (s *ChatService) History(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, fmt.Errorf("%w: conversation id is required", domain.ErrValidation)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	msgs, err := s.chatLog.ListMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// Delete removes a message and its context links.
func (s *ChatService) Delete(ctx context.Context, messageID string) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return s.chatLog.DeleteMessage(ctx, messageID)
}
