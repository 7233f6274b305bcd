package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ltmc/internal/core/domain"
	"github.com/custodia-labs/ltmc/internal/core/ports/driven"
)

// chatLog implements driven.ChatLog.
type chatLog struct {
	store *Store
}

var _ driven.ChatLog = (*chatLog)(nil)

// SaveMessage stores a new message.
func (c *chatLog) SaveMessage(ctx context.Context, msg *domain.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, conversation_id, role, content, agent_name, source_tool, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		msg.ID,
		msg.ConversationID,
		string(msg.Role),
		msg.Content,
		nullString(msg.AgentName),
		nullString(msg.SourceTool),
		msg.CreatedAt.UTC(),
	)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("%w: message %s already exists", domain.ErrValidation, msg.ID)
		}
		return fmt.Errorf("saving message: %w", Classify(err))
	}
	return nil
}

// GetMessage retrieves a message by ID.
func (c *chatLog) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT id, conversation_id, role, content, agent_name, source_tool, created_at
		FROM chat_messages WHERE id = ?
	`, id)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning message: %w", Classify(err))
	}
	return msg, nil
}

// MessageExists reports whether a message ID is known.
func (c *chatLog) MessageExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := c.store.db.QueryRowContext(ctx, "SELECT 1 FROM chat_messages WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking message: %w", Classify(err))
	}
	return true, nil
}

// ListMessages returns the latest limit messages of a conversation, oldest first.
func (c *chatLog) ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, agent_name, source_tool, created_at
		FROM (
			SELECT rowid AS seq, id, conversation_id, role, content, agent_name, source_tool, created_at
			FROM chat_messages
			WHERE conversation_id = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)
		ORDER BY created_at ASC, seq ASC
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", Classify(err))
	}
	defer rows.Close()

	var messages []domain.Message //nolint:prealloc // size unknown from query
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, *msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", Classify(err))
	}
	return messages, nil
}

// DeleteMessage removes a message; its context links cascade.
func (c *chatLog) DeleteMessage(ctx context.Context, id string) (bool, error) {
	result, err := c.store.db.ExecContext(ctx, "DELETE FROM chat_messages WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting message: %w", Classify(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var msg domain.Message
	var role string
	var agentName, sourceTool sql.NullString

	if err := row.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content,
		&agentName, &sourceTool, &msg.CreatedAt); err != nil {
		return nil, err
	}

	msg.Role = domain.Role(role)
	msg.AgentName = agentName.String
	msg.SourceTool = sourceTool.String
	return &msg, nil
}
