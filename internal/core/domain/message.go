package domain

import "time"

// Role identifies the speaker of a conversation message.
type Role string

// Recognised message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return true
	default:
		return false
	}
}

// Message is a conversation turn recorded in the chat log.
type Message struct {
	// ID is the message identifier, unique across conversations.
	ID string

	// ConversationID groups messages into one conversation.
	ConversationID string

	// Role is the speaker.
	Role Role

	// Content is the message text.
	Content string

	// AgentName optionally names the agent that produced the message.
	AgentName string

	// SourceTool optionally names the tool that logged the message.
	SourceTool string

	// CreatedAt is when the message was logged.
	CreatedAt time.Time
}

// ContextLink records that a message drew upon a chunk.
// Links are never mutated, only created and deleted.
type ContextLink struct {
	MessageID string
	ChunkID   int64
	CreatedAt time.Time
}
