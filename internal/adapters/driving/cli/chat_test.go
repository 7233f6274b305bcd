package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/core/domain"
)

func TestChatLogCmd(t *testing.T) {
	s := setupTestServices(t)

	out, err := execute(t, "chat", "log", "-c", "conv-1", "--role", "assistant", "--agent", "helper", "deploy", "with", "make")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	msg, err := s.Chat.Get(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", msg.ConversationID)
	assert.Equal(t, domain.RoleAssistant, msg.Role)
	assert.Equal(t, "helper", msg.AgentName)
	assert.Equal(t, "deploy with make", msg.Content)
}

func TestChatLogCmd_ExplicitID(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "chat", "log", "-c", "conv-1", "--id", "msg-7", "hello")
	require.NoError(t, err)
	assert.Equal(t, "msg-7\n", out)
}

func TestChatLogCmd_Validation(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "chat", "log", "hello")
	assert.ErrorIs(t, err, domain.ErrValidation, "conversation is required")

	_, err = execute(t, "chat", "log", "-c", "conv-1", "--role", "robot", "hello")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChatHistoryCmd(t *testing.T) {
	s := setupTestServices(t)
	for _, content := range []string{"one", "two", "three"} {
		_, err := s.Chat.Log(t.Context(), domain.Message{ConversationID: "conv-1", Content: content})
		require.NoError(t, err)
	}

	out, err := execute(t, "chat", "history", "conv-1", "-n", "2", "--json")
	require.NoError(t, err)

	var msgs []domain.Message
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Content)
	assert.Equal(t, "three", msgs[1].Content)

	out, err = execute(t, "chat", "history", "conv-2")
	require.NoError(t, err)
	assert.Contains(t, out, "No messages.")
}

func TestChatDeleteCmd(t *testing.T) {
	s := setupTestServices(t)
	msgID, chunks := linkFixture(t, s)
	_, err := s.Context.Link(t.Context(), msgID, []int64{chunks[0].ID})
	require.NoError(t, err)

	out, err := execute(t, "chat", "delete", msgID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted message")

	links, err := s.Context.LinksForMessage(t.Context(), msgID)
	require.NoError(t, err)
	assert.Empty(t, links)

	_, err = execute(t, "chat", "delete", msgID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
