package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ltmc/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ltmc/internal/core/domain"
)

func TestChatService_Log(t *testing.T) {
	svc := NewChatService(memory.NewStore().ChatLog(), time.Second)
	ctx := context.Background()

	msg, err := svc.Log(ctx, domain.Message{ConversationID: "c1", Content: "hello", SourceTool: "cli"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, domain.RoleUser, msg.Role)
	assert.False(t, msg.CreatedAt.IsZero())

	got, err := svc.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "cli", got.SourceTool)

	_, err = svc.Log(ctx, domain.Message{ID: msg.ID, ConversationID: "c1", Content: "again"})
	assert.ErrorIs(t, err, domain.ErrValidation, "ids are unique")
}

func TestChatService_Log_Validation(t *testing.T) {
	svc := NewChatService(memory.NewStore().ChatLog(), time.Second)

	tests := []struct {
		name string
		msg  domain.Message
	}{
		{"no conversation", domain.Message{Content: "x"}},
		{"blank content", domain.Message{ConversationID: "c", Content: "  "}},
		{"unknown role", domain.Message{ConversationID: "c", Content: "x", Role: "narrator"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Log(context.Background(), tt.msg)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestChatService_History(t *testing.T) {
	svc := NewChatService(memory.NewStore().ChatLog(), time.Second)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := svc.Log(ctx, domain.Message{
			ID:             fmt.Sprintf("m%d", i),
			ConversationID: "c1",
			Role:           domain.RoleUser,
			Content:        fmt.Sprintf("turn %d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := svc.Log(ctx, domain.Message{ConversationID: "c2", Content: "elsewhere"})
	require.NoError(t, err)

	msgs, err := svc.History(ctx, "c1", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m2", msgs[0].ID, "latest three, oldest first")
	assert.Equal(t, "m4", msgs[2].ID)

	msgs, err = svc.History(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 5)

	msgs, err = svc.History(ctx, "unknown", 0)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)

	_, err = svc.History(ctx, "", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChatService_Delete(t *testing.T) {
	svc := NewChatService(memory.NewStore().ChatLog(), time.Second)
	ctx := context.Background()

	msg, err := svc.Log(ctx, domain.Message{ConversationID: "c1", Content: "bye"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = svc.Get(ctx, msg.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
