package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/repository/memory"
)

func seededService(t *testing.T) *Service {
	t.Helper()
	db := memory.NewDB()
	chats := memory.NewChatRepository(db)
	messages := memory.NewMessageRepository(db)
	ctx := context.Background()

	require.NoError(t, chats.Create(ctx, &models.Chat{
		ID:        "c1",
		UserID:    "alice",
		Title:     "Capital <of> France",
		FocusMode: "webSearch",
		CreatedAt: time.Date(2024, 7, 26, 10, 0, 0, 0, time.UTC),
	}))
	for _, m := range []models.Message{
		{MessageID: "m1", ChatID: "c1", Role: models.RoleUser, Content: "capital of France?"},
		{MessageID: "s1", ChatID: "c1", Role: models.RoleSource, Sources: testSources},
		{MessageID: "a1", ChatID: "c1", Role: models.RoleAssistant, Content: "**Paris**"},
		{MessageID: "g1", ChatID: "c1", Role: models.RoleSuggestion, Suggestions: []string{"Why?"}},
	} {
		require.NoError(t, messages.Append(ctx, &m))
	}

	return NewService(chats, messages, memory.NewTransactionManager(db), testLogger())
}

func TestService_Get(t *testing.T) {
	svc := seededService(t)

	chat, messages, err := svc.Get(context.Background(), "c1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "c1", chat.ID)
	assert.Len(t, messages, 4)

	_, _, err = svc.Get(context.Background(), "c1", "bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, "c1", "bob"), domain.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "c1", "alice"))

	_, _, err := svc.Get(ctx, "c1", "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	messages, err := svc.messages.ListByChat(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestService_Export(t *testing.T) {
	tests := []struct {
		name        string
		format      string
		contentType string
		contains    []string
		wantErr     error
	}{
		{
			name:        "default is markdown",
			format:      "",
			contentType: "text/markdown; charset=utf-8",
			contains:    []string{"# Capital <of> France", "## Question", "capital of France?", "**Paris**", "1. [Paris](https://paris.example)"},
		},
		{
			name:        "html",
			format:      FormatHTML,
			contentType: "text/html; charset=utf-8",
			contains:    []string{"<title>Capital &lt;of&gt; France</title>", "<strong>Paris</strong>", `<a href="https://paris.example">Paris</a>`},
		},
		{
			name:    "unknown format",
			format:  "pdf",
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := seededService(t)

			body, contentType, err := svc.Export(context.Background(), "c1", "alice", tt.format)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.contentType, contentType)
			for _, want := range tt.contains {
				assert.Contains(t, string(body), want)
			}
			assert.NotContains(t, string(body), "Why?")
		})
	}
}
