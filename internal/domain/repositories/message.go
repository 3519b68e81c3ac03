package repositories

import (
	"context"

	"qwksearch/internal/domain/models"
)

// MessageRepository defines data access operations for chat messages.
// Messages are ordered by their storage ordinal (Message.ID).
type MessageRepository interface {
	// Append inserts a message and sets its ordinal and creation time
	Append(ctx context.Context, msg *models.Message) error

	// FindByMessageID looks up a message by its client-visible id within a chat
	FindByMessageID(ctx context.Context, chatID, messageID string) (*models.Message, error)

	// UpdateContent rewrites the content of one message
	UpdateContent(ctx context.Context, id int64, content string) error

	// DeleteAfter removes every message in the chat with an ordinal greater
	// than the given one, in a single statement. Returns the number removed.
	DeleteAfter(ctx context.Context, chatID string, ordinal int64) (int64, error)

	// ListByChat returns the transcript in ordinal order
	ListByChat(ctx context.Context, chatID string) ([]models.Message, error)

	// DeleteByChat removes the whole transcript
	DeleteByChat(ctx context.Context, chatID string) error
}
