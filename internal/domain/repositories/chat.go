package repositories

import (
	"context"

	"qwksearch/internal/domain/models"
)

// ChatRepository defines data access operations for chats.
// Every lookup is scoped by (chat id, user id).
type ChatRepository interface {
	// Create inserts a new chat. Returns ConflictError if the id is taken.
	Create(ctx context.Context, chat *models.Chat) error

	// Get retrieves a chat owned by userID
	Get(ctx context.Context, chatID, userID string) (*models.Chat, error)

	// List retrieves all chats owned by userID, newest first
	List(ctx context.Context, userID string) ([]models.Chat, error)

	// UpdateFiles replaces the attached file list
	UpdateFiles(ctx context.Context, chatID, userID string, files []models.FileRef) error

	// Delete removes a chat owned by userID
	Delete(ctx context.Context, chatID, userID string) error
}
