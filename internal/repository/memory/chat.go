package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
)

// ChatRepository implements repositories.ChatRepository
type ChatRepository struct {
	db *DB
}

// NewChatRepository creates a chat repository over db
func NewChatRepository(db *DB) repositories.ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if existing, ok := r.db.chats[chat.ID]; ok {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("chat %s already exists", chat.ID),
			ResourceType: "chat",
			ResourceID:   existing.ID,
		}
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now().UTC()
	}
	if chat.Files == nil {
		chat.Files = []models.FileRef{}
	}
	stored := *chat
	stored.Files = slices.Clone(chat.Files)
	r.db.chats[chat.ID] = stored
	r.db.record(ctx, func() { delete(r.db.chats, stored.ID) })
	return nil
}

func (r *ChatRepository) Get(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	chat, ok := r.db.chats[chatID]
	if !ok || chat.UserID != userID {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	chat.Files = slices.Clone(chat.Files)
	return &chat, nil
}

func (r *ChatRepository) List(ctx context.Context, userID string) ([]models.Chat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	chats := []models.Chat{}
	for _, chat := range r.db.chats {
		if chat.UserID == userID {
			chats = append(chats, chat)
		}
	}
	slices.SortFunc(chats, func(a, b models.Chat) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return chats, nil
}

func (r *ChatRepository) UpdateFiles(ctx context.Context, chatID, userID string, files []models.FileRef) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	chat, ok := r.db.chats[chatID]
	if !ok || chat.UserID != userID {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	previous := chat.Files
	chat.Files = slices.Clone(files)
	r.db.chats[chatID] = chat
	r.db.record(ctx, func() {
		if current, ok := r.db.chats[chatID]; ok {
			current.Files = previous
			r.db.chats[chatID] = current
		}
	})
	return nil
}

func (r *ChatRepository) Delete(ctx context.Context, chatID, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	chat, ok := r.db.chats[chatID]
	if !ok || chat.UserID != userID {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	delete(r.db.chats, chatID)
	r.db.record(ctx, func() { r.db.chats[chatID] = chat })
	return nil
}
