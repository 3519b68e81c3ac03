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

// MessageRepository implements repositories.MessageRepository. Ordinals come
// from one counter shared by all chats, like a database sequence.
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a message repository over db
func NewMessageRepository(db *DB) repositories.MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(ctx context.Context, msg *models.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.nextMsgID++
	msg.ID = r.db.nextMsgID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	r.db.messages = append(r.db.messages, *msg)
	id := msg.ID
	r.db.record(ctx, func() { r.db.removeMessage(id) })
	return nil
}

func (r *MessageRepository) FindByMessageID(ctx context.Context, chatID, messageID string) (*models.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, m := range r.db.messages {
		if m.ChatID == chatID && m.MessageID == messageID {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
}

func (r *MessageRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.messages {
		if r.db.messages[i].ID == id {
			previous := r.db.messages[i].Content
			r.db.messages[i].Content = content
			r.db.record(ctx, func() {
				for j := range r.db.messages {
					if r.db.messages[j].ID == id {
						r.db.messages[j].Content = previous
					}
				}
			})
			return nil
		}
	}
	return fmt.Errorf("message %d: %w", id, domain.ErrNotFound)
}

func (r *MessageRepository) DeleteAfter(ctx context.Context, chatID string, ordinal int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	removed := r.db.deleteMessages(ctx, func(m models.Message) bool {
		return m.ChatID == chatID && m.ID > ordinal
	})
	return int64(removed), nil
}

func (r *MessageRepository) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	messages := []models.Message{}
	for _, m := range r.db.messages {
		if m.ChatID == chatID {
			messages = append(messages, m)
		}
	}
	slices.SortFunc(messages, func(a, b models.Message) int {
		return int(a.ID - b.ID)
	})
	return messages, nil
}

func (r *MessageRepository) DeleteByChat(ctx context.Context, chatID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.deleteMessages(ctx, func(m models.Message) bool {
		return m.ChatID == chatID
	})
	return nil
}

// deleteMessages removes matching rows and records their reinsertion.
// Callers hold db.mu.
func (db *DB) deleteMessages(ctx context.Context, match func(models.Message) bool) int {
	var removed []models.Message
	kept := db.messages[:0]
	for _, m := range db.messages {
		if match(m) {
			removed = append(removed, m)
		} else {
			kept = append(kept, m)
		}
	}
	db.messages = kept
	if len(removed) > 0 {
		db.record(ctx, func() { db.messages = append(db.messages, removed...) })
	}
	return len(removed)
}
