package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"qwksearch/internal/config"
	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
)

// TurnStart is what a turn writes before streaming begins.
type TurnStart struct {
	ChatID    string
	FocusMode string
	MessageID string
	Content   string
	Files     []models.FileRef
}

// Session is the persistence view for one caller. Guest sessions accept
// every call and store nothing.
type Session interface {
	Durable() bool
	UserID() string

	// BeginTurn creates the chat when absent, syncs its files and stores the
	// user message. Re-sending an existing message id rewrites the turn:
	// every later message in the chat is deleted.
	BeginTurn(ctx context.Context, t TurnStart) error

	AppendMessage(ctx context.Context, msg *models.Message) error
}

// Store hands out sessions over the chat and message repositories.
type Store struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	tx       repositories.TransactionManager
	logger   *slog.Logger
}

// NewStore creates a session store
func NewStore(
	chats repositories.ChatRepository,
	messages repositories.MessageRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) *Store {
	return &Store{chats: chats, messages: messages, tx: tx, logger: logger}
}

// For returns the session for userID; an empty id is a guest.
func (s *Store) For(userID string) Session {
	if userID == "" {
		return guestSession{}
	}
	return &durableSession{store: s, userID: userID}
}

type guestSession struct{}

func (guestSession) Durable() bool                                        { return false }
func (guestSession) UserID() string                                       { return "" }
func (guestSession) BeginTurn(context.Context, TurnStart) error           { return nil }
func (guestSession) AppendMessage(context.Context, *models.Message) error { return nil }

type durableSession struct {
	store  *Store
	userID string
}

func (s *durableSession) Durable() bool  { return true }
func (s *durableSession) UserID() string { return s.userID }

func (s *durableSession) BeginTurn(ctx context.Context, t TurnStart) error {
	return s.store.tx.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.ensureChat(ctx, t); err != nil {
			return err
		}
		return s.saveUserMessage(ctx, t)
	})
}

func (s *durableSession) ensureChat(ctx context.Context, t TurnStart) error {
	chat, err := s.store.chats.Get(ctx, t.ChatID, s.userID)
	if errors.Is(err, domain.ErrNotFound) {
		err = s.store.chats.Create(ctx, &models.Chat{
			ID:        t.ChatID,
			UserID:    s.userID,
			Title:     TruncateTitle(t.Content),
			FocusMode: t.FocusMode,
			Files:     t.Files,
		})
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		// created concurrently, or the id belongs to another user's chat
		chat, err = s.store.chats.Get(ctx, t.ChatID, s.userID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("chat %s: %w", t.ChatID, domain.ErrNotFound)
		}
	}
	if err != nil {
		return err
	}

	if !slices.Equal(chat.Files, t.Files) {
		return s.store.chats.UpdateFiles(ctx, t.ChatID, s.userID, t.Files)
	}
	return nil
}

func (s *durableSession) saveUserMessage(ctx context.Context, t TurnStart) error {
	existing, err := s.store.messages.FindByMessageID(ctx, t.ChatID, t.MessageID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if existing != nil {
		removed, err := s.store.messages.DeleteAfter(ctx, t.ChatID, existing.ID)
		if err != nil {
			return err
		}
		s.store.logger.Debug("rewrote chat turn",
			"chat_id", t.ChatID,
			"message_id", t.MessageID,
			"removed", removed,
		)
		if existing.Content != t.Content {
			return s.store.messages.UpdateContent(ctx, existing.ID, t.Content)
		}
		return nil
	}

	return s.store.messages.Append(ctx, &models.Message{
		MessageID: t.MessageID,
		ChatID:    t.ChatID,
		UserID:    s.userID,
		Role:      models.RoleUser,
		Content:   t.Content,
	})
}

func (s *durableSession) AppendMessage(ctx context.Context, msg *models.Message) error {
	msg.UserID = s.userID
	return s.store.messages.Append(ctx, msg)
}

// TruncateTitle cuts a chat title to the column limit in runes.
func TruncateTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= config.MaxChatTitleLength {
		return content
	}
	return string(runes[:config.MaxChatTitleLength])
}

// FileRefs turns uploaded file ids into chat attachments.
func FileRefs(ids []string) []models.FileRef {
	return lo.Map(ids, func(id string, _ int) models.FileRef {
		return models.FileRef{Name: id, FileID: id}
	})
}
