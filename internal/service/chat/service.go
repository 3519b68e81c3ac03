package chat

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
)

// Export formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Service serves stored chats to their owner.
type Service struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	tx       repositories.TransactionManager
	markdown goldmark.Markdown
	logger   *slog.Logger
}

// NewService creates a chat history service
func NewService(
	chats repositories.ChatRepository,
	messages repositories.MessageRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) *Service {
	return &Service{
		chats:    chats,
		messages: messages,
		tx:       tx,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:   logger,
	}
}

// List returns the user's chats, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Chat, error) {
	return s.chats.List(ctx, userID)
}

// Get returns a chat and its transcript in order.
func (s *Service) Get(ctx context.Context, chatID, userID string) (*models.Chat, []models.Message, error) {
	chat, err := s.chats.Get(ctx, chatID, userID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	return chat, messages, nil
}

// Delete removes a chat and its messages atomically.
func (s *Service) Delete(ctx context.Context, chatID, userID string) error {
	return s.tx.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.chats.Get(ctx, chatID, userID); err != nil {
			return err
		}
		if err := s.messages.DeleteByChat(ctx, chatID); err != nil {
			return err
		}
		if err := s.chats.Delete(ctx, chatID, userID); err != nil {
			return err
		}
		s.logger.Info("chat deleted", "chat_id", chatID)
		return nil
	})
}

// Export renders the transcript as Markdown or HTML. Returns the body and
// its content type.
func (s *Service) Export(ctx context.Context, chatID, userID, format string) ([]byte, string, error) {
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatHTML {
		return nil, "", &domain.ValidationError{
			Message: "Invalid export format",
			Issues:  []domain.FieldIssue{{Path: "format", Message: "must be markdown or html"}},
		}
	}

	chat, messages, err := s.Get(ctx, chatID, userID)
	if err != nil {
		return nil, "", err
	}

	md := RenderMarkdown(chat, messages)
	if format == FormatMarkdown {
		return []byte(md), "text/markdown; charset=utf-8", nil
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	buf.WriteString(htmlEscaper.Replace(chat.Title))
	buf.WriteString("</title></head><body>\n")
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		return nil, "", fmt.Errorf("render chat %s: %w", chatID, err)
	}
	buf.WriteString("</body></html>\n")
	return buf.Bytes(), "text/html; charset=utf-8", nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// RenderMarkdown writes a transcript as a Markdown document. Sources are
// listed under the answer they belong to; suggestions are omitted.
func RenderMarkdown(chat *models.Chat, messages []models.Message) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", chat.Title)
	fmt.Fprintf(&sb, "_%s · %s_\n\n", chat.FocusMode, chat.CreatedAt.Format("2006-01-02 15:04"))

	var pending []models.SearchResult
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			fmt.Fprintf(&sb, "## Question\n\n%s\n\n", msg.Content)
		case models.RoleSource:
			pending = append(pending, msg.Sources...)
		case models.RoleAssistant:
			fmt.Fprintf(&sb, "## Answer\n\n%s\n\n", msg.Content)
			if len(pending) > 0 {
				sb.WriteString("### Sources\n\n")
				for i, src := range pending {
					fmt.Fprintf(&sb, "%d. [%s](%s)\n", i+1, src.Title, src.URL)
				}
				sb.WriteString("\n")
				pending = nil
			}
		}
	}
	return sb.String()
}
