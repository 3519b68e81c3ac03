package chat

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/services"
	"qwksearch/internal/service/llm"
)

// persister writes one turn's events for a signed-in user. Sources are stored
// as they arrive; the answer is stored once, on messageEnd. Nothing of the
// answer is stored when the turn ends in error.
type persister struct {
	session     Session
	chatID      string
	assistantID string
	model       services.ChatModel
	history     []services.ChatMessage
	logger      *slog.Logger
}

func (p *persister) run(ctx context.Context, events <-chan models.StreamEvent) {
	var answer strings.Builder
	ended := false
	hasSources := false

	for ev := range events {
		switch ev.Type {
		case models.EventResponse:
			answer.WriteString(ev.Text)

		case models.EventSources:
			if len(ev.Sources) == 0 {
				continue
			}
			p.append(ctx, &models.Message{
				MessageID: uuid.NewString(),
				ChatID:    p.chatID,
				Role:      models.RoleSource,
				Sources:   ev.Sources,
			})
			hasSources = true

		case models.EventMessageEnd:
			p.append(ctx, &models.Message{
				MessageID: p.assistantID,
				ChatID:    p.chatID,
				Role:      models.RoleAssistant,
				Content:   answer.String(),
			})
			ended = true

		case models.EventError:
			return
		}
	}

	if ended && hasSources {
		p.suggest(ctx, answer.String())
	}
}

func (p *persister) append(ctx context.Context, msg *models.Message) {
	if err := p.session.AppendMessage(ctx, msg); err != nil {
		p.logger.Error("failed to persist message",
			"role", msg.Role,
			"message_id", msg.MessageID,
			"error", err,
		)
	}
}

// suggest stores follow-up questions for the finished turn. Best effort.
func (p *persister) suggest(ctx context.Context, answer string) {
	history := append(slices.Clip(p.history), services.ChatMessage{Role: "assistant", Content: answer})

	suggestions, err := llm.GenerateSuggestions(ctx, p.model, history)
	if err != nil {
		p.logger.Warn("suggestion generation failed", "error", err)
		return
	}
	if len(suggestions) == 0 {
		return
	}

	p.append(ctx, &models.Message{
		MessageID:   uuid.NewString(),
		ChatID:      p.chatID,
		Role:        models.RoleSuggestion,
		Suggestions: suggestions,
	})
}
