package chat

import (
	"errors"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/services"
	"qwksearch/internal/service/focus"
)

// Request is the body of POST /api/chat.
type Request struct {
	Message            MessageInput `json:"message"`
	OptimizationMode   string       `json:"optimizationMode"`
	FocusMode          string       `json:"focusMode"`
	History            [][]string   `json:"history"`
	Files              []string     `json:"files"`
	ChatModel          ModelRef     `json:"chatModel"`
	SystemInstructions string       `json:"systemInstructions"`
}

// MessageInput is the user's message for this turn.
type MessageInput struct {
	MessageID string `json:"messageId"`
	ChatID    string `json:"chatId"`
	Content   string `json:"content"`
}

// ModelRef names a chat model in the catalog.
type ModelRef struct {
	ProviderID string `json:"providerId"`
	Key        string `json:"key"`
}

func (m MessageInput) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.MessageID, validation.Required),
		validation.Field(&m.ChatID, validation.Required),
		validation.Field(&m.Content, validation.Required),
	)
}

func (m ModelRef) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ProviderID, validation.Required),
		validation.Field(&m.Key, validation.Required),
	)
}

func historyPair(value any) error {
	pair, _ := value.([]string)
	if len(pair) != 2 {
		return errors.New("must be a [role, text] pair")
	}
	return nil
}

// Validate checks the body and returns a *domain.ValidationError listing
// every violated field.
func (r *Request) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Message),
		validation.Field(&r.OptimizationMode,
			validation.Required,
			validation.In(focus.ModeSpeed, focus.ModeBalanced, focus.ModeQuality),
		),
		validation.Field(&r.FocusMode, validation.Required),
		validation.Field(&r.History, validation.Each(validation.By(historyPair))),
		validation.Field(&r.Files, validation.Each(validation.Required)),
		validation.Field(&r.ChatModel),
	)
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return internal
	}

	issues := []domain.FieldIssue{}
	flattenIssues("", err, &issues)
	return &domain.ValidationError{Message: "Invalid request body", Issues: issues}
}

// flattenIssues turns nested validation.Errors into dotted paths.
func flattenIssues(prefix string, err error, issues *[]domain.FieldIssue) {
	var errs validation.Errors
	if errors.As(err, &errs) {
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			flattenIssues(path, errs[k], issues)
		}
		return
	}
	*issues = append(*issues, domain.FieldIssue{Path: prefix, Message: err.Error()})
}

// HistoryMessages converts [role, text] pairs to prompt messages.
func HistoryMessages(history [][]string) []services.ChatMessage {
	messages := make([]services.ChatMessage, 0, len(history))
	for _, pair := range history {
		if len(pair) != 2 {
			continue
		}
		role := "assistant"
		if pair[0] == "human" {
			role = "user"
		}
		messages = append(messages, services.ChatMessage{Role: role, Content: pair[1]})
	}
	return messages
}
