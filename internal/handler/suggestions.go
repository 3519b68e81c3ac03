package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/services"
	"qwksearch/internal/httputil"
	"qwksearch/internal/service/chat"
	"qwksearch/internal/service/llm"
)

// SuggestionsHandler serves POST /api/suggestions, which lets guest clients
// ask for follow-up questions over their locally kept history.
type SuggestionsHandler struct {
	models services.ModelLoader
	logger *slog.Logger
}

// NewSuggestionsHandler creates a new suggestions handler
func NewSuggestionsHandler(models services.ModelLoader, logger *slog.Logger) *SuggestionsHandler {
	return &SuggestionsHandler{models: models, logger: logger}
}

type suggestionsRequest struct {
	ChatHistory [][]string    `json:"chatHistory"`
	ChatModel   chat.ModelRef `json:"chatModel"`
}

func (r *suggestionsRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.ChatHistory, validation.Required),
		validation.Field(&r.ChatModel),
	)
	if err == nil {
		return nil
	}

	var issues []domain.FieldIssue
	if errs, ok := err.(validation.Errors); ok {
		for _, field := range []string{"chatHistory", "chatModel"} {
			if fieldErr, ok := errs[field]; ok {
				issues = append(issues, domain.FieldIssue{Path: field, Message: fieldErr.Error()})
			}
		}
	}
	return &domain.ValidationError{Message: "Invalid request body", Issues: issues}
}

// Suggest handles POST /api/suggestions
func (h *SuggestionsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestionsRequest
	if !parseBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleError(w, h.logger, err)
		return
	}

	model, err := h.models.LoadChatModel(req.ChatModel.ProviderID, req.ChatModel.Key)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	suggestions, err := llm.GenerateSuggestions(r.Context(), model, chat.HistoryMessages(req.ChatHistory))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
