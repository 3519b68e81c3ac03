package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/httputil"
)

// ChatService serves stored chats. *chat.Service implements it.
type ChatService interface {
	List(ctx context.Context, userID string) ([]models.Chat, error)
	Get(ctx context.Context, chatID, userID string) (*models.Chat, []models.Message, error)
	Delete(ctx context.Context, chatID, userID string) error
	Export(ctx context.Context, chatID, userID, format string) ([]byte, string, error)
}

// ChatsHandler handles the chat history routes. All of them require a
// signed-in user.
type ChatsHandler struct {
	chats  ChatService
	logger *slog.Logger
}

// NewChatsHandler creates a new chat history handler
func NewChatsHandler(chats ChatService, logger *slog.Logger) *ChatsHandler {
	return &ChatsHandler{chats: chats, logger: logger}
}

// ListChats handles GET /api/chats
func (h *ChatsHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	chats, err := h.chats.List(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

// GetChat handles GET /api/chats/{id}
func (h *ChatsHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	chat, messages, err := h.chats.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		h.handleChatError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"chat":     chat,
		"messages": messages,
	})
}

// DeleteChat handles DELETE /api/chats/{id}
func (h *ChatsHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.chats.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		h.handleChatError(w, err)
		return
	}
	httputil.RespondMessage(w, http.StatusOK, "Chat deleted successfully")
}

// ExportChat handles GET /api/chats/{id}/export?format=markdown|html
func (h *ChatsHandler) ExportChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	chatID := r.PathValue("id")
	body, contentType, err := h.chats.Export(r.Context(), chatID, userID, r.URL.Query().Get("format"))
	if err != nil {
		h.handleChatError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="chat-`+chatID+exportExtension(contentType)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *ChatsHandler) handleChatError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		httputil.RespondError(w, http.StatusNotFound, "Chat not found")
		return
	}
	handleError(w, h.logger, err)
}

func exportExtension(contentType string) string {
	if contentType == "text/html; charset=utf-8" {
		return ".html"
	}
	return ".md"
}
