package handler

import (
	"context"
	"log/slog"
	"net/http"

	"qwksearch/internal/handler/sse"
	"qwksearch/internal/httputil"
	"qwksearch/internal/service/chat"
)

// TurnStarter starts chat turns. *chat.Orchestrator implements it.
type TurnStarter interface {
	Start(ctx context.Context, userID string, req *chat.Request) (*chat.Turn, error)
}

// ChatStreamHandler serves POST /api/chat
type ChatStreamHandler struct {
	turns  TurnStarter
	config *sse.Config
	logger *slog.Logger
}

// NewChatStreamHandler creates a new answer stream handler
func NewChatStreamHandler(turns TurnStarter, config *sse.Config, logger *slog.Logger) *ChatStreamHandler {
	if config == nil {
		config = sse.DefaultConfig()
	}
	return &ChatStreamHandler{turns: turns, config: config, logger: logger}
}

// Stream handles POST /api/chat. Every rejection happens before the first
// byte of the stream; once streaming starts the response always ends with a
// messageEnd or error frame unless the client goes away.
func (h *ChatStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if !parseBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if httputil.AuthFailed(r) {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	turn, err := h.turns.Start(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writer, err := sse.NewFrameWriter(w)
	if err != nil {
		turn.Detach()
		h.logger.Error("response does not support streaming", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sse.SetHeaders(w)
	w.WriteHeader(http.StatusOK)

	keepAlive := sse.NewTickerKeepAlive(h.config.KeepAliveInterval)
	stopped := keepAlive.Start(writer, h.logger)
	defer func() {
		keepAlive.Stop()
		<-stopped
	}()

	logger := h.logger.With("chat_id", req.Message.ChatID, "assistant_id", turn.AssistantID)
	events := turn.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writer.WriteFrame(ev.Frame(turn.AssistantID)); err != nil {
				logger.Info("client disconnected during write", "error", err)
				turn.Detach()
				return
			}
		case <-r.Context().Done():
			logger.Info("client disconnected, answer continues in background")
			turn.Detach()
			return
		}
	}
}
