package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/services"
	"qwksearch/internal/handler/sse"
	"qwksearch/internal/middleware"
	"qwksearch/internal/repository/memory"
	"qwksearch/internal/service/chat"
	"qwksearch/internal/service/favorite"
	"qwksearch/internal/service/focus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubVerifier map[string]string

func (s stubVerifier) VerifyToken(token string) (*models.Claims, error) {
	sub, ok := s[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return &models.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}, Role: "authenticated"}, nil
}

func (stubVerifier) Close() error { return nil }

type scriptedFocus struct {
	events []models.StreamEvent
}

func (f scriptedFocus) SearchAndAnswer(context.Context, focus.AnswerRequest) <-chan models.StreamEvent {
	ch := make(chan models.StreamEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch
}

type focusRouter map[string]focus.Handler

func (r focusRouter) Resolve(key string) (focus.Handler, error) {
	h, ok := r[key]
	if !ok {
		return nil, fmt.Errorf("focus mode %q: %w", key, domain.ErrUnknownFocusMode)
	}
	return h, nil
}

type replyModel string

func (m replyModel) Name() string { return "test/reply" }

func (m replyModel) Stream(context.Context, []services.ChatMessage) (<-chan services.Chunk, error) {
	ch := make(chan services.Chunk, 1)
	ch <- services.Chunk{Text: string(m)}
	close(ch)
	return ch, nil
}

type modelLoader struct{}

func (modelLoader) LoadChatModel(providerID, key string) (services.ChatModel, error) {
	if providerID != "test" {
		return nil, fmt.Errorf("provider %q: %w", providerID, domain.ErrUnknownModel)
	}
	return replyModel("<suggestions>\nWhy is it the capital?\nWhen was it founded?\n</suggestions>"), nil
}

type fakeSearcher struct {
	resp *models.SearchResponse
	err  error
	got  []services.SearchRequest
}

func (s *fakeSearcher) Search(_ context.Context, req services.SearchRequest) (*models.SearchResponse, error) {
	s.got = append(s.got, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

var answerEvents = []models.StreamEvent{
	models.SourcesEvent([]models.SearchResult{{Title: "Paris", URL: "https://paris.example"}}),
	models.ResponseEvent("Paris is "),
	models.ResponseEvent("the capital."),
	models.MessageEndEvent(),
}

// server wires the handlers over in-memory repositories the way main does
type server struct {
	handler  http.Handler
	chats    *chat.Service
	searcher *fakeSearcher
	starter  TurnStarter
	turns    []*chat.Turn
}

type recordingStarter struct {
	inner *chat.Orchestrator
	srv   *server
}

func (s recordingStarter) Start(ctx context.Context, userID string, req *chat.Request) (*chat.Turn, error) {
	turn, err := s.inner.Start(ctx, userID, req)
	if turn != nil {
		s.srv.turns = append(s.srv.turns, turn)
	}
	return turn, err
}

func newServer(t *testing.T, events ...models.StreamEvent) *server {
	t.Helper()
	logger := testLogger()
	db := memory.NewDB()
	chatRepo := memory.NewChatRepository(db)
	messageRepo := memory.NewMessageRepository(db)
	txManager := memory.NewTransactionManager(db)

	store := chat.NewStore(chatRepo, messageRepo, txManager, logger)
	orchestrator := chat.NewOrchestrator(
		store,
		focusRouter{"webSearch": scriptedFocus{events: events}},
		modelLoader{},
		nil,
		time.Minute,
		logger,
	)

	srv := &server{
		chats:    chat.NewService(chatRepo, messageRepo, txManager, logger),
		searcher: &fakeSearcher{resp: &models.SearchResponse{Results: []models.SearchResult{{Title: "Go", URL: "https://go.dev"}}}},
	}

	srv.starter = recordingStarter{inner: orchestrator, srv: srv}
	streamHandler := NewChatStreamHandler(srv.starter, &sse.Config{KeepAliveInterval: time.Hour}, logger)
	chatsHandler := NewChatsHandler(srv.chats, logger)
	searchHandler := NewSearchHandler(srv.searcher, logger)
	favoritesHandler := NewFavoritesHandler(favorite.NewService(memory.NewFavoriteRepository(db), logger), logger)
	suggestionsHandler := NewSuggestionsHandler(modelLoader{}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HealthCheck)
	mux.HandleFunc("POST /api/chat", streamHandler.Stream)
	mux.HandleFunc("GET /api/chats", chatsHandler.ListChats)
	mux.HandleFunc("GET /api/chats/{id}", chatsHandler.GetChat)
	mux.HandleFunc("DELETE /api/chats/{id}", chatsHandler.DeleteChat)
	mux.HandleFunc("GET /api/chats/{id}/export", chatsHandler.ExportChat)
	mux.HandleFunc("GET /api/search", searchHandler.Search)
	mux.HandleFunc("GET /api/favorites", favoritesHandler.ListFavorites)
	mux.HandleFunc("POST /api/favorites", favoritesHandler.AddFavorite)
	mux.HandleFunc("DELETE /api/favorites", favoritesHandler.RemoveFavorite)
	mux.HandleFunc("POST /api/suggestions", suggestionsHandler.Suggest)

	srv.handler = middleware.Identity(stubVerifier{"alice-token": "alice", "bob-token": "bob"}, logger)(mux)
	return srv
}

// do sends a request; token may be empty for a guest
func (s *server) do(method, target, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// settle waits for background persistence of every started turn
func (s *server) settle() {
	for _, turn := range s.turns {
		turn.Wait()
	}
}

func chatBody(chatID, messageID, content, focusMode string) map[string]any {
	return map[string]any{
		"message": map[string]any{
			"messageId": messageID,
			"chatId":    chatID,
			"content":   content,
		},
		"optimizationMode": "balanced",
		"focusMode":        focusMode,
		"history":          [][]string{},
		"files":            []string{},
		"chatModel":        map[string]any{"providerId": "test", "key": "m"},
	}
}

func decodeFrames(t *testing.T, body []byte) []models.Frame {
	t.Helper()
	var frames []models.Frame
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var f models.Frame
		require.NoError(t, json.Unmarshal(line, &f))
		frames = append(frames, f)
	}
	return frames
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
