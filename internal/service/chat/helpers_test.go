package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
	"qwksearch/internal/domain/services"
	"qwksearch/internal/repository/memory"
	"qwksearch/internal/service/focus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedHandler replays a fixed event list for every turn
type scriptedHandler struct {
	events []models.StreamEvent
	calls  atomic.Int32
}

func (h *scriptedHandler) SearchAndAnswer(ctx context.Context, req focus.AnswerRequest) <-chan models.StreamEvent {
	h.calls.Add(1)
	ch := make(chan models.StreamEvent, len(h.events))
	for _, ev := range h.events {
		ch <- ev
	}
	close(ch)
	return ch
}

// echoHandler answers with the query itself and cites one source titled
// after it. A gated query waits for its channel to close before answering.
type echoHandler struct {
	gates map[string]chan struct{}
}

func (h echoHandler) SearchAndAnswer(ctx context.Context, req focus.AnswerRequest) <-chan models.StreamEvent {
	ch := make(chan models.StreamEvent, 3)
	go func() {
		defer close(ch)
		if gate, ok := h.gates[req.Query]; ok {
			select {
			case <-gate:
			case <-ctx.Done():
				return
			}
		}
		ch <- models.SourcesEvent([]models.SearchResult{{Title: req.Query, URL: "https://" + req.Query + ".example"}})
		ch <- models.ResponseEvent(req.Query)
		ch <- models.MessageEndEvent()
	}()
	return ch
}

// ctxCapturingHandler keeps the context its turn was produced under
type ctxCapturingHandler struct {
	ctx atomic.Pointer[context.Context]
}

func (h *ctxCapturingHandler) SearchAndAnswer(ctx context.Context, req focus.AnswerRequest) <-chan models.StreamEvent {
	h.ctx.Store(&ctx)
	ch := make(chan models.StreamEvent, 1)
	ch <- models.MessageEndEvent()
	close(ch)
	return ch
}

type staticRouter map[string]focus.Handler

func (r staticRouter) Resolve(key string) (focus.Handler, error) {
	h, ok := r[key]
	if !ok {
		return nil, fmt.Errorf("focus mode %q: %w", key, domain.ErrUnknownFocusMode)
	}
	return h, nil
}

// replyModel answers every prompt with the same text
type replyModel struct {
	reply string
}

func (m replyModel) Name() string { return "test/reply" }

func (m replyModel) Stream(context.Context, []services.ChatMessage) (<-chan services.Chunk, error) {
	ch := make(chan services.Chunk, 1)
	ch <- services.Chunk{Text: m.reply}
	close(ch)
	return ch, nil
}

type staticLoader struct {
	model services.ChatModel
}

func (l staticLoader) LoadChatModel(providerID, key string) (services.ChatModel, error) {
	if providerID != "test" {
		return nil, fmt.Errorf("provider %q: %w", providerID, domain.ErrUnknownModel)
	}
	return l.model, nil
}

// countingChats and countingMessages record every call
type countingChats struct {
	repositories.ChatRepository
	calls atomic.Int32
}

func (c *countingChats) Create(ctx context.Context, chat *models.Chat) error {
	c.calls.Add(1)
	return c.ChatRepository.Create(ctx, chat)
}

func (c *countingChats) Get(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	c.calls.Add(1)
	return c.ChatRepository.Get(ctx, chatID, userID)
}

func (c *countingChats) UpdateFiles(ctx context.Context, chatID, userID string, files []models.FileRef) error {
	c.calls.Add(1)
	return c.ChatRepository.UpdateFiles(ctx, chatID, userID, files)
}

type countingMessages struct {
	repositories.MessageRepository
	calls atomic.Int32
}

func (c *countingMessages) Append(ctx context.Context, msg *models.Message) error {
	c.calls.Add(1)
	return c.MessageRepository.Append(ctx, msg)
}

func (c *countingMessages) FindByMessageID(ctx context.Context, chatID, messageID string) (*models.Message, error) {
	c.calls.Add(1)
	return c.MessageRepository.FindByMessageID(ctx, chatID, messageID)
}

func (c *countingMessages) DeleteAfter(ctx context.Context, chatID string, ordinal int64) (int64, error) {
	c.calls.Add(1)
	return c.MessageRepository.DeleteAfter(ctx, chatID, ordinal)
}

type fixture struct {
	chats        *countingChats
	messages     *countingMessages
	store        *Store
	orchestrator *Orchestrator
	handler      *scriptedHandler
}

func newFixture(events ...models.StreamEvent) *fixture {
	db := memory.NewDB()
	f := &fixture{
		chats:    &countingChats{ChatRepository: memory.NewChatRepository(db)},
		messages: &countingMessages{MessageRepository: memory.NewMessageRepository(db)},
		handler:  &scriptedHandler{events: events},
	}
	f.store = NewStore(f.chats, f.messages, memory.NewTransactionManager(db), testLogger())
	f.orchestrator = NewOrchestrator(
		f.store,
		staticRouter{"webSearch": f.handler},
		staticLoader{model: replyModel{reply: "<suggestions>\nWhat next?\n</suggestions>"}},
		nil,
		time.Minute,
		testLogger(),
	)
	return f
}

// withHandler builds an orchestrator over the fixture's store that routes
// webSearch to h
func (f *fixture) withHandler(h focus.Handler) *Orchestrator {
	return NewOrchestrator(
		f.store,
		staticRouter{"webSearch": h},
		staticLoader{model: replyModel{reply: "<suggestions>\nWhat next?\n</suggestions>"}},
		nil,
		time.Minute,
		testLogger(),
	)
}

func newRequest(chatID, messageID, content string) *Request {
	return &Request{
		Message:          MessageInput{ChatID: chatID, MessageID: messageID, Content: content},
		OptimizationMode: "balanced",
		FocusMode:        "webSearch",
		ChatModel:        ModelRef{ProviderID: "test", Key: "m"},
	}
}

func collect(turn *Turn) []models.StreamEvent {
	var events []models.StreamEvent
	for ev := range turn.Events() {
		events = append(events, ev)
	}
	turn.Wait()
	return events
}

func roles(messages []models.Message) []models.Role {
	out := make([]models.Role, len(messages))
	for i, m := range messages {
		out[i] = m.Role
	}
	return out
}

var testSources = []models.SearchResult{{Title: "Paris", URL: "https://paris.example"}}
