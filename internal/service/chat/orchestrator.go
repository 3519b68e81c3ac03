package chat

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/services"
	"qwksearch/internal/service/focus"
	"qwksearch/internal/service/stream"
	"qwksearch/internal/telemetry"
)

const errStreamEnded = "answer stream ended unexpectedly"

// FocusRouter resolves a focus-mode key to its handler.
type FocusRouter interface {
	Resolve(key string) (focus.Handler, error)
}

// Orchestrator runs one chat turn: it resolves the focus handler and model,
// writes the user message, then fans the handler's events out to the network
// writer and, for signed-in users, to the persistence writer.
type Orchestrator struct {
	store       *Store
	router      FocusRouter
	models      services.ModelLoader
	metrics     *telemetry.Metrics
	turnTimeout time.Duration
	logger      *slog.Logger

	// one entry per started turn until its producer and consumers finish
	inflight conc.WaitGroup
}

// NewOrchestrator creates an orchestrator. turnTimeout bounds a turn's
// producer and persistence work after the client is gone.
func NewOrchestrator(
	store *Store,
	router FocusRouter,
	models services.ModelLoader,
	metrics *telemetry.Metrics,
	turnTimeout time.Duration,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:       store,
		router:      router,
		models:      models,
		metrics:     metrics,
		turnTimeout: turnTimeout,
		logger:      logger,
	}
}

// Turn is a running chat turn.
type Turn struct {
	// AssistantID is the message id of the answer being streamed
	AssistantID string

	network *stream.Subscription
	bus     *stream.Bus
	wg      conc.WaitGroup
	done    chan struct{}
}

// Events delivers the turn's events in order, ending with exactly one
// messageEnd or error event.
func (t *Turn) Events() <-chan models.StreamEvent {
	return t.network.Events()
}

// Detach stops delivery to the network consumer. The turn keeps running so
// the answer is still persisted.
func (t *Turn) Detach() {
	t.network.Detach()
}

// Wait blocks until the producer and persistence have finished and the
// turn's context has been released.
func (t *Turn) Wait() {
	<-t.done
}

// Drain blocks until every started turn has finished or ctx ends. Call it
// after the HTTP server has stopped accepting requests.
func (o *Orchestrator) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins a turn for a request that passed Validate. Unknown focus
// modes and models are rejected before anything is written; a failed
// user-message write is returned before any event is produced.
func (o *Orchestrator) Start(ctx context.Context, userID string, req *Request) (*Turn, error) {
	handler, err := o.router.Resolve(req.FocusMode)
	if err != nil {
		return nil, err
	}

	model, err := o.models.LoadChatModel(req.ChatModel.ProviderID, req.ChatModel.Key)
	if err != nil {
		return nil, err
	}

	session := o.store.For(userID)
	if err := session.BeginTurn(ctx, TurnStart{
		ChatID:    req.Message.ChatID,
		FocusMode: req.FocusMode,
		MessageID: req.Message.MessageID,
		Content:   req.Message.Content,
		Files:     FileRefs(req.Files),
	}); err != nil {
		return nil, err
	}

	// the turn outlives the request so a disconnect cannot lose the answer
	producerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.turnTimeout)

	logger := o.logger.With("chat_id", req.Message.ChatID, "focus_mode", req.FocusMode, "model", model.Name())
	turn := &Turn{
		AssistantID: uuid.NewString(),
		bus:         stream.NewBus(),
		done:        make(chan struct{}),
	}
	turn.network = turn.bus.Subscribe("network")

	var persist *stream.Subscription
	if session.Durable() {
		persist = turn.bus.Subscribe("persistence")
	}

	history := HistoryMessages(req.History)
	events := handler.SearchAndAnswer(producerCtx, focus.AnswerRequest{
		Query:              req.Message.Content,
		History:            history,
		Model:              model,
		OptimizationMode:   req.OptimizationMode,
		FileIDs:            req.Files,
		SystemInstructions: req.SystemInstructions,
	})

	turn.wg.Go(func() {
		o.forward(events, turn.bus, logger)
	})

	if persist != nil {
		p := &persister{
			session:     session,
			chatID:      req.Message.ChatID,
			assistantID: turn.AssistantID,
			model:       model,
			history:     append(slices.Clip(history), services.ChatMessage{Role: "user", Content: req.Message.Content}),
			logger:      logger,
		}
		turn.wg.Go(func() {
			p.run(producerCtx, persist.Events())
		})
	}

	o.inflight.Go(func() {
		defer close(turn.done)
		defer cancel()
		turn.wg.Wait()
		turn.bus.Wait()
	})

	logger.Info("chat turn started", "assistant_id", turn.AssistantID, "guest", !session.Durable())
	return turn, nil
}

// forward publishes handler events up to and including the first terminal
// one. A handler that closes early gets an error terminator; events after
// the terminator are discarded.
func (o *Orchestrator) forward(events <-chan models.StreamEvent, bus *stream.Bus, logger *slog.Logger) {
	defer bus.Close()

	terminated := false
	for ev := range events {
		if terminated {
			continue
		}
		o.metrics.StreamEvent(string(ev.Type))
		bus.Publish(ev)
		if ev.Terminal() {
			terminated = true
			if ev.Type == models.EventError {
				logger.Warn("chat turn failed", "error", ev.Message)
			}
		}
	}

	if !terminated {
		logger.Error("focus handler closed without a terminal event")
		o.metrics.StreamEvent(string(models.EventError))
		bus.Publish(models.ErrorEvent(errStreamEnded))
	}
}
