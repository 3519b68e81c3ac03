package focus

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/services"
)

// Optimization modes accepted by the chat endpoint
const (
	ModeSpeed    = "speed"
	ModeBalanced = "balanced"
	ModeQuality  = "quality"
)

// OptimizationModes lists the accepted optimization modes
var OptimizationModes = []string{ModeSpeed, ModeBalanced, ModeQuality}

// sourceLimits bounds how many search results reach the model per mode
var sourceLimits = map[string]int{
	ModeSpeed:    5,
	ModeBalanced: 8,
	ModeQuality:  12,
}

// AnswerRequest is one turn handed to a focus handler.
type AnswerRequest struct {
	Query              string
	History            []services.ChatMessage
	Model              services.ChatModel
	OptimizationMode   string
	FileIDs            []string
	SystemInstructions string
}

// Handler answers a query for one focus mode. The returned channel carries
// the turn's events and is closed after the terminal event.
type Handler interface {
	SearchAndAnswer(ctx context.Context, req AnswerRequest) <-chan models.StreamEvent
}

// Router maps focus-mode keys to handlers.
type Router struct {
	handlers map[string]Handler
}

// NewRouter creates a router with the built-in focus modes.
func NewRouter(searcher services.Searcher, logger *slog.Logger) *Router {
	r := &Router{handlers: make(map[string]Handler)}
	for _, cfg := range builtinModes {
		r.Register(cfg.Key, NewMetaSearchHandler(cfg, searcher, logger))
	}
	return r
}

// Register adds or replaces the handler for key.
func (r *Router) Register(key string, h Handler) {
	r.handlers[key] = h
}

// Resolve returns the handler for a focus-mode key or wraps
// domain.ErrUnknownFocusMode.
func (r *Router) Resolve(key string) (Handler, error) {
	h, ok := r.handlers[key]
	if !ok {
		return nil, fmt.Errorf("focus mode %q: %w", key, domain.ErrUnknownFocusMode)
	}
	return h, nil
}

// Modes returns the registered keys in sorted order.
func (r *Router) Modes() []string {
	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
