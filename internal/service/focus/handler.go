package focus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"qwksearch/internal/config"
	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/services"
)

// MetaSearchHandler searches (unless the mode skips it), emits the sources,
// then streams the model's answer.
type MetaSearchHandler struct {
	cfg      ModeConfig
	searcher services.Searcher
	logger   *slog.Logger
}

// NewMetaSearchHandler creates a handler for one focus mode.
func NewMetaSearchHandler(cfg ModeConfig, searcher services.Searcher, logger *slog.Logger) *MetaSearchHandler {
	return &MetaSearchHandler{cfg: cfg, searcher: searcher, logger: logger.With("focus_mode", cfg.Key)}
}

func (h *MetaSearchHandler) SearchAndAnswer(ctx context.Context, req AnswerRequest) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent, config.EventBufferSize)

	go func() {
		defer close(events)

		var sources []models.SearchResult
		if h.cfg.SearchWeb {
			var err error
			sources, err = h.search(ctx, req)
			if err != nil {
				emit(ctx, events, models.ErrorEvent("An error occurred while searching the web"))
				return
			}
			if len(sources) > 0 && !emit(ctx, events, models.SourcesEvent(sources)) {
				return
			}
		}

		chunks, err := req.Model.Stream(ctx, h.buildPrompt(req, sources))
		if err != nil {
			h.logger.Error("model stream failed to start", "model", req.Model.Name(), "error", err)
			emit(ctx, events, models.ErrorEvent("An error occurred while processing your message"))
			return
		}

		for chunk := range chunks {
			if chunk.Err != nil {
				h.logger.Error("model stream failed", "model", req.Model.Name(), "error", chunk.Err)
				emit(ctx, events, models.ErrorEvent("An error occurred while processing your message"))
				for range chunks {
				}
				return
			}
			if !emit(ctx, events, models.ResponseEvent(chunk.Text)) {
				for range chunks {
				}
				return
			}
		}

		emit(ctx, events, models.MessageEndEvent())
	}()

	return events
}

// search runs the mode's query. No results is not an error: the model still
// answers, without sources.
func (h *MetaSearchHandler) search(ctx context.Context, req AnswerRequest) ([]models.SearchResult, error) {
	resp, err := h.searcher.Search(ctx, services.SearchRequest{
		Query: models.SearchQuery{
			Text:     h.cfg.QueryPrefix + req.Query,
			Category: h.cfg.Category,
			Engines:  h.cfg.Engines,
		},
	})
	if errors.Is(err, domain.ErrNoResults) {
		h.logger.Info("no sources for query", "query", req.Query)
		return nil, nil
	}
	if err != nil {
		h.logger.Error("search failed", "query", req.Query, "error", err)
		return nil, err
	}

	limit, ok := sourceLimits[req.OptimizationMode]
	if !ok {
		limit = sourceLimits[ModeBalanced]
	}
	results := resp.Results
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (h *MetaSearchHandler) buildPrompt(req AnswerRequest, sources []models.SearchResult) []services.ChatMessage {
	var system strings.Builder
	system.WriteString(h.cfg.Prompt)

	if h.cfg.SearchWeb {
		system.WriteString("\n\n<context>\n")
		for i, s := range sources {
			fmt.Fprintf(&system, "[%d] %s\n%s\n%s\n\n", i+1, s.Title, s.URL, s.Snippet)
		}
		system.WriteString("</context>")
	}

	if req.SystemInstructions != "" {
		system.WriteString("\n\nUser instructions:\n")
		system.WriteString(req.SystemInstructions)
	}

	messages := make([]services.ChatMessage, 0, len(req.History)+2)
	messages = append(messages, services.ChatMessage{Role: "system", Content: system.String()})
	messages = append(messages, req.History...)
	messages = append(messages, services.ChatMessage{Role: "user", Content: req.Query})
	return messages
}

// emit sends ev unless ctx ends first.
func emit(ctx context.Context, events chan<- models.StreamEvent, ev models.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
