package handler

import (
	"log/slog"
	"net/http"

	"qwksearch/internal/httputil"
	"qwksearch/internal/service/llm"
)

// ProviderLister lists the model catalog. *llm.Registry implements it.
type ProviderLister interface {
	Providers() []llm.ProviderInfo
}

// ModelsHandler serves the model catalog
type ModelsHandler struct {
	providers ProviderLister
	logger    *slog.Logger
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(providers ProviderLister, logger *slog.Logger) *ModelsHandler {
	return &ModelsHandler{providers: providers, logger: logger}
}

// ListModels handles GET /api/models. Providers without credentials are
// listed with available=false so clients can grey them out.
func (h *ModelsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	providers := h.providers.Providers()
	if providers == nil {
		providers = []llm.ProviderInfo{}
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"providers": providers})
}
