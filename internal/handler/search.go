package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/services"
	"qwksearch/internal/httputil"
)

// SearchHandler serves GET /api/search
type SearchHandler struct {
	searcher services.Searcher
	logger   *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher services.Searcher, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, logger: logger}
}

type searchResponse struct {
	*models.SearchResponse
	ElapsedTime int64 `json:"elapsedTime"`
}

// Search handles GET /api/search?q=&cat=&page=&lang=&safesearch=&recency=&publicInstances=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	text := strings.TrimSpace(params.Get("q"))
	if text == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}

	category := params.Get("cat")
	if category == "" {
		category = "general"
	}
	if !slices.Contains(models.Categories, category) {
		httputil.RespondValidationError(w, &domain.ValidationError{
			Message: "Invalid category",
			Issues:  []domain.FieldIssue{{Path: "cat", Message: "must be one of " + strings.Join(models.Categories, ", ")}},
		})
		return
	}

	page, err := strconv.Atoi(params.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	req := services.SearchRequest{
		Query: models.SearchQuery{
			Text:       text,
			Category:   category,
			Recency:    params.Get("recency"),
			SafeSearch: params.Get("safesearch") == "true",
			Language:   params.Get("lang"),
			Page:       page,
		}.WithDefaults(),
		PublicOnly: params.Get("publicInstances") == "true",
	}

	start := time.Now()
	resp, err := h.searcher.Search(r.Context(), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, searchResponse{
		SearchResponse: resp,
		ElapsedTime:    time.Since(start).Milliseconds(),
	})
}
