package handler

import (
	"context"
	"log/slog"
	"net/http"

	"qwksearch/internal/domain/models"
	"qwksearch/internal/httputil"
)

// ArticleService extracts and annotates articles. *article.Service
// implements it.
type ArticleService interface {
	Get(ctx context.Context, url string) (*models.Article, bool, error)
	Annotate(ctx context.Context, url string, qa models.QAPair, followUps []string) error
}

// ArticleHandler serves the article reader routes
type ArticleHandler struct {
	articles ArticleService
	logger   *slog.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articles ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, logger: logger}
}

// GetArticle handles GET /api/article?url=
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")

	article, cached, err := h.articles.Get(r.Context(), url)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"cached":  cached,
		"article": article,
	})
}

type annotateRequest struct {
	URL               string   `json:"url"`
	Question          string   `json:"question"`
	Answer            string   `json:"answer"`
	FollowUpQuestions []string `json:"followUpQuestions"`
}

// AnnotateArticle handles POST /api/article
func (h *ArticleHandler) AnnotateArticle(w http.ResponseWriter, r *http.Request) {
	var req annotateRequest
	if !parseBody(w, r, &req) {
		return
	}

	qa := models.QAPair{Question: req.Question, Answer: req.Answer}
	if err := h.articles.Annotate(r.Context(), req.URL, qa, req.FollowUpQuestions); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
