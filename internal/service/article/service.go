// Package article extracts readable articles from web pages and caches them
// with their reader Q&A history.
package article

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
)

const (
	defaultFetchTimeout = 20 * time.Second
	maxPageBytes        = 8 << 20
	userAgent           = "Mozilla/5.0 (compatible; qwksearch/1.0; +https://qwksearch.com)"
)

// Service serves extracted articles from the cache, fetching on a miss.
type Service struct {
	articles   repositories.ArticleRepository
	httpClient *http.Client
	policy     *bluemonday.Policy
	logger     *slog.Logger
}

// NewService creates an article service. A nil httpClient gets a default
// client with a 20s timeout.
func NewService(articles repositories.ArticleRepository, httpClient *http.Client, logger *slog.Logger) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Service{
		articles:   articles,
		httpClient: httpClient,
		policy:     bluemonday.UGCPolicy(),
		logger:     logger,
	}
}

// Get returns the article for rawURL and whether it came from the cache.
// Cached articles carry their Q&A history.
func (s *Service) Get(ctx context.Context, rawURL string) (*models.Article, bool, error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, false, err
	}

	cached, err := s.articles.Get(ctx, rawURL)
	if err == nil {
		qa, err := s.articles.ListQA(ctx, rawURL)
		if err != nil {
			return nil, false, err
		}
		cached.QAHistory = qa
		return cached, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	article, err := s.extract(ctx, u)
	if err != nil {
		return nil, false, err
	}
	if err := s.articles.Put(ctx, article); err != nil {
		s.logger.Error("failed to cache article", "url", rawURL, "error", err)
	}

	article.FollowUpQuestions = []string{}
	article.QAHistory = []models.QAPair{}
	return article, false, nil
}

// Annotate stores a Q&A pair when both halves are present and replaces the
// follow-up questions when followUps is non-nil.
func (s *Service) Annotate(ctx context.Context, rawURL string, qa models.QAPair, followUps []string) error {
	if rawURL == "" {
		return &domain.ValidationError{
			Message: "URL is required",
			Issues:  []domain.FieldIssue{{Path: "url", Message: "cannot be blank"}},
		}
	}

	if qa.Question != "" && qa.Answer != "" {
		if err := s.articles.AddQA(ctx, rawURL, qa); err != nil {
			return err
		}
	}
	if followUps != nil {
		if err := s.articles.SetFollowUps(ctx, rawURL, followUps); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) extract(ctx context.Context, u *url.URL) (*models.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}

	parsed, err := readability.FromReader(io.LimitReader(resp.Body, maxPageBytes), u)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", u, err)
	}

	article := &models.Article{
		URL:       u.String(),
		Title:     strings.TrimSpace(parsed.Title),
		Author:    strings.TrimSpace(parsed.Byline),
		Source:    strings.TrimSpace(parsed.SiteName),
		WordCount: len(strings.Fields(parsed.TextContent)),
		HTML:      s.policy.Sanitize(parsed.Content),
	}
	if article.Source == "" {
		article.Source = strings.TrimPrefix(u.Hostname(), "www.")
	}
	if parsed.PublishedTime != nil {
		article.Date = parsed.PublishedTime.Format("2006-01-02")
	}
	applyCitation(article)

	s.logger.Debug("article extracted", "url", article.URL, "words", article.WordCount)
	return article, nil
}

func parseURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, &domain.ValidationError{
			Message: "URL parameter is required",
			Issues:  []domain.FieldIssue{{Path: "url", Message: "cannot be blank"}},
		}
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &domain.ValidationError{
			Message: "Invalid URL",
			Issues:  []domain.FieldIssue{{Path: "url", Message: "must be an absolute http(s) URL"}},
		}
	}
	return u, nil
}
