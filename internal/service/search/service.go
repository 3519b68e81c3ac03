package search

import (
	"context"
	"fmt"
	"log/slog"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/services"
	"qwksearch/internal/telemetry"
)

// Stages that can resolve a search request, used as metric labels.
const (
	StagePrivate = "private"
	StagePublic  = "public"
	StageTavily  = "tavily"
	StageCache   = "cache"
	StageNone    = "none"
)

// Backend runs one metasearch query including its own retry loop.
// *metasearch.Client implements it.
type Backend interface {
	Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error)
}

// Fallback is a secondary search provider consulted after the SearXNG pool
// came back empty.
type Fallback interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

// Service implements services.Searcher. A query goes to the private
// deployment first, then once to the public pool, then to the optional
// fallback provider.
type Service struct {
	backend    Backend
	privateURL string
	fallback   Fallback
	cache      Cache
	metrics    *telemetry.Metrics
	logger     *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithFallback sets the provider queried when SearXNG has nothing
func WithFallback(f Fallback) Option {
	return func(s *Service) { s.fallback = f }
}

// WithCache caches non-empty responses
func WithCache(c Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithMetrics records which stage resolved each request
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a search service. An empty privateURL sends every query
// straight to the public pool.
func NewService(backend Backend, privateURL string, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		backend:    backend,
		privateURL: privateURL,
		cache:      noopCache{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ services.Searcher = (*Service)(nil)

// Search runs the fallback chain and returns domain.ErrNoResults when every
// stage was empty.
func (s *Service) Search(ctx context.Context, req services.SearchRequest) (*models.SearchResponse, error) {
	query := req.Query.WithDefaults()
	key := CacheKey(query, req.PublicOnly)

	if cached, ok := s.cache.Get(ctx, key); ok {
		s.metrics.SearchResolved(StageCache)
		return cached, nil
	}

	resp, stage, err := s.resolve(ctx, query, req.PublicOnly)
	if err != nil {
		return nil, err
	}
	s.metrics.SearchResolved(stage)

	if stage == StageNone {
		s.logger.Info("search returned no results", "query", query.Text, "category", query.Category)
		return nil, fmt.Errorf("%q: %w", query.Text, domain.ErrNoResults)
	}

	s.cache.Set(ctx, key, resp)
	return resp, nil
}

func (s *Service) resolve(ctx context.Context, query models.SearchQuery, publicOnly bool) (*models.SearchResponse, string, error) {
	if !publicOnly && s.privateURL != "" {
		pinned := query
		pinned.Pinned = s.privateURL
		resp, err := s.backend.Search(ctx, pinned)
		if err != nil {
			return nil, "", err
		}
		if len(resp.Results) > 0 {
			return resp, StagePrivate, nil
		}
		s.logger.Debug("private search empty, trying public pool", "query", query.Text)
	}

	query.Pinned = ""
	resp, err := s.backend.Search(ctx, query)
	if err != nil {
		return nil, "", err
	}
	if len(resp.Results) > 0 {
		return resp, StagePublic, nil
	}

	if s.fallback == nil {
		return resp, StageNone, nil
	}

	results, err := s.fallback.Search(ctx, query.Text, 10)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		s.logger.Warn("fallback search failed", "query", query.Text, "error", err)
		return resp, StageNone, nil
	}
	if len(results) == 0 {
		return resp, StageNone, nil
	}
	return &models.SearchResponse{Results: results, Suggestions: []string{}}, StageTavily, nil
}
