package metasearch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"qwksearch/internal/config"
	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/telemetry"
)

// maxBodyBytes bounds a single backend response
const maxBodyBytes = 5 << 20

// Client queries SearXNG backends. A query pinned to a private deployment is
// parsed as JSON; everything else goes to a random public mirror and is
// scraped from HTML. Empty pages are retried against a freshly sampled public
// mirror until the retry budget runs out.
type Client struct {
	pool       *InstancePool
	httpClient *http.Client
	maxRetries int
	proxy      string
	private    ResultNormalizer
	public     ResultNormalizer
	metrics    *telemetry.Metrics
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout is the per-attempt timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-attempt timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithMaxRetries sets the empty-result retry budget for one query
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithProxy prefixes public-mirror request URLs with a forwarding proxy
func WithProxy(proxy string) Option {
	return func(c *Client) { c.proxy = proxy }
}

// WithPublicNormalizer swaps the parse strategy used for unpinned backends,
// e.g. JSONNormalizer for a pool of JSON-capable instances.
func WithPublicNormalizer(n ResultNormalizer) Option {
	return func(c *Client) { c.public = n }
}

// WithMetrics records attempt outcomes
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a metasearch client over the given pool
func NewClient(pool *InstancePool, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		pool:       pool,
		httpClient: &http.Client{Timeout: config.DefaultSearchTimeout},
		maxRetries: config.DefaultSearchRetries,
		private:    JSONNormalizer{},
		public:     HTMLNormalizer{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs the query. The backend is called at most maxRetries+1 times.
// Failed attempts count as empty pages; an exhausted budget yields an empty
// response, not an error. Only context cancellation is returned as an error.
func (c *Client) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
	query = query.WithDefaults()
	pinned := query.Pinned
	budget := c.maxRetries

	for attempt := 1; ; attempt++ {
		resp := c.attempt(ctx, query, pinned, attempt)
		if len(resp.Results) > 0 {
			return resp, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if budget <= 0 || c.pool.Len() == 0 {
			c.logger.Info("metasearch exhausted",
				"query", query.Text,
				"attempts", attempt,
			)
			return resp, nil
		}
		budget--
		pinned = ""
	}
}

func (c *Client) attempt(ctx context.Context, query models.SearchQuery, pinned string, n int) *models.SearchResponse {
	empty := &models.SearchResponse{Results: []models.SearchResult{}, Suggestions: []string{}}

	instance := c.pool.Choose(pinned)
	if instance == "" {
		return empty
	}

	normalizer := c.public
	if pinned != "" {
		normalizer = c.private
	}

	reqURL := BuildURL(baseURL(instance), query, normalizer.QueryFormat())
	if pinned == "" && c.proxy != "" {
		reqURL = c.proxy + reqURL
	}

	start := time.Now()
	resp, err := c.fetch(ctx, reqURL, query.Language, normalizer)
	elapsed := time.Since(start).Seconds()

	switch {
	case err != nil:
		c.metrics.SearchAttempt(normalizer.Name(), telemetry.OutcomeError, elapsed)
		c.logger.Warn("metasearch attempt failed",
			"instance", instance,
			"path", normalizer.Name(),
			"attempt", n,
			"error", err,
		)
		return empty
	case len(resp.Results) == 0:
		c.metrics.SearchAttempt(normalizer.Name(), telemetry.OutcomeEmpty, elapsed)
		c.logger.Debug("metasearch attempt empty",
			"instance", instance,
			"path", normalizer.Name(),
			"attempt", n,
		)
	default:
		c.metrics.SearchAttempt(normalizer.Name(), telemetry.OutcomeOK, elapsed)
	}
	return resp
}

func (c *Client) fetch(ctx context.Context, reqURL, lang string, normalizer ResultNormalizer) (*models.SearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept-Language", lang+",en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrBackendUnavailable, resp.StatusCode)
	}

	return normalizer.Normalize(body)
}

// BuildURL encodes a query for a SearXNG instance at base. Recency values
// outside the allowed windows are dropped.
func BuildURL(base string, query models.SearchQuery, format string) string {
	query = query.WithDefaults()

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("/search?q=")
	b.WriteString(escapeComponent(query.Text))
	b.WriteString("&category_" + query.Category + "=1")
	b.WriteString("&language=" + escapeComponent(query.Language))
	if slices.Contains(models.RecencyWindows, query.Recency) {
		b.WriteString("&time_range=" + query.Recency)
	}
	if query.SafeSearch {
		b.WriteString("&safesearch=1")
	} else {
		b.WriteString("&safesearch=0")
	}
	b.WriteString("&pageno=" + strconv.Itoa(query.Page))
	if len(query.Engines) > 0 {
		b.WriteString("&engines=" + escapeComponent(strings.Join(query.Engines, ",")))
	}
	if format != "" {
		b.WriteString("&format=" + format)
	}
	return b.String()
}

// escapeComponent percent-encodes like encodeURIComponent: spaces become %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
