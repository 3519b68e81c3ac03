package metasearch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qwksearch/internal/domain/models"
	"qwksearch/internal/telemetry"
)

const emptyPage = `<html><body><div id="urls"></div></body></html>`

const hitPage = `<html><body>
<article class="result result-default">
<h3><a href="https://example.org/paris" rel="noreferrer">Paris travel</a></h3>
<p class="content">Guide to Paris</p>
</article>
</body></html>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingServer answers with hitPage once calls reaches hitOn (1-based),
// or never when hitOn is 0.
func countingServer(t *testing.T, hitOn int64, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if hitOn > 0 && n >= hitOn {
			_, _ = w.Write([]byte(hitPage))
			return
		}
		_, _ = w.Write([]byte(emptyPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RetriesEmptyPages(t *testing.T) {
	var calls atomic.Int64
	srv := countingServer(t, 6, &calls)

	client := NewClient(NewInstancePool([]string{srv.URL}), discardLogger(), WithMaxRetries(6))
	resp, err := client.Search(context.Background(), models.SearchQuery{Text: "paris"})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "https://example.org/paris", resp.Results[0].URL)
	assert.Equal(t, int64(6), calls.Load())
}

func TestClient_ExhaustedBudget(t *testing.T) {
	tests := []struct {
		name    string
		retries int
	}{
		{name: "no retries", retries: 0},
		{name: "default budget", retries: 6},
		{name: "small budget", retries: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int64
			srv := countingServer(t, 0, &calls)

			client := NewClient(NewInstancePool([]string{srv.URL}), discardLogger(), WithMaxRetries(tt.retries))
			resp, err := client.Search(context.Background(), models.SearchQuery{Text: "zzzz"})

			require.NoError(t, err)
			assert.Empty(t, resp.Results)
			assert.Equal(t, int64(tt.retries+1), calls.Load())
		})
	}
}

func TestClient_PinnedUsesJSONOnFirstAttemptOnly(t *testing.T) {
	var pinnedCalls, publicCalls atomic.Int64

	private := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pinnedCalls.Add(1)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer private.Close()

	public := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		publicCalls.Add(1)
		assert.Empty(t, r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(hitPage))
	}))
	defer public.Close()

	client := NewClient(NewInstancePool([]string{public.URL}), discardLogger())
	resp, err := client.Search(context.Background(), models.SearchQuery{Text: "paris", Pinned: private.URL})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, int64(1), pinnedCalls.Load())
	assert.Equal(t, int64(1), publicCalls.Load())
}

func TestClient_PinnedHit(t *testing.T) {
	private := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en-US,en;q=0.9", r.Header.Get("Accept-Language"))
		_, _ = w.Write([]byte(`{"results": [{"url": "https://a.example/x", "title": "A result", "content": "body", "score": 1}]}`))
	}))
	defer private.Close()

	client := NewClient(NewInstancePool(nil), discardLogger())
	resp, err := client.Search(context.Background(), models.SearchQuery{Text: "a", Pinned: private.URL})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "A result", resp.Results[0].Title)
}

func TestClient_ServerErrorsCountAsEmpty(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(hitPage))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	client := NewClient(NewInstancePool([]string{srv.URL}), discardLogger(), WithMetrics(metrics))
	resp, err := client.Search(context.Background(), models.SearchQuery{Text: "paris"})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, int64(3), calls.Load())

	count, err := testutil.GatherAndCount(reg, "qwksearch_metasearch_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestClient_CancelledContext(t *testing.T) {
	var calls atomic.Int64
	srv := countingServer(t, 0, &calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(NewInstancePool([]string{srv.URL}), discardLogger())
	_, err := client.Search(ctx, models.SearchQuery{Text: "paris"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), calls.Load())
}

func TestClient_ProxyOnlyForPublicRequests(t *testing.T) {
	var seen atomic.Value
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.URL.Path)
		_, _ = w.Write([]byte(hitPage))
	}))
	defer proxy.Close()

	client := NewClient(NewInstancePool([]string{"mirror.example"}), discardLogger(), WithProxy(proxy.URL+"/fetch/"))
	resp, err := client.Search(context.Background(), models.SearchQuery{Text: "paris"})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	path, _ := seen.Load().(string)
	assert.True(t, strings.HasPrefix(path, "/fetch/https:/"), path)
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		query    models.SearchQuery
		format   string
		contains []string
		absent   []string
	}{
		{
			name:     "defaults",
			query:    models.SearchQuery{Text: "paris"},
			contains: []string{"https://s.example/search?q=paris", "&category_general=1", "&language=en-US", "&safesearch=0", "&pageno=1"},
			absent:   []string{"time_range", "engines", "format"},
		},
		{
			name:     "spaces encoded as %20",
			query:    models.SearchQuery{Text: "eiffel tower & louvre"},
			contains: []string{"q=eiffel%20tower%20%26%20louvre"},
		},
		{
			name:     "allowed recency",
			query:    models.SearchQuery{Text: "x", Recency: "week"},
			contains: []string{"&time_range=week"},
		},
		{
			name:   "unknown recency dropped",
			query:  models.SearchQuery{Text: "x", Recency: "decade"},
			absent: []string{"time_range"},
		},
		{
			name:     "safe search and page",
			query:    models.SearchQuery{Text: "x", SafeSearch: true, Page: 3, Category: "news"},
			contains: []string{"&safesearch=1", "&pageno=3", "&category_news=1"},
		},
		{
			name:     "engines and json",
			query:    models.SearchQuery{Text: "x", Engines: []string{"youtube", "bing videos"}},
			format:   "json",
			contains: []string{"&engines=youtube%2Cbing%20videos", "&format=json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildURL("https://s.example", tt.query, tt.format)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}
