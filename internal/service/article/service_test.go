package article

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/repository/memory"
)

var paragraph = strings.Repeat("Hydrothermal vents support whole ecosystems without sunlight, feeding on chemical energy from the crust. ", 8)

var page = `<!DOCTYPE html>
<html><head><title>Deep Sea Vents</title>
<meta property="og:site_name" content="Ocean Weekly">
</head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Deep Sea Vents</h1>
<p>` + paragraph + `</p>
<p>` + paragraph + `</p>
<p>` + paragraph + `</p>
<script>alert("x")</script>
</article>
</body></html>`

func newTestService(t *testing.T) (*Service, *atomic.Int32, string) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, page)
	}))
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(memory.NewArticleRepository(memory.NewDB()), server.Client(), logger)
	return svc, &hits, server.URL
}

func TestService_GetFetchesThenCaches(t *testing.T) {
	svc, hits, base := newTestService(t)
	ctx := context.Background()
	url := base + "/vents"

	article, cached, err := svc.Get(ctx, url)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Contains(t, article.Title, "Deep Sea Vents")
	assert.Greater(t, article.WordCount, 100)
	assert.Contains(t, article.HTML, "Hydrothermal vents")
	assert.NotContains(t, article.HTML, "<script")
	assert.Empty(t, article.FollowUpQuestions)
	assert.Empty(t, article.QAHistory)

	require.NoError(t, svc.Annotate(ctx, url, models.QAPair{Question: "Why?", Answer: "Chemistry."}, []string{"How deep?"}))

	again, cached, err := svc.Get(ctx, url)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, article.Title, again.Title)
	assert.Equal(t, []models.QAPair{{Question: "Why?", Answer: "Chemistry."}}, again.QAHistory)
	assert.Equal(t, []string{"How deep?"}, again.FollowUpQuestions)
	assert.Equal(t, int32(1), hits.Load())
}

func TestService_GetErrors(t *testing.T) {
	svc, _, base := newTestService(t)

	tests := []struct {
		name           string
		url            string
		wantValidation bool
	}{
		{name: "blank", url: "", wantValidation: true},
		{name: "relative", url: "/vents", wantValidation: true},
		{name: "unsupported scheme", url: "ftp://example.com/a", wantValidation: true},
		{name: "upstream 404", url: base + "/missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Get(context.Background(), tt.url)
			require.Error(t, err)
			assert.Equal(t, tt.wantValidation, errors.Is(err, domain.ErrValidation))
		})
	}
}

func TestService_AnnotateRequiresURL(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.Annotate(context.Background(), "", models.QAPair{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_AnnotateIgnoresHalfPairs(t *testing.T) {
	svc, _, base := newTestService(t)
	ctx := context.Background()
	url := base + "/vents"

	_, _, err := svc.Get(ctx, url)
	require.NoError(t, err)
	require.NoError(t, svc.Annotate(ctx, url, models.QAPair{Question: "only a question"}, nil))

	article, _, err := svc.Get(ctx, url)
	require.NoError(t, err)
	assert.Empty(t, article.QAHistory)
}
