package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilyClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "key", req.APIKey)
		assert.Equal(t, "paris", req.Query)
		assert.Equal(t, 20, req.MaxResults)

		_, _ = w.Write([]byte(`{"query":"paris","results":[
			{"title":"Paris","url":"https://a.example","content":"capital","score":0.876,"published_date":"2024-05-01T10:00:00Z"},
			{"title":"Louvre","url":"https://b.example","content":"museum","score":0.5}
		]}`))
	}))
	defer srv.Close()

	client := NewTavilyClientWithConfig("key", srv.URL, time.Second)
	results, err := client.Search(context.Background(), "paris", 50)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://a.example", results[0].URL)
	assert.Equal(t, "capital", results[0].Snippet)
	assert.Equal(t, "2024-05-01", results[0].Date)
	require.NotNil(t, results[0].Score)
	assert.Equal(t, 0.88, *results[0].Score)
	assert.Empty(t, results[1].Date)
}

func TestTavilyClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewTavilyClientWithConfig("key", srv.URL, time.Second)
	_, err := client.Search(context.Background(), "paris", 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
