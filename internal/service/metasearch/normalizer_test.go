package metasearch

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	body, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return body
}

func TestHTMLNormalizer_Normalize(t *testing.T) {
	resp, err := HTMLNormalizer{}.Normalize(readFixture(t, "results.html"))
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Empty(t, resp.Suggestions)

	first := resp.Results[0]
	assert.Equal(t, "Paris - Wikipedia", first.Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Paris", first.URL)
	assert.Equal(t, "Paris is the capital and largest city of France & its region.", first.Snippet)
	assert.Equal(t, first.Snippet, first.Content)
	assert.Equal(t, "en.wikipedia.org", first.Domain)
	assert.Equal(t, "https://www.google.com/s2/favicons?domain=en.wikipedia.org&sz=16", first.Favicon)
	assert.Equal(t, first.Favicon, first.Thumbnail)
	assert.Nil(t, first.Score)

	second := resp.Results[1]
	assert.Equal(t, "Example Domain", second.Title)
	assert.Equal(t, "https://www.example.com/search?a=1&b=2", second.URL)
	assert.Empty(t, second.Snippet)
	assert.Equal(t, "example.com", second.Domain)
}

func TestHTMLNormalizer_EmptyPage(t *testing.T) {
	resp, err := HTMLNormalizer{}.Normalize([]byte("<html><body>No results</body></html>"))
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func TestJSONNormalizer_Normalize(t *testing.T) {
	resp, err := JSONNormalizer{}.Normalize(readFixture(t, "results.json"))
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, []string{"paris france", "paris olympics"}, resp.Suggestions)
	assert.Len(t, resp.Infoboxes, 1)

	first := resp.Results[0]
	assert.Equal(t, "Paris hosts the summer games again", first.Title)
	assert.Equal(t, "https://www.bbc.co.uk/news/paris?a=1&b=2", first.URL)
	assert.Equal(t, "Paris welcomed athletes", first.Snippet)
	assert.Equal(t, "bbc.co.uk", first.Domain)
	require.NotNil(t, first.Score)
	assert.Equal(t, 3.14, *first.Score)
	assert.Equal(t, "2024-07-26", first.Date)
	assert.Equal(t, "BBC", first.Source)
	assert.Equal(t, "https://img.example/t.png", first.Thumbnail)

	second := resp.Results[1]
	assert.Equal(t, "Paris", second.Title)
	assert.Equal(t, "nytimes.com", second.Domain)
	assert.Equal(t, "Nytimes", second.Source)
	assert.Empty(t, second.Date)
	assert.Equal(t, "https://www.google.com/s2/favicons?domain=nytimes.com&sz=16", second.Thumbnail)
}

func TestJSONNormalizer_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "html page", body: "<html></html>"},
		{name: "empty body", body: ""},
		{name: "truncated json", body: `{"results": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JSONNormalizer{}.Normalize([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestJSONNormalizer_NoSuggestions(t *testing.T) {
	resp, err := JSONNormalizer{}.Normalize([]byte(`{"results": []}`))
	require.NoError(t, err)
	assert.NotNil(t, resp.Suggestions)
	assert.Empty(t, resp.Results)
}
