package metasearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Paris", want: "Paris"},
		{name: "strips tags", input: "<b>Paris</b> is lovely", want: "Paris is lovely"},
		{name: "breadcrumb takes longest segment", input: "Wiki | Capital of France and its history", want: "Capital of France and its history"},
		{name: "dash separated", input: "Paris travel guide for 2024 - Lonely Planet", want: "Paris travel guide for 2024"},
		{name: "short segments keep title", input: "A | B", want: "A | B"},
		{name: "decodes entities", input: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "unterminated tag", input: "Paris <span", want: "Paris "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanTitle(tt.input))
		})
	}
}

func TestDecodeEntities(t *testing.T) {
	assert.Equal(t, `<a href="x">it's & more</a>`, decodeEntities("&lt;a href=&quot;x&quot;&gt;it&#39;s &amp; more&lt;/a&gt;"))
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://www.example.com/path?q=1", want: "example.com"},
		{url: "http://news.bbc.co.uk/a/b", want: "news.bbc.co.uk"},
		{url: "example.org", want: "example.org"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, domainOf(tt.url))
		})
	}
}

func TestFaviconURL(t *testing.T) {
	assert.Equal(t, "https://www.google.com/s2/favicons?domain=example.com&sz=16", faviconURL("https://www.example.com/page"))
	assert.Equal(t, "https://www.google.com/s2/favicons?domain=example.com&sz=16", faviconURL("example.com"))
	assert.Equal(t, "", faviconURL(""))
}

func TestSourceFromDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{domain: "nytimes.com", want: "Nytimes"},
		{domain: "news.bbc.co.uk", want: "BBC"},
		{domain: "en.wikipedia.org", want: "Wikipedia"},
		{domain: "my-site.dev:8080", want: "My-Site"},
		{domain: "com", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, sourceFromDomain(tt.domain))
		})
	}
}

func TestParseMetadata(t *testing.T) {
	date, source := parseMetadata("2024-03-05 | Reuters")
	assert.Equal(t, "2024-03-05", date)
	assert.Equal(t, "Reuters", source)

	date, source = parseMetadata("no separator here")
	assert.Empty(t, date)
	assert.Empty(t, source)

	date, source = parseMetadata("yesterday-ish | AP")
	assert.Empty(t, date)
	assert.Equal(t, "AP", source)
}
