package models

import "encoding/json"

// SearchResult is the canonical result shape shared by every backend.
// URL is the identity of a result.
type SearchResult struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Snippet      string   `json:"snippet,omitempty"`
	Domain       string   `json:"domain,omitempty"`
	Favicon      string   `json:"favicon,omitempty"`
	Score        *float64 `json:"score,omitempty"`
	Date         string   `json:"date,omitempty"`
	Source       string   `json:"source,omitempty"`
	Author       string   `json:"author,omitempty"`
	ImgSrc       string   `json:"img_src,omitempty"`
	ThumbnailSrc string   `json:"thumbnail_src,omitempty"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
	IframeSrc    string   `json:"iframe_src,omitempty"`
	// Content mirrors Snippet for older clients.
	Content string `json:"content,omitempty"`
}

// SearchResponse is what one metasearch query yields.
type SearchResponse struct {
	Results     []SearchResult    `json:"results"`
	Suggestions []string          `json:"suggestions"`
	Infoboxes   []json.RawMessage `json:"infoboxes,omitempty"`
}

// Categories accepted by the metasearch backends.
var Categories = []string{
	"general",
	"news",
	"videos",
	"images",
	"science",
	"it",
	"files",
	"social+media",
}

// RecencyWindows are the only time ranges forwarded to a backend.
var RecencyWindows = []string{"day", "week", "month", "year"}

// SearchQuery is one immutable metasearch request.
type SearchQuery struct {
	Text       string
	Category   string
	Recency    string
	SafeSearch bool
	Language   string
	Page       int
	Engines    []string
	// Pinned is the base URL of an authoritative JSON-capable deployment.
	// Empty lets the instance pool choose.
	Pinned string
}

// WithDefaults fills category, language and page when unset.
func (q SearchQuery) WithDefaults() SearchQuery {
	if q.Category == "" {
		q.Category = "general"
	}
	if q.Language == "" {
		q.Language = "en-US"
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}
