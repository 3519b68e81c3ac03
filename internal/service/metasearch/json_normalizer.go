package metasearch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"qwksearch/internal/domain/models"
)

var errNotJSON = errors.New("response is not JSON")

// JSONNormalizer parses SearXNG's format=json responses, served by private
// deployments.
type JSONNormalizer struct{}

func (JSONNormalizer) Name() string        { return "json" }
func (JSONNormalizer) QueryFormat() string { return "json" }

type searxngResponse struct {
	Results     []searxngResult   `json:"results"`
	Suggestions []string          `json:"suggestions"`
	Infoboxes   []json.RawMessage `json:"infoboxes"`
}

type searxngResult struct {
	Title        string          `json:"title"`
	URL          string          `json:"url"`
	Content      string          `json:"content"`
	Score        float64         `json:"score"`
	Metadata     json.RawMessage `json:"metadata"`
	Author       string          `json:"author"`
	ImgSrc       string          `json:"img_src"`
	ThumbnailSrc string          `json:"thumbnail_src"`
	Thumbnail    string          `json:"thumbnail"`
	IframeSrc    string          `json:"iframe_src"`
}

func (n JSONNormalizer) Normalize(body []byte) (*models.SearchResponse, error) {
	body = bytes.TrimSpace(body)
	if !bytes.HasPrefix(body, []byte("{")) {
		return nil, errNotJSON
	}

	var raw searxngResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode searxng json: %w", err)
	}

	results := make([]models.SearchResult, 0, len(raw.Results))
	for _, r := range raw.Results {
		results = append(results, n.normalizeResult(r))
	}

	suggestions := raw.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	return &models.SearchResponse{
		Results:     results,
		Suggestions: suggestions,
		Infoboxes:   raw.Infoboxes,
	}, nil
}

func (JSONNormalizer) normalizeResult(r searxngResult) models.SearchResult {
	snippet := stripTags(r.Content)
	score := math.Round(r.Score*100) / 100
	domain := domainOf(r.URL)

	var date, source string
	var metadata string
	if len(r.Metadata) > 0 && json.Unmarshal(r.Metadata, &metadata) == nil {
		date, source = parseMetadata(metadata)
	}
	if source == "" && domain != "" {
		source = sourceFromDomain(domain)
	}

	favicon := faviconURL(r.URL)
	return models.SearchResult{
		Title:        cleanTitle(r.Title),
		URL:          strings.ReplaceAll(r.URL, "&amp;", "&"),
		Snippet:      snippet,
		Domain:       domain,
		Favicon:      favicon,
		Score:        &score,
		Date:         date,
		Source:       source,
		Author:       r.Author,
		ImgSrc:       r.ImgSrc,
		ThumbnailSrc: r.ThumbnailSrc,
		Thumbnail:    firstNonEmpty(r.Thumbnail, favicon),
		IframeSrc:    r.IframeSrc,
		Content:      snippet,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
