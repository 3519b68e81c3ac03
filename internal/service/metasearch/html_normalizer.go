package metasearch

import (
	"regexp"

	"qwksearch/internal/domain/models"
)

var (
	resultBlockPattern = regexp.MustCompile(`<article class="result[^>]*>[\s\S]*?</article>`)
	titleURLPattern    = regexp.MustCompile(`<h3><a href="([^"]*)"[^>]*>(.*?)</a></h3>`)
	snippetPattern     = regexp.MustCompile(`<p class="content">\s*(.*?)\s*</p>`)
)

// HTMLNormalizer scrapes the result page served by public SearXNG mirrors.
// Blocks without a title link are skipped.
type HTMLNormalizer struct{}

func (HTMLNormalizer) Name() string        { return "html" }
func (HTMLNormalizer) QueryFormat() string { return "" }

func (HTMLNormalizer) Normalize(body []byte) (*models.SearchResponse, error) {
	blocks := resultBlockPattern.FindAll(body, -1)

	results := make([]models.SearchResult, 0, len(blocks))
	for _, block := range blocks {
		titleURL := titleURLPattern.FindSubmatch(block)
		if titleURL == nil || len(titleURL[1]) == 0 || len(titleURL[2]) == 0 {
			continue
		}

		snippet := ""
		if m := snippetPattern.FindSubmatch(block); m != nil {
			snippet = decodeEntities(stripTags(string(m[1])))
		}

		url := decodeEntities(string(titleURL[1]))
		favicon := faviconURL(url)
		results = append(results, models.SearchResult{
			Title:     decodeEntities(stripTags(string(titleURL[2]))),
			URL:       url,
			Snippet:   snippet,
			Domain:    domainOf(url),
			Favicon:   favicon,
			Thumbnail: favicon,
			Content:   snippet,
		})
	}

	return &models.SearchResponse{
		Results:     results,
		Suggestions: []string{},
	}, nil
}
