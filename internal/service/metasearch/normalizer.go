package metasearch

import (
	"qwksearch/internal/domain/models"
)

// ResultNormalizer turns one backend response body into canonical results.
// Implementations must not retry or perform I/O.
type ResultNormalizer interface {
	// Name labels the parse path in logs and metrics ("json", "html")
	Name() string

	// QueryFormat is the SearXNG "format" parameter this normalizer needs,
	// or "" for the default HTML page.
	QueryFormat() string

	Normalize(body []byte) (*models.SearchResponse, error)
}
