package services

import (
	"context"

	"qwksearch/internal/domain/models"
)

// SearchRequest is a metasearch request as seen by callers outside the
// metasearch layer.
type SearchRequest struct {
	Query models.SearchQuery
	// PublicOnly skips the private deployment and uses the public pool only
	PublicOnly bool
}

// Searcher runs a query with the caller-level fallback policy applied.
// It returns domain.ErrNoResults when every path came back empty.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*models.SearchResponse, error)
}
