package repositories

import (
	"context"

	"qwksearch/internal/domain/models"
)

// ArticleRepository caches extracted articles and their Q&A history
type ArticleRepository interface {
	// Get returns a cached article and records the hit
	Get(ctx context.Context, url string) (*models.Article, error)
	Put(ctx context.Context, article *models.Article) error
	SetFollowUps(ctx context.Context, url string, questions []string) error
	AddQA(ctx context.Context, url string, qa models.QAPair) error
	ListQA(ctx context.Context, url string) ([]models.QAPair, error)
}
