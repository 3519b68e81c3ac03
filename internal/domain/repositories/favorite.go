package repositories

import (
	"context"

	"qwksearch/internal/domain/models"
)

// FavoriteRepository defines data access operations for bookmarked articles
type FavoriteRepository interface {
	List(ctx context.Context, userID string) ([]models.Favorite, error)
	FindByURL(ctx context.Context, userID, url string) (*models.Favorite, error)
	Create(ctx context.Context, fav *models.Favorite) error
	Delete(ctx context.Context, userID, url string) error
}
