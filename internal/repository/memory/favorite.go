package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
)

// FavoriteRepository implements repositories.FavoriteRepository
type FavoriteRepository struct {
	db *DB
}

// NewFavoriteRepository creates a favorite repository over db
func NewFavoriteRepository(db *DB) repositories.FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	favorites := []models.Favorite{}
	for _, f := range r.db.favorites {
		if f.UserID == userID {
			favorites = append(favorites, f)
		}
	}
	slices.SortFunc(favorites, func(a, b models.Favorite) int {
		return int(b.ID - a.ID)
	})
	return favorites, nil
}

func (r *FavoriteRepository) FindByURL(ctx context.Context, userID, url string) (*models.Favorite, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, f := range r.db.favorites {
		if f.UserID == userID && f.URL == url {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("favorite %s: %w", url, domain.ErrNotFound)
}

func (r *FavoriteRepository) Create(ctx context.Context, fav *models.Favorite) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, f := range r.db.favorites {
		if f.UserID == fav.UserID && f.URL == fav.URL {
			return &domain.ConflictError{
				Message:      "Article already favorited",
				ResourceType: "favorite",
				ResourceID:   fmt.Sprint(f.ID),
			}
		}
	}
	r.db.nextFavID++
	fav.ID = r.db.nextFavID
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now().UTC()
	}
	r.db.favorites = append(r.db.favorites, *fav)
	id := fav.ID
	r.db.record(ctx, func() {
		r.db.favorites = slices.DeleteFunc(r.db.favorites, func(f models.Favorite) bool { return f.ID == id })
	})
	return nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID, url string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	idx := slices.IndexFunc(r.db.favorites, func(f models.Favorite) bool {
		return f.UserID == userID && f.URL == url
	})
	if idx < 0 {
		return fmt.Errorf("favorite %s: %w", url, domain.ErrNotFound)
	}
	removed := r.db.favorites[idx]
	r.db.favorites = slices.Delete(r.db.favorites, idx, idx+1)
	r.db.record(ctx, func() { r.db.favorites = append(r.db.favorites, removed) })
	return nil
}
