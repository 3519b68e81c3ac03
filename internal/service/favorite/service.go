// Package favorite manages a user's bookmarked articles.
package favorite

import (
	"context"
	"errors"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
)

// AddRequest is the body of POST /api/favorites.
type AddRequest struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Cite       string `json:"cite"`
	Author     string `json:"author"`
	AuthorCite string `json:"author_cite"`
	Date       string `json:"date"`
	Source     string `json:"source"`
	WordCount  int    `json:"word_count"`
	HTML       string `json:"html"`
}

func (r *AddRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.URL, validation.Required, is.URL),
		validation.Field(&r.WordCount, validation.Min(0)),
	)
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	issues := make([]domain.FieldIssue, 0, len(errs))
	for _, field := range []string{"url", "word_count"} {
		if fieldErr, ok := errs[field]; ok {
			issues = append(issues, domain.FieldIssue{Path: field, Message: fieldErr.Error()})
		}
	}
	return &domain.ValidationError{Message: "URL is required", Issues: issues}
}

// Service implements the favorites operations for one repository.
type Service struct {
	favorites repositories.FavoriteRepository
	logger    *slog.Logger
}

// NewService creates a favorites service
func NewService(favorites repositories.FavoriteRepository, logger *slog.Logger) *Service {
	return &Service{favorites: favorites, logger: logger}
}

// List returns the user's favorites, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	return s.favorites.List(ctx, userID)
}

// Add bookmarks an article. When the user already saved the URL the
// existing favorite is returned with created=false.
func (s *Service) Add(ctx context.Context, userID string, req *AddRequest) (*models.Favorite, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.favorites.FindByURL(ctx, userID, req.URL)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	fav := &models.Favorite{
		UserID:     userID,
		URL:        req.URL,
		Title:      req.Title,
		Cite:       req.Cite,
		Author:     req.Author,
		AuthorCite: req.AuthorCite,
		Date:       req.Date,
		Source:     req.Source,
		WordCount:  req.WordCount,
		HTML:       req.HTML,
	}
	if err := s.favorites.Create(ctx, fav); err != nil {
		// lost a race with a concurrent add of the same URL
		if errors.Is(err, domain.ErrConflict) {
			existing, findErr := s.favorites.FindByURL(ctx, userID, req.URL)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	s.logger.Info("favorite added", "user_id", userID, "url", req.URL)
	return fav, true, nil
}

// Remove deletes the user's favorite for url. Removing a URL that is not
// saved is not an error.
func (s *Service) Remove(ctx context.Context, userID, url string) error {
	if url == "" {
		return &domain.ValidationError{
			Message: "URL parameter is required",
			Issues:  []domain.FieldIssue{{Path: "url", Message: "cannot be blank"}},
		}
	}
	err := s.favorites.Delete(ctx, userID, url)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
