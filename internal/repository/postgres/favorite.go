package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
)

var favoriteColumns = []string{
	"id", "user_id", "url", "title", "cite", "author", "author_cite", "date", "source", "word_count", "html", "created_at",
}

// PostgresFavoriteRepository implements repositories.FavoriteRepository
type PostgresFavoriteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(config *RepositoryConfig) repositories.FavoriteRepository {
	return &PostgresFavoriteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresFavoriteRepository) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	query, args, err := psql.Select(favoriteColumns...).
		From(r.tables.Favorites).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, *fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return favorites, nil
}

func (r *PostgresFavoriteRepository) FindByURL(ctx context.Context, userID, url string) (*models.Favorite, error) {
	query, args, err := psql.Select(favoriteColumns...).
		From(r.tables.Favorites).
		Where(sq.Eq{"user_id": userID, "url": url}).
		ToSql()
	if err != nil {
		return nil, err
	}

	executor := GetExecutor(ctx, r.pool)
	fav, err := scanFavorite(executor.QueryRow(ctx, query, args...))
	if IsPgNoRowsError(err) {
		return nil, fmt.Errorf("favorite %s: %w", url, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find favorite: %w", err)
	}
	return fav, nil
}

func (r *PostgresFavoriteRepository) Create(ctx context.Context, fav *models.Favorite) error {
	query, args, err := psql.Insert(r.tables.Favorites).
		Columns("user_id", "url", "title", "cite", "author", "author_cite", "date", "source", "word_count", "html").
		Values(fav.UserID, fav.URL, fav.Title, fav.Cite, fav.Author, fav.AuthorCite, fav.Date, fav.Source, fav.WordCount, fav.HTML).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&fav.ID, &fav.CreatedAt); err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "Article already favorited",
				ResourceType: "favorite",
				ResourceID:   fav.URL,
			}
		}
		return fmt.Errorf("create favorite: %w", err)
	}
	return nil
}

func (r *PostgresFavoriteRepository) Delete(ctx context.Context, userID, url string) error {
	query, args, err := psql.Delete(r.tables.Favorites).
		Where(sq.Eq{"user_id": userID, "url": url}).
		ToSql()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("favorite %s: %w", url, domain.ErrNotFound)
	}
	return nil
}

func scanFavorite(row pgx.Row) (*models.Favorite, error) {
	var fav models.Favorite
	var title, cite, author, authorCite, date, source, html *string
	var wordCount *int
	err := row.Scan(
		&fav.ID,
		&fav.UserID,
		&fav.URL,
		&title,
		&cite,
		&author,
		&authorCite,
		&date,
		&source,
		&wordCount,
		&html,
		&fav.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	fav.Title = deref(title)
	fav.Cite = deref(cite)
	fav.Author = deref(author)
	fav.AuthorCite = deref(authorCite)
	fav.Date = deref(date)
	fav.Source = deref(source)
	fav.HTML = deref(html)
	fav.WordCount = deref(wordCount)
	return &fav, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
