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

// ArticleRepository implements repositories.ArticleRepository
type ArticleRepository struct {
	db *DB
}

// NewArticleRepository creates an article cache over db
func NewArticleRepository(db *DB) repositories.ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Get(ctx context.Context, url string) (*models.Article, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	article, ok := r.db.articles[url]
	if !ok {
		return nil, fmt.Errorf("article %s: %w", url, domain.ErrNotFound)
	}
	article.HitCount++
	article.LastAccessed = time.Now().UTC()
	r.db.articles[url] = article

	article.FollowUpQuestions = slices.Clone(article.FollowUpQuestions)
	return &article, nil
}

func (r *ArticleRepository) Put(ctx context.Context, article *models.Article) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored := *article
	stored.QAHistory = nil
	if stored.FollowUpQuestions == nil {
		stored.FollowUpQuestions = []string{}
	}
	stored.LastAccessed = time.Now().UTC()
	previous, existed := r.db.articles[article.URL]
	r.db.articles[article.URL] = stored
	r.db.record(ctx, func() {
		if existed {
			r.db.articles[stored.URL] = previous
		} else {
			delete(r.db.articles, stored.URL)
		}
	})
	return nil
}

func (r *ArticleRepository) SetFollowUps(ctx context.Context, url string, questions []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	article, ok := r.db.articles[url]
	if !ok {
		return fmt.Errorf("article %s: %w", url, domain.ErrNotFound)
	}
	previous := article.FollowUpQuestions
	article.FollowUpQuestions = slices.Clone(questions)
	r.db.articles[url] = article
	r.db.record(ctx, func() {
		if current, ok := r.db.articles[url]; ok {
			current.FollowUpQuestions = previous
			r.db.articles[url] = current
		}
	})
	return nil
}

func (r *ArticleRepository) AddQA(ctx context.Context, url string, qa models.QAPair) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.articles[url]; !ok {
		return fmt.Errorf("article %s: %w", url, domain.ErrNotFound)
	}
	r.db.qa[url] = append(slices.Clone(r.db.qa[url]), qa)
	r.db.record(ctx, func() {
		pairs := r.db.qa[url]
		for i := len(pairs) - 1; i >= 0; i-- {
			if pairs[i] == qa {
				r.db.qa[url] = slices.Delete(slices.Clone(pairs), i, i+1)
				return
			}
		}
	})
	return nil
}

func (r *ArticleRepository) ListQA(ctx context.Context, url string) ([]models.QAPair, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return append([]models.QAPair{}, r.db.qa[url]...), nil
}
