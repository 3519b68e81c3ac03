package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
)

// PostgresArticleRepository implements repositories.ArticleRepository
type PostgresArticleRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewArticleRepository creates a new article cache repository
func NewArticleRepository(config *RepositoryConfig) repositories.ArticleRepository {
	return &PostgresArticleRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get returns the cached article and bumps its hit count in the same statement
func (r *PostgresArticleRepository) Get(ctx context.Context, url string) (*models.Article, error) {
	query, args, err := psql.Update(r.tables.ArticleCache).
		Set("hit_count", sq.Expr("hit_count + 1")).
		Set("last_accessed", sq.Expr("now()")).
		Where(sq.Eq{"url": url}).
		Suffix("RETURNING url, title, cite, author, author_cite, author_short, author_type, date, source, word_count, html, follow_up_questions, hit_count, last_accessed").
		ToSql()
	if err != nil {
		return nil, err
	}

	var a models.Article
	var title, cite, author, authorCite, authorShort, authorType, date, source, html *string
	var wordCount *int
	var followUps []byte

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query, args...).Scan(
		&a.URL,
		&title,
		&cite,
		&author,
		&authorCite,
		&authorShort,
		&authorType,
		&date,
		&source,
		&wordCount,
		&html,
		&followUps,
		&a.HitCount,
		&a.LastAccessed,
	)
	if IsPgNoRowsError(err) {
		return nil, fmt.Errorf("article %s: %w", url, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}

	a.Title = deref(title)
	a.Cite = deref(cite)
	a.Author = deref(author)
	a.AuthorCite = deref(authorCite)
	a.AuthorShort = deref(authorShort)
	a.AuthorType = deref(authorType)
	a.Date = deref(date)
	a.Source = deref(source)
	a.WordCount = deref(wordCount)
	a.HTML = deref(html)
	a.FollowUpQuestions = []string{}
	if len(followUps) > 0 {
		if err := json.Unmarshal(followUps, &a.FollowUpQuestions); err != nil {
			return nil, fmt.Errorf("decode follow-up questions: %w", err)
		}
	}
	return &a, nil
}

// Put stores an extracted article, replacing any previous copy of the URL
func (r *PostgresArticleRepository) Put(ctx context.Context, a *models.Article) error {
	followUps := a.FollowUpQuestions
	if followUps == nil {
		followUps = []string{}
	}
	followUpsJSON, err := json.Marshal(followUps)
	if err != nil {
		return fmt.Errorf("marshal follow-up questions: %w", err)
	}

	query, args, err := psql.Insert(r.tables.ArticleCache).
		Columns("url", "title", "cite", "author", "author_cite", "author_short", "author_type",
			"date", "source", "word_count", "html", "follow_up_questions").
		Values(a.URL, a.Title, a.Cite, a.Author, a.AuthorCite, a.AuthorShort, a.AuthorType,
			a.Date, a.Source, a.WordCount, a.HTML, followUpsJSON).
		Suffix(`ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			cite = EXCLUDED.cite,
			author = EXCLUDED.author,
			author_cite = EXCLUDED.author_cite,
			author_short = EXCLUDED.author_short,
			author_type = EXCLUDED.author_type,
			date = EXCLUDED.date,
			source = EXCLUDED.source,
			word_count = EXCLUDED.word_count,
			html = EXCLUDED.html,
			last_accessed = now()`).
		ToSql()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("put article: %w", err)
	}
	return nil
}

// SetFollowUps replaces the article's follow-up questions
func (r *PostgresArticleRepository) SetFollowUps(ctx context.Context, url string, questions []string) error {
	if questions == nil {
		questions = []string{}
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal follow-up questions: %w", err)
	}

	query, args, err := psql.Update(r.tables.ArticleCache).
		Set("follow_up_questions", questionsJSON).
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set follow-up questions: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("article %s: %w", url, domain.ErrNotFound)
	}
	return nil
}

// AddQA appends a question and answer about the article
func (r *PostgresArticleRepository) AddQA(ctx context.Context, url string, qa models.QAPair) error {
	query, args, err := psql.Insert(r.tables.ArticleQA).
		Columns("article_url", "question", "answer").
		Values(url, qa.Question, qa.Answer).
		ToSql()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, args...); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("article %s: %w", url, domain.ErrNotFound)
		}
		return fmt.Errorf("add article qa: %w", err)
	}
	return nil
}

// ListQA returns the article's Q&A history, oldest first
func (r *PostgresArticleRepository) ListQA(ctx context.Context, url string) ([]models.QAPair, error) {
	query, args, err := psql.Select("question", "answer").
		From(r.tables.ArticleQA).
		Where(sq.Eq{"article_url": url}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list article qa: %w", err)
	}
	defer rows.Close()

	pairs := []models.QAPair{}
	for rows.Next() {
		var qa models.QAPair
		if err := rows.Scan(&qa.Question, &qa.Answer); err != nil {
			return nil, fmt.Errorf("scan article qa: %w", err)
		}
		pairs = append(pairs, qa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article qa: %w", err)
	}
	return pairs, nil
}
