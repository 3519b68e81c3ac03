package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/models"
	"qwksearch/internal/domain/repositories"
)

var messageColumns = []string{
	"id", "message_id", "chat_id", "user_id", "role", "content", "sources", "suggestions", "created_at",
}

// PostgresMessageRepository implements repositories.MessageRepository.
// Ordinals come from the BIGSERIAL id, assigned at insert time.
type PostgresMessageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(config *RepositoryConfig) repositories.MessageRepository {
	return &PostgresMessageRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Append inserts a message and sets its ordinal and creation time
func (r *PostgresMessageRepository) Append(ctx context.Context, msg *models.Message) error {
	sources, err := marshalOptional(msg.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	suggestions, err := marshalOptional(msg.Suggestions)
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}

	query, args, err := psql.Insert(r.tables.Messages).
		Columns("message_id", "chat_id", "user_id", "role", "content", "sources", "suggestions").
		Values(msg.MessageID, msg.ChatID, msg.UserID, string(msg.Role), msg.Content, sources, suggestions).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("chat %s: %w", msg.ChatID, domain.ErrNotFound)
		}
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// FindByMessageID looks up a message by its client-visible id within a chat
func (r *PostgresMessageRepository) FindByMessageID(ctx context.Context, chatID, messageID string) (*models.Message, error) {
	query, args, err := psql.Select(messageColumns...).
		From(r.tables.Messages).
		Where(sq.Eq{"chat_id": chatID, "message_id": messageID}).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	executor := GetExecutor(ctx, r.pool)
	msg, err := scanMessage(executor.QueryRow(ctx, query, args...))
	if IsPgNoRowsError(err) {
		return nil, fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find message: %w", err)
	}
	return msg, nil
}

// UpdateContent rewrites the content of one message
func (r *PostgresMessageRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	query, args, err := psql.Update(r.tables.Messages).
		Set("content", content).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("message %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteAfter removes every later message of the chat in one statement
func (r *PostgresMessageRepository) DeleteAfter(ctx context.Context, chatID string, ordinal int64) (int64, error) {
	query, args, err := r.deleteAfterQuery(chatID, ordinal)
	if err != nil {
		return 0, err
	}

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete messages after %d: %w", ordinal, err)
	}
	return result.RowsAffected(), nil
}

func (r *PostgresMessageRepository) deleteAfterQuery(chatID string, ordinal int64) (string, []any, error) {
	return psql.Delete(r.tables.Messages).
		Where(sq.Eq{"chat_id": chatID}).
		Where(sq.Gt{"id": ordinal}).
		ToSql()
}

// ListByChat returns the transcript in ordinal order
func (r *PostgresMessageRepository) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	query, args, err := psql.Select(messageColumns...).
		From(r.tables.Messages).
		Where(sq.Eq{"chat_id": chatID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// DeleteByChat removes the whole transcript
func (r *PostgresMessageRepository) DeleteByChat(ctx context.Context, chatID string) error {
	query, args, err := psql.Delete(r.tables.Messages).
		Where(sq.Eq{"chat_id": chatID}).
		ToSql()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var msg models.Message
	var role string
	var sources, suggestions []byte
	err := row.Scan(
		&msg.ID,
		&msg.MessageID,
		&msg.ChatID,
		&msg.UserID,
		&role,
		&msg.Content,
		&sources,
		&suggestions,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	msg.Role = models.Role(role)

	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &msg.Sources); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
	}
	if len(suggestions) > 0 {
		if err := json.Unmarshal(suggestions, &msg.Suggestions); err != nil {
			return nil, fmt.Errorf("decode suggestions: %w", err)
		}
	}
	return &msg, nil
}

// marshalOptional encodes v as JSON, or returns nil (SQL NULL) for an empty slice
func marshalOptional[T any](v []T) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}
