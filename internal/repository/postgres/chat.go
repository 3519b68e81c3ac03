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

var chatColumns = []string{"id", "user_id", "title", "focus_mode", "files", "created_at"}

// PostgresChatRepository implements repositories.ChatRepository
type PostgresChatRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewChatRepository creates a new chat repository
func NewChatRepository(config *RepositoryConfig) repositories.ChatRepository {
	return &PostgresChatRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts the chat. A taken id returns ConflictError without
// aborting an enclosing transaction.
func (r *PostgresChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	query, args, err := r.insertQuery(chat)
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query, args...).Scan(&chat.CreatedAt)
	if IsPgNoRowsError(err) {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("chat %s already exists", chat.ID),
			ResourceType: "chat",
			ResourceID:   chat.ID,
		}
	}
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	return nil
}

func (r *PostgresChatRepository) insertQuery(chat *models.Chat) (string, []any, error) {
	files := chat.Files
	if files == nil {
		files = []models.FileRef{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return "", nil, fmt.Errorf("marshal files: %w", err)
	}

	insert := psql.Insert(r.tables.Chats).
		Columns("id", "user_id", "title", "focus_mode", "files").
		Values(chat.ID, chat.UserID, chat.Title, chat.FocusMode, filesJSON).
		Suffix("ON CONFLICT (id) DO NOTHING RETURNING created_at")
	if !chat.CreatedAt.IsZero() {
		insert = psql.Insert(r.tables.Chats).
			Columns(chatColumns...).
			Values(chat.ID, chat.UserID, chat.Title, chat.FocusMode, filesJSON, chat.CreatedAt).
			Suffix("ON CONFLICT (id) DO NOTHING RETURNING created_at")
	}
	return insert.ToSql()
}

// Get retrieves a chat owned by userID
func (r *PostgresChatRepository) Get(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	query, args, err := psql.Select(chatColumns...).
		From(r.tables.Chats).
		Where(sq.Eq{"id": chatID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	executor := GetExecutor(ctx, r.pool)
	chat, err := scanChat(executor.QueryRow(ctx, query, args...))
	if IsPgNoRowsError(err) {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return chat, nil
}

// List retrieves all chats owned by userID, newest first
func (r *PostgresChatRepository) List(ctx context.Context, userID string) ([]models.Chat, error) {
	query, args, err := psql.Select(chatColumns...).
		From(r.tables.Chats).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	chats := []models.Chat{}
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, *chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}
	return chats, nil
}

// UpdateFiles replaces the attached file list
func (r *PostgresChatRepository) UpdateFiles(ctx context.Context, chatID, userID string, files []models.FileRef) error {
	if files == nil {
		files = []models.FileRef{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}

	query, args, err := psql.Update(r.tables.Chats).
		Set("files", filesJSON).
		Where(sq.Eq{"id": chatID, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update chat files: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a chat owned by userID
func (r *PostgresChatRepository) Delete(ctx context.Context, chatID, userID string) error {
	query, args, err := psql.Delete(r.tables.Chats).
		Where(sq.Eq{"id": chatID, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return nil
}

func scanChat(row pgx.Row) (*models.Chat, error) {
	var chat models.Chat
	var files []byte
	if err := row.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.FocusMode, &files, &chat.CreatedAt); err != nil {
		return nil, err
	}
	chat.Files = []models.FileRef{}
	if len(files) > 0 {
		if err := json.Unmarshal(files, &chat.Files); err != nil {
			return nil, fmt.Errorf("decode files: %w", err)
		}
	}
	return &chat, nil
}
