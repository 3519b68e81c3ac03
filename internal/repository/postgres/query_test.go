package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qwksearch/internal/domain/models"
)

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("test_")

	assert.Equal(t, "test_chats", tables.Chats)
	assert.Equal(t, "test_messages", tables.Messages)
	assert.Equal(t, "test_favorites", tables.Favorites)
	assert.Equal(t, "test_article_cache", tables.ArticleCache)
	assert.Equal(t, "test_article_qa", tables.ArticleQA)
}

func TestDeleteAfterQuery_SingleConditionalStatement(t *testing.T) {
	repo := &PostgresMessageRepository{tables: NewTableNames("dev_")}

	query, args, err := repo.deleteAfterQuery("c1", 42)
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM dev_messages WHERE chat_id = $1 AND id > $2", query)
	assert.Equal(t, []any{"c1", int64(42)}, args)
}

func TestChatInsertQuery(t *testing.T) {
	repo := &PostgresChatRepository{tables: NewTableNames("dev_")}

	tests := []struct {
		name     string
		chat     models.Chat
		wantCols string
		wantArgs int
	}{
		{
			name:     "database default creation time",
			chat:     models.Chat{ID: "c1", UserID: "u1", Title: "t", FocusMode: "webSearch"},
			wantCols: "(id,user_id,title,focus_mode,files)",
			wantArgs: 5,
		},
		{
			name:     "explicit creation time",
			chat:     models.Chat{ID: "c1", UserID: "u1", CreatedAt: time.Unix(0, 0)},
			wantCols: "(id,user_id,title,focus_mode,files,created_at)",
			wantArgs: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := repo.insertQuery(&tt.chat)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(query, "INSERT INTO dev_chats "+tt.wantCols))
			assert.True(t, strings.HasSuffix(query, "ON CONFLICT (id) DO NOTHING RETURNING created_at"))
			require.Len(t, args, tt.wantArgs)
			assert.Equal(t, []byte("[]"), args[4])
		})
	}
}

func TestSchema_AppliesPrefix(t *testing.T) {
	ddl := Schema(NewTableNames("prod_"))

	assert.NotContains(t, ddl, "{prefix}")
	for _, table := range []string{"prod_chats", "prod_messages", "prod_favorites", "prod_article_cache", "prod_article_qa"} {
		assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, ddl, "id           BIGSERIAL PRIMARY KEY")
	assert.Contains(t, ddl, "UNIQUE (user_id, url)")
}

func TestDropStatement(t *testing.T) {
	assert.Equal(t,
		"DROP TABLE IF EXISTS dev_article_qa, dev_article_cache, dev_favorites, dev_messages, dev_chats CASCADE",
		DropStatement(NewTableNames("dev_")),
	)
}

func TestPgErrorHelpers(t *testing.T) {
	duplicate := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	foreignKey := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsPgDuplicateError(duplicate))
	assert.False(t, IsPgDuplicateError(foreignKey))
	assert.True(t, IsPgForeignKeyError(foreignKey))
	assert.False(t, IsPgForeignKeyError(errors.New("other")))
	assert.True(t, IsPgNoRowsError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
}

func TestMarshalOptional(t *testing.T) {
	empty, err := marshalOptional([]string{})
	require.NoError(t, err)
	assert.Nil(t, empty)

	encoded, err := marshalOptional([]string{"a"})
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(encoded))
}
