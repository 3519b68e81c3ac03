package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL for the given table prefix
func Schema(tables *TableNames) string {
	return strings.ReplaceAll(schemaSQL, "{prefix}", tables.Prefix)
}

// Migrate creates any missing tables and indexes. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, Schema(tables)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// DropStatement returns the DROP statement for every prefixed table,
// dependents first.
func DropStatement(tables *TableNames) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s, %s, %s, %s, %s CASCADE",
		tables.ArticleQA,
		tables.ArticleCache,
		tables.Favorites,
		tables.Messages,
		tables.Chats,
	)
}

// Drop removes every prefixed table.
func Drop(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, DropStatement(tables)); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}
