package db

import (
	"context"
	"database/sql"
)

// ストア層が *sql.DB / *sql.Tx のどちらでも動くようにするための共通インタフェース
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
