package kv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/genzes/internal/dbx"
	"github.com/dmitrijs2005/genzes/internal/kv/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresQueries = queries{
	get: `SELECT value FROM kv WHERE key = $1`,
	set: `
		INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
	delete: `DELETE FROM kv WHERE key = $1`,
}

// NewPostgresStore returns a PostgreSQL-dialect store bound to db.
func NewPostgresStore(db dbx.DBTX) *SQLStore {
	return &SQLStore{db: db, q: postgresQueries}
}

// OpenPostgres connects through pgx and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQLDB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := RunMigrations(ctx, db, "pgx", migrations.PostgresDir); err != nil {
		db.Close()
		return nil, err
	}
	return newSQLDB(db, postgresQueries), nil
}
