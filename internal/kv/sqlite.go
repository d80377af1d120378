package kv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/genzes/internal/dbx"
	"github.com/dmitrijs2005/genzes/internal/kv/migrations"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

var sqliteQueries = queries{
	get: `SELECT value FROM kv WHERE key = ?`,
	set: `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
	delete: `DELETE FROM kv WHERE key = ?`,
}

// NewSQLiteStore returns a SQLite-dialect store bound to db, which may be a
// transaction. The kv table must already exist.
func NewSQLiteStore(db dbx.DBTX) *SQLStore {
	return &SQLStore{db: db, q: sqliteQueries}
}

// OpenSQLite opens (creating if needed) the SQLite database at dsn and
// migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*SQLDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite storage: empty dsn")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db, "sqlite3", migrations.SQLiteDir); err != nil {
		db.Close()
		return nil, err
	}
	return newSQLDB(db, sqliteQueries), nil
}
