package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/genzes/internal/dbx"
	"github.com/dmitrijs2005/genzes/internal/kv/migrations"
	"github.com/pressly/goose/v3"
)

// queries holds the dialect-specific statements of SQLStore.
type queries struct {
	get    string
	set    string
	delete string
}

// SQLStore keeps values in a single "kv" table. It works on either a
// *sql.DB or a *sql.Tx through dbx.DBTX.
type SQLStore struct {
	db dbx.DBTX
	q  queries
}

func (r *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, r.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get [%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, r.q.set, key, value); err != nil {
		return fmt.Errorf("failed to set [%s]: %w", key, err)
	}
	return nil
}

func (r *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.q.delete, key); err != nil {
		return fmt.Errorf("failed to delete [%s]: %w", key, err)
	}
	return nil
}

// SQLDB is an SQLStore that owns its *sql.DB. It writes batches in one
// transaction.
type SQLDB struct {
	SQLStore
	conn *sql.DB
}

func newSQLDB(db *sql.DB, q queries) *SQLDB {
	return &SQLDB{SQLStore: SQLStore{db: db, q: q}, conn: db}
}

func (s *SQLDB) SetMany(ctx context.Context, values map[string][]byte) error {
	return dbx.WithTx(ctx, s.conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := &SQLStore{db: tx, q: s.q}
		for k, v := range values {
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLDB) PingContext(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *SQLDB) Close() error {
	return s.conn.Close()
}

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations in dir using the given goose
// dialect. Running it twice is a no-op.
func RunMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect %s: %w", dialect, err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}
