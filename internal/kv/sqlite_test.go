package kv

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpenSQLite_MigratesAndSatisfiesContract(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "genzes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.True(t, tableExists(t, s.conn, "kv"))
	require.True(t, tableExists(t, s.conn, "goose_db_version"))
	require.NoError(t, s.PingContext(ctx))

	runContract(t, s)
}

func TestOpenSQLite_InMemory(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	runContract(t, s)
}

func TestOpenSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "genzes.db")

	s, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "genzes_local_messages", []byte(`[{"id":"msg_1"}]`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, dsn)
	require.NoError(t, err, "migrations must be idempotent")
	t.Cleanup(func() { _ = s.Close() })

	v, err := s.Get(ctx, "genzes_local_messages")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"msg_1"}]`, string(v))
}

func TestOpenSQLite_EmptyDSN(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	require.Error(t, err)
}

func TestSQLiteStore_ErrorsWrapKey(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ctx := context.Background()
	_, err = s.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get [k]")
	require.ErrorContains(t, s.Set(ctx, "k", []byte("v")), "failed to set [k]")
	require.ErrorContains(t, s.Delete(ctx, "k"), "failed to delete [k]")
}

func TestNewSQLiteStore_WorksInsideTransaction(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tx, err := s.conn.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteStore(tx).Set(ctx, "k", []byte("v")))
	require.NoError(t, tx.Rollback())

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, v)
}
