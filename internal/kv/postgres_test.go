package kv

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func newPostgresWithMock(t *testing.T) (*SQLDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newSQLDB(db, postgresQueries), mock
}

const (
	pgGet    = `(?s)^SELECT\s+value\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1$`
	pgSet    = `(?s)INSERT\s+INTO\s+kv\s*\(key,\s*value,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*now\(\)\).*ON\s+CONFLICT`
	pgDelete = `(?s)^DELETE\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1$`
)

func TestPostgres_Get_Found(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectQuery(pgGet).WithArgs("genzes_local_users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{}`)))

	v, err := s.Get(context.Background(), "genzes_local_users")
	require.NoError(t, err)
	require.Equal(t, []byte(`{}`), v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get_NotFound(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectQuery(pgGet).WithArgs("absent").WillReturnError(sql.ErrNoRows)

	v, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestPostgres_Get_DBError(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectQuery(pgGet).WithArgs("k").WillReturnError(errors.New("db down"))

	_, err := s.Get(context.Background(), "k")
	require.ErrorContains(t, err, "failed to get [k]: db down")
}

func TestPostgres_Set_Upserts(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectExec(pgSet).WithArgs("k", []byte("v")).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Delete(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectExec(pgDelete).WithArgs("k").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(context.Background(), "k"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetMany_CommitsInOneTransaction(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(pgSet).WithArgs("genzes_local_users", []byte(`{}`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SetMany(context.Background(), map[string][]byte{"genzes_local_users": []byte(`{}`)}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetMany_RollsBackOnError(t *testing.T) {
	s, mock := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(pgSet).WithArgs("k", []byte("v")).WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := s.SetMany(context.Background(), map[string][]byte{"k": []byte("v")})
	require.ErrorContains(t, err, "failed to set [k]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UsesEmbeddedDirAndDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, RunMigrations(context.Background(), db, "pgx", "postgres"))
	require.Equal(t, "postgres", gotDir)
}

func TestRunMigrations_Errors(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	require.ErrorContains(t, RunMigrations(context.Background(), db, "pgx", "postgres"), "migrations: boom")
	require.ErrorContains(t, RunMigrations(context.Background(), db, "no-such-dialect", "postgres"), "goose dialect")
}
