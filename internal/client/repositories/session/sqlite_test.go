package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE session_store (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func TestSQLiteStore_SetThenGet(t *testing.T) {
	r := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user_session", `{"user":{"email":"a@b.com"},"issuedAt":1}`))

	v, ok, err := r.Get(ctx, "user_session")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"user":{"email":"a@b.com"},"issuedAt":1}`, v)
}

func TestSQLiteStore_Get_Absent(t *testing.T) {
	r := NewSQLiteStore(setupDB(t))

	v, ok, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, v)
}

func TestSQLiteStore_Set_Upserts(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteStore(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", "old"))
	require.NoError(t, r.Set(ctx, "k", "new"))

	v, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new", v)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM session_store`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestSQLiteStore_Delete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", "1"))
	require.NoError(t, r.Delete(ctx, "x"))

	_, ok, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestSQLiteStore_ErrorsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	boom := errors.New("disk I/O error")
	mock.ExpectQuery(`SELECT value FROM session_store`).WithArgs("k").WillReturnError(boom)
	mock.ExpectExec(`INSERT INTO session_store`).WithArgs("k", "v").WillReturnError(boom)
	mock.ExpectExec(`DELETE FROM session_store`).WithArgs("k").WillReturnError(boom)

	r := NewSQLiteStore(db)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "k")
	require.ErrorIs(t, err, boom)
	require.False(t, ok)
	require.Contains(t, err.Error(), "failed to get session_store[k]")

	err = r.Set(ctx, "k", "v")
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "failed to set session_store[k]")

	err = r.Delete(ctx, "k")
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "failed to delete session_store[k]")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_ClosedDB(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteStore(db)
	require.NoError(t, db.Close())

	_, _, err := r.Get(context.Background(), "k")
	require.Error(t, err)
}
