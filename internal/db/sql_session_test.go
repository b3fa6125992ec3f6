package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSession(t *testing.T) (*SQLSession, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	return NewSQLSession(db, conn), mock
}

func TestSQLSession_Exec(t *testing.T) {
	s, mock := newMockSession(t)
	ctx := context.Background()

	mock.ExpectExec("DROP TABLE IF EXISTS songplays").WillReturnResult(sqlmock.NewResult(0, 0))
	boom := errors.New(`relation "songs" does not exist`)
	mock.ExpectExec("INSERT INTO songs SELECT 1").WillReturnError(boom)

	require.NoError(t, s.Exec(ctx, "DROP TABLE IF EXISTS songplays"))
	err := s.Exec(ctx, "INSERT INTO songs SELECT 1")
	assert.ErrorIs(t, err, boom, "driver errors surface unchanged")

	mock.ExpectClose()
	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSession_QueryInt64(t *testing.T) {
	s, mock := newMockSession(t)

	mock.ExpectQuery("SELECT COUNT(*) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(96)))

	n, err := s.QueryInt64(context.Background(), "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.Equal(t, int64(96), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSession_WriteRows(t *testing.T) {
	s, mock := newMockSession(t)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO "staging_songs" ("artist_id", "year") VALUES ($1, $2), ($3, $4)`).
		WithArgs("A1", int64(2009), "A2", nil).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := s.WriteRows(ctx, "staging_songs", []string{"artist_id", "year"}, [][]any{{"A1", int64(2009)}, {"A2", nil}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.WriteRows(ctx, "staging_songs", []string{"artist_id"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSession_CloseIdempotent(t *testing.T) {
	s, mock := newMockSession(t)
	mock.ExpectClose()

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSQLSession_NilConn(t *testing.T) {
	assert.Panics(t, func() { NewSQLSession(nil, nil) })
}
