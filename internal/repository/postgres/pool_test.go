package postgres

import (
	"errors"
	"testing"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func strp(s string) *string { return &s }

func TestMapErr(t *testing.T) {
	require.NoError(t, mapErr(nil))
	require.ErrorIs(t, mapErr(pgx.ErrNoRows), errs.ErrNotFound)
	require.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505"}), errs.ErrAlreadyExists)

	boom := errors.New("boom")
	require.Equal(t, boom, mapErr(boom))
	require.Equal(t, "23503", mapErr(&pgconn.PgError{Code: "23503"}).(*pgconn.PgError).Code)
}
