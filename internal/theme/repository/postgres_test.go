package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return NewPGRepository(sqlx.NewDb(raw, "postgres")), mock
}

func TestActivateSwapsInOneTransaction(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE themes SET is_active = FALSE`).WithArgs("t2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE themes SET is_active = TRUE`).WithArgs("t2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Activate(context.Background(), "t2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateRollsBackOnFailure(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE themes SET is_active = FALSE`).WithArgs("t2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE themes SET is_active = TRUE`).WithArgs("t2").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Activate(context.Background(), "t2"), assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveNone(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`SELECT \* FROM themes WHERE is_active`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	th, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, th)
}
