package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-commerce/internal/model"
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

func TestUpsertReturnsStoredRow(t *testing.T) {
	repo, mock := newRepo(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &model.FeatureFlag{BaseModel: model.NewBase("new-id", time.Now()), Key: "pos", Enabled: true}

	mock.ExpectQuery(`ON CONFLICT \(key\) DO UPDATE .* RETURNING \*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "enabled", "created_at"}).
			AddRow("old-id", "pos", true, created))

	require.NoError(t, repo.Upsert(context.Background(), f))
	assert.Equal(t, "old-id", f.ID)
	assert.Equal(t, created, f.CreatedAt)
}

func TestFindByKeyMissing(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`SELECT \* FROM feature_flags WHERE key = \$1`).WithArgs("pos").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	f, err := repo.FindByKey(context.Background(), "pos")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestSetEnabled(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(`UPDATE feature_flags SET enabled = \$2`).WithArgs("pos", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetEnabled(context.Background(), "pos", false))
	assert.NoError(t, mock.ExpectationsWereMet())
}
