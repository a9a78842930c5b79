package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-commerce/internal/media/dto"
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

func TestFindAllFiltersByFolderAndMime(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM media_assets WHERE folder = \$1 AND mime_type LIKE \$2`).
		WithArgs("banners", "image/%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM media_assets WHERE folder = \$1 AND mime_type LIKE \$2 ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs("banners", "image/%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_name", "mime_type"}).AddRow("m1", "a.png", "image/png"))

	assets, total, err := repo.FindAll(context.Background(), &dto.MediaFilters{Folder: "banners", MimePrefix: "image/", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, assets, 1)
	assert.Equal(t, "image/png", assets[0].MimeType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDMissing(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`SELECT \* FROM media_assets WHERE id = \$1`).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	a, err := repo.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, a)
}
