package repository

import (
	"context"
	"testing"
	"time"

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

func TestEntityExistsUsesTableForType(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM categories WHERE id = \$1\)`).WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EntityExists(context.Background(), "category", "c1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEntityExistsUnknownType(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.EntityExists(context.Background(), "users", "u1")
	assert.Error(t, err)
}

func TestSitemapEntriesSkipNoIndex(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	mock.ExpectQuery(`NOT COALESCE\(s.no_index, FALSE\)`).
		WillReturnRows(sqlmock.NewRows([]string{"entity_type", "slug", "updated_at"}).
			AddRow("page", "about", now).
			AddRow("product", "red-shoe", now))

	entries, err := repo.SitemapEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "red-shoe", entries[1].Slug)
}

func TestDeleteReportsMissing(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(`DELETE FROM seo_metadata`).WithArgs("page", "pg1").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), "page", "pg1")
	require.NoError(t, err)
	assert.False(t, ok)
}
