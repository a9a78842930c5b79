package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/review/dto"
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

func TestSetStatusRefreshesRatingInTransaction(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reviews SET status = \$2`).WithArgs("r1", "APPROVED", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products p SET avg_rating = COALESCE\(s.avg, 0\), review_count = s.cnt`).WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rv := &model.Review{BaseModel: model.BaseModel{ID: "r1", UpdatedAt: now}, ProductID: "p1", Status: "APPROVED"}
	require.NoError(t, repo.SetStatus(context.Background(), rv))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRollsBackWhenRefreshFails(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM reviews`).WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products p`).WithArgs("p1").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), &model.Review{BaseModel: model.BaseModel{ID: "r1"}, ProductID: "p1"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasDeliveredPurchase(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`o.status = 'DELIVERED'`).WithArgs("u1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasDeliveredPurchase(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFindProductIDMissing(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`SELECT id FROM products`).WithArgs("nope").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := repo.FindProductID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestFindAllFiltersAndJoinsAuthor(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM reviews r WHERE r.product_id = \$1 AND r.status = \$2`).
		WithArgs("p1", "APPROVED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`AS author_name FROM reviews r LEFT JOIN users u .* ORDER BY r.created_at DESC LIMIT 10 OFFSET 10`).
		WithArgs("p1", "APPROVED").
		WillReturnRows(sqlmock.NewRows([]string{"id", "rating", "author_name"}).AddRow("r1", 5, "Ann"))

	reviews, total, err := repo.FindAll(context.Background(), &dto.ReviewFilters{ProductID: "p1", Status: "APPROVED", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ann", reviews[0].AuthorName)
}
