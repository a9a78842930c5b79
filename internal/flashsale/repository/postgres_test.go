package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-commerce/internal/flashsale"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
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

func TestConsumeItemSoldOut(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(`UPDATE flash_sale_items`).WithArgs("i1", 3).WillReturnResult(sqlmock.NewResult(0, 0))

	err := ConsumeItem(context.Background(), repo.DB, "i1", 3)
	assert.ErrorIs(t, err, flashsale.ErrSoldOut)
}

func TestCreateWritesItemsInTransaction(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	sale := &model.FlashSale{
		BaseModel: model.NewBase("s1", now),
		Name:      "Payday",
		StartsAt:  now,
		EndsAt:    now.Add(time.Hour),
		Status:    model.FlashSaleScheduled,
		Items:     []model.FlashSaleItem{{ID: "i1", FlashSaleID: "s1", ProductID: "p1", SalePrice: decimal.NewFromInt(9)}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO flash_sales`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO flash_sale_items`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), sale))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEndDueCountsRows(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()
	mock.ExpectExec(`UPDATE flash_sales SET status = 'ENDED'`).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.EndDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFindRunningItemsEmptyInput(t *testing.T) {
	repo, _ := newRepo(t)
	items, err := repo.FindRunningItems(context.Background(), nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, items)
}
