package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-commerce/internal/loyalty"
	"github.com/fekuna/omnipos-commerce/internal/loyalty/dto"
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

func earn(points int) *model.LoyaltyTransaction {
	orderID := "o1"
	return &model.LoyaltyTransaction{
		ID: "tx1", Type: model.LoyaltyEarn, Points: points, OrderID: &orderID,
		CreatedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPostAppliesBalanceAndTier(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM loyalty_accounts WHERE user_id = \$1 FOR UPDATE`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("acc1"))
	mock.ExpectExec(`INSERT INTO loyalty_transactions .* ON CONFLICT \(order_id, type\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE loyalty_accounts\s+SET points_balance = GREATEST`).WithArgs("acc1", 120, 120).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET tier_id = .* WHERE a.id = \$1`).WithArgs("acc1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx := earn(120)
	applied, err := repo.Post(context.Background(), "u1", tx, 120)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "acc1", tx.AccountID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostReplayIsNoOp(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("acc1"))
	mock.ExpectExec(`INSERT INTO loyalty_transactions`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := repo.Post(context.Background(), "u1", earn(120), 120)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostWithoutAccount(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs("u1").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Post(context.Background(), "u1", earn(10), 10)
	assert.ErrorIs(t, err, loyalty.ErrAccountNotFound)
}

func TestRedeemGuardsBalance(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`UPDATE loyalty_accounts .* points_balance >= \$2`).WithArgs("u1", 500).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := Redeem(context.Background(), repo.DB, "u1", "o1", 500, time.Now())
	assert.ErrorIs(t, err, loyalty.ErrInsufficientPoints)
}

func TestOrderPointsGroupsByType(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`GROUP BY type`).WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"type", "points"}).
			AddRow("EARN", 80).
			AddRow("REDEEM", -50))

	got, err := repo.OrderPoints(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"EARN": 80, "REDEEM": -50}, got)
}

func TestFindAccountByUserLoadsTier(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT \* FROM loyalty_accounts WHERE user_id = \$1`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "tier_id", "points_balance", "lifetime_points"}).
			AddRow("acc1", "u1", "t2", 40, 1200))
	mock.ExpectQuery(`SELECT \* FROM loyalty_tiers WHERE id = \$1`).WithArgs("t2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "min_points"}).AddRow("t2", "Gold", 1000))

	a, err := repo.FindAccountByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, a.Tier)
	assert.Equal(t, "Gold", a.Tier.Name)
	assert.Equal(t, 40, a.PointsBalance)
}

func TestFindAccountByUserMissing(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`FROM loyalty_accounts`).WithArgs("u1").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	a, err := repo.FindAccountByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestListAccountsFilters(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM loyalty_accounts a JOIN users u .* WHERE a.tier_id = \$1 AND \(u.email ILIKE \$2 OR u.name ILIKE \$3\)`).
		WithArgs("t1", "%ann%", "%ann%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT a.\*, u.email AS user_email`).
		WithArgs("t1", "%ann%", "%ann%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "user_email"}).AddRow("acc1", "u1", "ann@example.com"))

	accounts, total, err := repo.ListAccounts(context.Background(), &dto.AccountFilters{TierID: "t1", Query: "ann", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, accounts, 1)
	assert.Equal(t, "ann@example.com", accounts[0].UserEmail)
}
