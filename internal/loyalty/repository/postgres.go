package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/loyalty"
	"github.com/fekuna/omnipos-commerce/internal/loyalty/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertTransaction = `
    INSERT INTO loyalty_transactions (id, account_id, type, points, order_id, description, created_by, created_at)
    VALUES (:id, :account_id, :type, :points, :order_id, :description, :created_by, :created_at)
`

// Redeem deducts points inside the order transaction. The balance guard makes
// a concurrent spend fail with loyalty.ErrInsufficientPoints.
func Redeem(ctx context.Context, tx sqlx.ExtContext, userID, orderID string, points int, now time.Time) error {
	var accountID string
	err := tx.QueryRowxContext(ctx, `
        UPDATE loyalty_accounts
        SET points_balance = points_balance - $2, updated_at = NOW()
        WHERE user_id = $1 AND points_balance >= $2
        RETURNING id
    `, userID, points).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return loyalty.ErrInsufficientPoints
		}
		return err
	}

	_, err = sqlx.NamedExecContext(ctx, tx, insertTransaction, &model.LoyaltyTransaction{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		Type:        model.LoyaltyRedeem,
		Points:      -points,
		OrderID:     &orderID,
		Description: "Redeemed at checkout",
		CreatedAt:   now,
	})
	return err
}

const assignTier = `
    UPDATE loyalty_accounts a
    SET tier_id = (
        SELECT t.id FROM loyalty_tiers t
        WHERE t.min_points <= a.lifetime_points
        ORDER BY t.min_points DESC
        LIMIT 1
    )
`

func (r *PGRepository) ListTiers(ctx context.Context) ([]model.LoyaltyTier, error) {
	tiers := []model.LoyaltyTier{}
	err := r.DB.SelectContext(ctx, &tiers, `SELECT * FROM loyalty_tiers ORDER BY min_points ASC`)
	return tiers, err
}

func (r *PGRepository) FindTierByID(ctx context.Context, id string) (*model.LoyaltyTier, error) {
	var t model.LoyaltyTier
	if err := r.DB.GetContext(ctx, &t, `SELECT * FROM loyalty_tiers WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) CreateTier(ctx context.Context, t *model.LoyaltyTier) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO loyalty_tiers (id, name, min_points, discount_percent, points_multiplier, benefits, created_at, updated_at)
        VALUES (:id, :name, :min_points, :discount_percent, :points_multiplier, :benefits, :created_at, :updated_at)
    `, t)
	return err
}

func (r *PGRepository) UpdateTier(ctx context.Context, t *model.LoyaltyTier) error {
	_, err := r.DB.NamedExecContext(ctx, `
        UPDATE loyalty_tiers
        SET name = :name,
            min_points = :min_points,
            discount_percent = :discount_percent,
            points_multiplier = :points_multiplier,
            benefits = :benefits,
            updated_at = :updated_at
        WHERE id = :id
    `, t)
	return err
}

func (r *PGRepository) DeleteTier(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM loyalty_tiers WHERE id = $1`, id)
	return err
}

func (r *PGRepository) RefreshTiers(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, assignTier)
	return err
}

func (r *PGRepository) FindAccountByUser(ctx context.Context, userID string) (*model.LoyaltyAccount, error) {
	var a model.LoyaltyAccount
	if err := r.DB.GetContext(ctx, &a, `SELECT * FROM loyalty_accounts WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if a.TierID != nil {
		tier, err := r.FindTierByID(ctx, *a.TierID)
		if err != nil {
			return nil, err
		}
		a.Tier = tier
	}
	return &a, nil
}

// CreateAccount opens an account at the entry tier. An existing account is kept.
func (r *PGRepository) CreateAccount(ctx context.Context, a *model.LoyaltyAccount) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO loyalty_accounts (id, user_id, tier_id, points_balance, lifetime_points, created_at, updated_at)
        VALUES ($1, $2, (SELECT id FROM loyalty_tiers WHERE min_points <= 0 ORDER BY min_points DESC LIMIT 1), 0, 0, $3, $3)
        ON CONFLICT (user_id) DO NOTHING
    `, a.ID, a.UserID, a.CreatedAt)
	return err
}

func (r *PGRepository) ListAccounts(ctx context.Context, f *dto.AccountFilters) ([]model.LoyaltyAccount, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.TierID != "" {
		conditions = append(conditions, "a.tier_id = :tier_id")
		args["tier_id"] = f.TierID
	}
	if f.Query != "" {
		conditions = append(conditions, "(u.email ILIKE :q OR u.name ILIKE :q)")
		args["q"] = "%" + f.Query + "%"
	}
	from := " FROM loyalty_accounts a JOIN users u ON u.id = a.user_id" + postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*)"+from, args)
	if err != nil {
		return nil, 0, err
	}

	accounts := []model.LoyaltyAccount{}
	query := "SELECT a.*, u.email AS user_email, u.name AS user_name" + from +
		" ORDER BY a.lifetime_points DESC, a.id" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &accounts, query, args); err != nil {
		return nil, 0, err
	}
	return accounts, count, nil
}

func (r *PGRepository) ListTransactions(ctx context.Context, accountID string, page, pageSize int) ([]model.LoyaltyTransaction, int, error) {
	var count int
	if err := r.DB.GetContext(ctx, &count,
		`SELECT count(*) FROM loyalty_transactions WHERE account_id = $1`, accountID); err != nil {
		return nil, 0, err
	}

	txs := []model.LoyaltyTransaction{}
	query := `SELECT * FROM loyalty_transactions WHERE account_id = $1 ORDER BY created_at DESC` +
		postgres.Paginate(page, pageSize)
	if err := r.DB.SelectContext(ctx, &txs, query, accountID); err != nil {
		return nil, 0, err
	}
	return txs, count, nil
}

func (r *PGRepository) Post(ctx context.Context, userID string, t *model.LoyaltyTransaction, lifetimeDelta int) (bool, error) {
	applied := false
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var accountID string
		err := tx.GetContext(ctx, &accountID, `SELECT id FROM loyalty_accounts WHERE user_id = $1 FOR UPDATE`, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return loyalty.ErrAccountNotFound
			}
			return err
		}
		t.AccountID = accountID

		query := insertTransaction
		if t.OrderID != nil {
			query += ` ON CONFLICT (order_id, type) WHERE order_id IS NOT NULL DO NOTHING`
		}
		res, err := tx.NamedExecContext(ctx, query, t)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
            UPDATE loyalty_accounts
            SET points_balance = GREATEST(points_balance + $2, 0),
                lifetime_points = GREATEST(lifetime_points + $3, 0),
                updated_at = NOW()
            WHERE id = $1
        `, accountID, t.Points, lifetimeDelta); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, assignTier+` WHERE a.id = $1`, accountID); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func (r *PGRepository) OrderPoints(ctx context.Context, orderID string) (map[string]int, error) {
	rows := []struct {
		Type   string `db:"type"`
		Points int    `db:"points"`
	}{}
	err := r.DB.SelectContext(ctx, &rows, `
        SELECT type, COALESCE(SUM(points), 0) AS points
        FROM loyalty_transactions
        WHERE order_id = $1
        GROUP BY type
    `, orderID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Type] = row.Points
	}
	return out, nil
}
