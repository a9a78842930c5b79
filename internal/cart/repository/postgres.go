package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/model"
	prodrepo "github.com/fekuna/omnipos-commerce/internal/product/repository"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// Convert empties a cart and marks it CONVERTED inside the order transaction.
func Convert(ctx context.Context, tx sqlx.ExecerContext, cartID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
        UPDATE carts SET status = 'CONVERTED', abandoned_at = NULL, last_activity_at = NOW(), updated_at = NOW()
        WHERE id = $1
    `, cartID)
	return err
}

func (r *PGRepository) FindByUser(ctx context.Context, userID string) (*model.Cart, error) {
	return r.findOne(ctx, `SELECT * FROM carts WHERE user_id = $1`, userID)
}

func (r *PGRepository) FindBySession(ctx context.Context, sessionID string) (*model.Cart, error) {
	return r.findOne(ctx, `SELECT * FROM carts WHERE session_id = $1`, sessionID)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Cart, error) {
	var c model.Cart
	if err := r.DB.GetContext(ctx, &c, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) Create(ctx context.Context, c *model.Cart) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO carts (id, user_id, session_id, status, last_activity_at, created_at, updated_at)
        VALUES (:id, :user_id, :session_id, :status, :last_activity_at, :created_at, :updated_at)
    `, c)
	return err
}

func (r *PGRepository) Touch(ctx context.Context, c *model.Cart) error {
	row := r.DB.QueryRowxContext(ctx, `
        UPDATE carts
        SET status = CASE status WHEN 'ABANDONED' THEN 'RECOVERED' WHEN 'CONVERTED' THEN 'ACTIVE' ELSE status END,
            last_activity_at = NOW(),
            updated_at = NOW()
        WHERE id = $1
        RETURNING status, last_activity_at
    `, c.ID)
	return row.Scan(&c.Status, &c.LastActivityAt)
}

func (r *PGRepository) ListItems(ctx context.Context, cartID string) ([]model.CartItem, error) {
	items := []model.CartItem{}
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY created_at ASC`, cartID)
	return items, err
}

func (r *PGRepository) FindItem(ctx context.Context, cartID, itemID string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.DB.GetContext(ctx, &item, `SELECT * FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

const upsertItem = `
    INSERT INTO cart_items (id, cart_id, variant_id, quantity, created_at, updated_at)
    VALUES (:id, :cart_id, :variant_id, :quantity, :created_at, :updated_at)
    ON CONFLICT (cart_id, variant_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
`

func (r *PGRepository) SetItemQuantity(ctx context.Context, item *model.CartItem) error {
	_, err := r.DB.NamedExecContext(ctx, upsertItem, item)
	return err
}

func (r *PGRepository) DeleteItem(ctx context.Context, cartID, itemID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	return err
}

func (r *PGRepository) ClearItems(ctx context.Context, cartID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func (r *PGRepository) FindSellable(ctx context.Context, variantIDs []string) ([]model.SellableVariant, error) {
	return prodrepo.FindSellable(ctx, r.DB, variantIDs)
}

func (r *PGRepository) Merge(ctx context.Context, guestCartID string, target *model.Cart, lines []model.CartItem) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		for i := range lines {
			if _, err := tx.NamedExecContext(ctx, upsertItem, &lines[i]); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, guestCartID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
            UPDATE carts
            SET status = CASE status WHEN 'ABANDONED' THEN 'RECOVERED' WHEN 'CONVERTED' THEN 'ACTIVE' ELSE status END,
                last_activity_at = NOW(), updated_at = NOW()
            WHERE id = $1
        `, target.ID)
		return err
	})
}

const abandonedSummary = `
    SELECT c.id, c.user_id, u.email, c.abandoned_at,
           COALESCE(SUM(ci.quantity), 0) AS item_count,
           COALESCE(SUM(ci.quantity * (p.base_price + v.price_adjustment)), 0) AS subtotal
    FROM carts c
    LEFT JOIN users u ON u.id = c.user_id
    JOIN cart_items ci ON ci.cart_id = c.id
    JOIN product_variants v ON v.id = ci.variant_id
    JOIN products p ON p.id = v.product_id
`

// MarkAbandoned flips idle, non-empty ACTIVE/RECOVERED carts and returns their summaries.
func (r *PGRepository) MarkAbandoned(ctx context.Context, idleSince time.Time) ([]model.AbandonedCart, error) {
	carts := []model.AbandonedCart{}
	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		ids := []string{}
		err := tx.SelectContext(ctx, &ids, `
            UPDATE carts SET status = 'ABANDONED', abandoned_at = NOW(), updated_at = NOW()
            WHERE status IN ('ACTIVE', 'RECOVERED')
              AND last_activity_at < $1
              AND EXISTS (SELECT 1 FROM cart_items ci WHERE ci.cart_id = carts.id)
            RETURNING id
        `, idleSince)
		if err != nil || len(ids) == 0 {
			return err
		}
		return tx.SelectContext(ctx, &carts,
			abandonedSummary+` WHERE c.id = ANY($1) GROUP BY c.id, u.email`, pq.Array(ids))
	})
	return carts, err
}

func (r *PGRepository) ListAbandoned(ctx context.Context, page, pageSize int) ([]model.AbandonedCart, int, error) {
	var count int
	if err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM carts WHERE status = 'ABANDONED'`); err != nil {
		return nil, 0, err
	}

	carts := []model.AbandonedCart{}
	query := abandonedSummary + ` WHERE c.status = 'ABANDONED' GROUP BY c.id, u.email ORDER BY c.abandoned_at DESC` +
		postgres.Paginate(page, pageSize)
	if err := r.DB.SelectContext(ctx, &carts, query); err != nil {
		return nil, 0, err
	}
	return carts, count, nil
}
