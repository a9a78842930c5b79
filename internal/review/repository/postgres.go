package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/review/dto"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const refreshRating = `
    UPDATE products p
    SET avg_rating = COALESCE(s.avg, 0), review_count = s.cnt, updated_at = NOW()
    FROM (
        SELECT ROUND(AVG(rating)::numeric, 2) AS avg, count(*) AS cnt
        FROM reviews
        WHERE product_id = $1 AND status = 'APPROVED'
    ) s
    WHERE p.id = $1
`

const selectReview = `SELECT r.*, COALESCE(u.name, '') AS author_name FROM reviews r LEFT JOIN users u ON u.id = r.user_id`

func (r *PGRepository) FindProductID(ctx context.Context, idOrSlug string) (string, error) {
	var id string
	err := r.DB.GetContext(ctx, &id,
		`SELECT id FROM products WHERE (id::text = $1 OR slug = $1) AND is_active`, idOrSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

func (r *PGRepository) HasDeliveredPurchase(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists, `
        SELECT EXISTS (
            SELECT 1 FROM orders o
            JOIN order_items oi ON oi.order_id = o.id
            WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = 'DELIVERED'
        )
    `, userID, productID)
	return exists, err
}

func (r *PGRepository) Create(ctx context.Context, rv *model.Review) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO reviews (id, product_id, user_id, rating, title, body, status, is_verified, created_at, updated_at)
        VALUES (:id, :product_id, :user_id, :rating, :title, :body, :status, :is_verified, :created_at, :updated_at)
    `, rv)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	var rv model.Review
	if err := r.DB.GetContext(ctx, &rv, selectReview+` WHERE r.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rv, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ReviewFilters) ([]model.Review, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "r.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.Status != "" {
		conditions = append(conditions, "r.status = :status")
		args["status"] = f.Status
	}
	if f.Rating > 0 {
		conditions = append(conditions, "r.rating = :rating")
		args["rating"] = f.Rating
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM reviews r"+where, args)
	if err != nil {
		return nil, 0, err
	}

	reviews := []model.Review{}
	query := selectReview + where + " ORDER BY r.created_at DESC" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &reviews, query, args); err != nil {
		return nil, 0, err
	}
	return reviews, count, nil
}

func (r *PGRepository) SetStatus(ctx context.Context, rv *model.Review) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE reviews SET status = $2, updated_at = $3 WHERE id = $1`,
			rv.ID, rv.Status, rv.UpdatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, refreshRating, rv.ProductID)
		return err
	})
}

func (r *PGRepository) Delete(ctx context.Context, rv *model.Review) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, rv.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, refreshRating, rv.ProductID)
		return err
	})
}
