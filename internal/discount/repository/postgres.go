package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/discount"
	"github.com/fekuna/omnipos-commerce/internal/discount/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// ConsumeCode counts one use of a code inside the order transaction. The
// guard makes concurrent checkouts fail with discount.ErrUsageExhausted
// rather than exceed max_uses.
func ConsumeCode(ctx context.Context, tx sqlx.ExecerContext, id string) error {
	res, err := tx.ExecContext(ctx, `
        UPDATE discount_codes
        SET used_count = used_count + 1, updated_at = NOW()
        WHERE id = $1 AND (max_uses IS NULL OR used_count < max_uses)
    `, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return discount.ErrUsageExhausted
	}
	return nil
}

func (r *PGRepository) Create(ctx context.Context, d *model.DiscountCode) error {
	query := `
        INSERT INTO discount_codes (
            id, code, description, type, value, min_order_amount, max_uses, used_count,
            starts_at, ends_at, is_active, created_at, updated_at
        )
        VALUES (
            :id, :code, :description, :type, :value, :min_order_amount, :max_uses, :used_count,
            :starts_at, :ends_at, :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, d)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.DiscountCode, error) {
	return r.findOne(ctx, `SELECT * FROM discount_codes WHERE id = $1`, id)
}

func (r *PGRepository) FindByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	return r.findOne(ctx, `SELECT * FROM discount_codes WHERE code = $1`, code)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.DiscountCode, error) {
	var d model.DiscountCode
	if err := r.DB.GetContext(ctx, &d, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CodeFilters) ([]model.DiscountCode, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Query != "" {
		conditions = append(conditions, "(code ILIKE :q OR description ILIKE :q)")
		args["q"] = "%" + f.Query + "%"
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM discount_codes"+where, args)
	if err != nil {
		return nil, 0, err
	}

	codes := []model.DiscountCode{}
	query := "SELECT * FROM discount_codes" + where + " ORDER BY created_at DESC" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &codes, query, args); err != nil {
		return nil, 0, err
	}
	return codes, count, nil
}

func (r *PGRepository) Update(ctx context.Context, d *model.DiscountCode) error {
	query := `
        UPDATE discount_codes
        SET code = :code,
            description = :description,
            type = :type,
            value = :value,
            min_order_amount = :min_order_amount,
            max_uses = :max_uses,
            starts_at = :starts_at,
            ends_at = :ends_at,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, d)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM discount_codes WHERE id = $1`, id)
	return err
}
