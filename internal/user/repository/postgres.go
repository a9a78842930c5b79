package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/user/dto"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, email, password_hash, name, phone, role, is_active, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :name, :phone, :role, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, u)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT * FROM users WHERE email = $1`, email)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var u model.User
	if err := r.DB.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.UserFilters) ([]model.User, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Role != "" {
		conditions = append(conditions, "role = :role")
		args["role"] = f.Role
	}
	if f.Query != "" {
		conditions = append(conditions, "(email ILIKE :q OR name ILIKE :q)")
		args["q"] = "%" + f.Query + "%"
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM users"+where, args)
	if err != nil {
		return nil, 0, err
	}

	users := []model.User{}
	query := "SELECT * FROM users" + where + " ORDER BY created_at DESC" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &users, query, args); err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

func (r *PGRepository) Update(ctx context.Context, u *model.User) error {
	query := `
        UPDATE users
        SET name = :name,
            phone = :phone,
            role = :role,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, u)
	return err
}

func (r *PGRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	return err
}

func (r *PGRepository) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	addresses := []model.Address{}
	err := r.DB.SelectContext(ctx, &addresses,
		`SELECT * FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`, userID)
	return addresses, err
}

func (r *PGRepository) FindAddress(ctx context.Context, userID, id string) (*model.Address, error) {
	var a model.Address
	err := r.DB.GetContext(ctx, &a, `SELECT * FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) CountAddresses(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT count(*) FROM addresses WHERE user_id = $1`, userID)
	return n, err
}

const clearDefaults = `UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`

func (r *PGRepository) CreateAddress(ctx context.Context, a *model.Address) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if a.IsDefault {
			if _, err := tx.ExecContext(ctx, clearDefaults, a.UserID); err != nil {
				return err
			}
		}
		query := `
            INSERT INTO addresses (id, user_id, label, recipient, phone, line1, line2, city, province, postal_code, country, is_default, created_at, updated_at)
            VALUES (:id, :user_id, :label, :recipient, :phone, :line1, :line2, :city, :province, :postal_code, :country, :is_default, :created_at, :updated_at)
        `
		_, err := tx.NamedExecContext(ctx, query, a)
		return err
	})
}

func (r *PGRepository) UpdateAddress(ctx context.Context, a *model.Address) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if a.IsDefault {
			if _, err := tx.ExecContext(ctx, clearDefaults, a.UserID); err != nil {
				return err
			}
		}
		query := `
            UPDATE addresses
            SET label = :label, recipient = :recipient, phone = :phone, line1 = :line1, line2 = :line2,
                city = :city, province = :province, postal_code = :postal_code, country = :country,
                is_default = :is_default, updated_at = :updated_at
            WHERE id = :id AND user_id = :user_id
        `
		_, err := tx.NamedExecContext(ctx, query, a)
		return err
	})
}

func (r *PGRepository) DeleteAddress(ctx context.Context, userID, id string) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var wasDefault bool
		err := tx.GetContext(ctx, &wasDefault,
			`DELETE FROM addresses WHERE id = $1 AND user_id = $2 RETURNING is_default`, id, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if !wasDefault {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
            UPDATE addresses SET is_default = TRUE, updated_at = NOW()
            WHERE id = (SELECT id FROM addresses WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1)
        `, userID)
		return err
	})
}

func (r *PGRepository) SetDefaultAddress(ctx context.Context, userID, id string) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, clearDefaults, userID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE addresses SET is_default = TRUE, updated_at = NOW() WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})
}
