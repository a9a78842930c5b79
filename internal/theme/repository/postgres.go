package repository

import (
	"context"
	"database/sql"
	"errors"

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

func (r *PGRepository) FindAll(ctx context.Context) ([]model.Theme, error) {
	themes := []model.Theme{}
	err := r.DB.SelectContext(ctx, &themes, `SELECT * FROM themes ORDER BY is_active DESC, name ASC`)
	return themes, err
}

func (r *PGRepository) find(ctx context.Context, query string, args ...interface{}) (*model.Theme, error) {
	var t model.Theme
	if err := r.DB.GetContext(ctx, &t, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Theme, error) {
	return r.find(ctx, `SELECT * FROM themes WHERE id = $1`, id)
}

func (r *PGRepository) FindActive(ctx context.Context) (*model.Theme, error) {
	return r.find(ctx, `SELECT * FROM themes WHERE is_active`)
}

func (r *PGRepository) Create(ctx context.Context, t *model.Theme) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO themes (id, name, description, settings, is_active, created_at, updated_at)
        VALUES (:id, :name, :description, :settings, :is_active, :created_at, :updated_at)
    `, t)
	return err
}

func (r *PGRepository) Update(ctx context.Context, t *model.Theme) error {
	_, err := r.DB.NamedExecContext(ctx, `
        UPDATE themes
        SET name = :name, description = :description, settings = :settings, updated_at = :updated_at
        WHERE id = :id
    `, t)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM themes WHERE id = $1 AND NOT is_active`, id)
	return err
}

func (r *PGRepository) Activate(ctx context.Context, id string) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE themes SET is_active = FALSE, updated_at = NOW() WHERE is_active AND id <> $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE themes SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
		return err
	})
}
