package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.FeatureFlag, error) {
	flags := []model.FeatureFlag{}
	err := r.DB.SelectContext(ctx, &flags, `SELECT * FROM feature_flags ORDER BY key ASC`)
	return flags, err
}

func (r *PGRepository) FindByKey(ctx context.Context, key string) (*model.FeatureFlag, error) {
	var f model.FeatureFlag
	if err := r.DB.GetContext(ctx, &f, `SELECT * FROM feature_flags WHERE key = $1`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// Upsert writes the flag by key and reloads the stored row into f.
func (r *PGRepository) Upsert(ctx context.Context, f *model.FeatureFlag) error {
	query, args, err := r.DB.BindNamed(`
        INSERT INTO feature_flags (id, key, description, enabled, is_premium, created_at, updated_at)
        VALUES (:id, :key, :description, :enabled, :is_premium, :created_at, :updated_at)
        ON CONFLICT (key) DO UPDATE
        SET description = EXCLUDED.description,
            enabled = EXCLUDED.enabled,
            is_premium = EXCLUDED.is_premium,
            updated_at = EXCLUDED.updated_at
        RETURNING *
    `, f)
	if err != nil {
		return err
	}
	return r.DB.GetContext(ctx, f, query, args...)
}

func (r *PGRepository) SetEnabled(ctx context.Context, key string, enabled bool) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE feature_flags SET enabled = $2, updated_at = NOW() WHERE key = $1`, key, enabled)
	return err
}
