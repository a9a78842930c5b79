package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/media/dto"
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

func (r *PGRepository) Create(ctx context.Context, a *model.MediaAsset) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO media_assets (id, file_name, original_name, mime_type, size_bytes, storage_path, url, alt_text, folder, uploaded_by, created_at, updated_at)
        VALUES (:id, :file_name, :original_name, :mime_type, :size_bytes, :storage_path, :url, :alt_text, :folder, :uploaded_by, :created_at, :updated_at)
    `, a)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.MediaAsset, error) {
	var a model.MediaAsset
	if err := r.DB.GetContext(ctx, &a, `SELECT * FROM media_assets WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.MediaFilters) ([]model.MediaAsset, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Folder != "" {
		conditions = append(conditions, "folder = :folder")
		args["folder"] = f.Folder
	}
	if f.MimePrefix != "" {
		conditions = append(conditions, "mime_type LIKE :mime")
		args["mime"] = f.MimePrefix + "%"
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM media_assets"+where, args)
	if err != nil {
		return nil, 0, err
	}

	assets := []model.MediaAsset{}
	query := "SELECT * FROM media_assets" + where + " ORDER BY created_at DESC" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &assets, query, args); err != nil {
		return nil, 0, err
	}
	return assets, count, nil
}

func (r *PGRepository) Update(ctx context.Context, a *model.MediaAsset) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE media_assets SET alt_text = $2, folder = $3, updated_at = $4 WHERE id = $1`,
		a.ID, a.AltText, a.Folder, a.UpdatedAt)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM media_assets WHERE id = $1`, id)
	return err
}
