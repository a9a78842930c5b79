package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var entityTables = map[string]string{
	model.SEOProduct:  "products",
	model.SEOCategory: "categories",
	model.SEOPage:     "cms_pages",
}

func (r *PGRepository) EntityExists(ctx context.Context, entityType, entityID string) (bool, error) {
	table, ok := entityTables[entityType]
	if !ok {
		return false, fmt.Errorf("unknown seo entity type %q", entityType)
	}
	var exists bool
	err := r.DB.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, entityID)
	return exists, err
}

func (r *PGRepository) Upsert(ctx context.Context, m *model.SEOMetadata) error {
	query, args, err := r.DB.BindNamed(`
        INSERT INTO seo_metadata (id, entity_type, entity_id, meta_title, meta_description, canonical_url, og_image, no_index, created_at, updated_at)
        VALUES (:id, :entity_type, :entity_id, :meta_title, :meta_description, :canonical_url, :og_image, :no_index, :created_at, :updated_at)
        ON CONFLICT (entity_type, entity_id) DO UPDATE
        SET meta_title = EXCLUDED.meta_title,
            meta_description = EXCLUDED.meta_description,
            canonical_url = EXCLUDED.canonical_url,
            og_image = EXCLUDED.og_image,
            no_index = EXCLUDED.no_index,
            updated_at = EXCLUDED.updated_at
        RETURNING *
    `, m)
	if err != nil {
		return err
	}
	return r.DB.GetContext(ctx, m, query, args...)
}

func (r *PGRepository) Find(ctx context.Context, entityType, entityID string) (*model.SEOMetadata, error) {
	var m model.SEOMetadata
	err := r.DB.GetContext(ctx, &m,
		`SELECT * FROM seo_metadata WHERE entity_type = $1 AND entity_id = $2`, entityType, entityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *PGRepository) Delete(ctx context.Context, entityType, entityID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM seo_metadata WHERE entity_type = $1 AND entity_id = $2`, entityType, entityID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const sitemapQuery = `
    SELECT 'product' AS entity_type, p.slug, p.updated_at
    FROM products p
    LEFT JOIN seo_metadata s ON s.entity_type = 'product' AND s.entity_id = p.id
    WHERE p.is_active AND NOT COALESCE(s.no_index, FALSE)
    UNION ALL
    SELECT 'category', c.slug, c.updated_at
    FROM categories c
    LEFT JOIN seo_metadata s ON s.entity_type = 'category' AND s.entity_id = c.id
    WHERE c.is_active AND NOT COALESCE(s.no_index, FALSE)
    UNION ALL
    SELECT 'page', pg.slug, pg.updated_at
    FROM cms_pages pg
    LEFT JOIN seo_metadata s ON s.entity_type = 'page' AND s.entity_id = pg.id
    WHERE pg.status = 'PUBLISHED' AND NOT COALESCE(s.no_index, FALSE)
    ORDER BY entity_type, slug
`

func (r *PGRepository) SitemapEntries(ctx context.Context) ([]model.SitemapEntry, error) {
	entries := []model.SitemapEntry{}
	err := r.DB.SelectContext(ctx, &entries, sitemapQuery)
	return entries, err
}
