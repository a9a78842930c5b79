package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/cms"
	"github.com/fekuna/omnipos-commerce/internal/cms/dto"
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

func (r *PGRepository) ListTemplates(ctx context.Context) ([]model.CMSTemplate, error) {
	templates := []model.CMSTemplate{}
	err := r.DB.SelectContext(ctx, &templates, `SELECT * FROM cms_templates ORDER BY name ASC`)
	return templates, err
}

func (r *PGRepository) FindTemplate(ctx context.Context, id string) (*model.CMSTemplate, error) {
	var t model.CMSTemplate
	if err := r.DB.GetContext(ctx, &t, `SELECT * FROM cms_templates WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) CreateTemplate(ctx context.Context, t *model.CMSTemplate) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO cms_templates (id, name, block_type, description, required_fields, default_config, created_at, updated_at)
        VALUES (:id, :name, :block_type, :description, :required_fields, :default_config, :created_at, :updated_at)
    `, t)
	return err
}

func (r *PGRepository) UpdateTemplate(ctx context.Context, t *model.CMSTemplate) error {
	_, err := r.DB.NamedExecContext(ctx, `
        UPDATE cms_templates
        SET name = :name,
            block_type = :block_type,
            description = :description,
            required_fields = :required_fields,
            default_config = :default_config,
            updated_at = :updated_at
        WHERE id = :id
    `, t)
	return err
}

func (r *PGRepository) DeleteTemplate(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM cms_templates WHERE id = $1`, id)
	return err
}

func (r *PGRepository) CountTemplateBlocks(ctx context.Context, templateID string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT count(*) FROM cms_blocks WHERE template_id = $1`, templateID)
	return n, err
}

const insertRevision = `
    INSERT INTO cms_page_revisions (id, page_id, version, title, content, note, created_by, created_at)
    VALUES (:id, :page_id, :version, :title, :content, :note, :created_by, :created_at)
`

func (r *PGRepository) CreatePage(ctx context.Context, p *model.CMSPage, rev *model.CMSPageRevision) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, `
            INSERT INTO cms_pages (id, title, slug, content, status, version, published_at, created_by, updated_by, created_at, updated_at)
            VALUES (:id, :title, :slug, :content, :status, :version, :published_at, :created_by, :updated_by, :created_at, :updated_at)
        `, p); err != nil {
			return err
		}
		_, err := tx.NamedExecContext(ctx, insertRevision, rev)
		return err
	})
}

func (r *PGRepository) SavePage(ctx context.Context, p *model.CMSPage, rev *model.CMSPageRevision) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
            UPDATE cms_pages
            SET title = $2, slug = $3, content = $4, version = $5, updated_by = $6, updated_at = $7
            WHERE id = $1 AND version = $5 - 1
        `, p.ID, p.Title, p.Slug, p.Content, p.Version, p.UpdatedBy, p.UpdatedAt)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return cms.ErrPageChanged
		}
		_, err = tx.NamedExecContext(ctx, insertRevision, rev)
		return err
	})
}

func (r *PGRepository) findPage(ctx context.Context, query string, arg interface{}) (*model.CMSPage, error) {
	var p model.CMSPage
	if err := r.DB.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindPageByID(ctx context.Context, id string) (*model.CMSPage, error) {
	return r.findPage(ctx, `SELECT * FROM cms_pages WHERE id = $1`, id)
}

func (r *PGRepository) FindPageBySlug(ctx context.Context, slug string) (*model.CMSPage, error) {
	return r.findPage(ctx, `SELECT * FROM cms_pages WHERE slug = $1`, slug)
}

func (r *PGRepository) FindPages(ctx context.Context, f *dto.PageFilters) ([]model.CMSPage, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.Query != "" {
		conditions = append(conditions, "(title ILIKE :q OR slug ILIKE :q)")
		args["q"] = "%" + f.Query + "%"
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM cms_pages"+where, args)
	if err != nil {
		return nil, 0, err
	}

	pages := []model.CMSPage{}
	query := "SELECT * FROM cms_pages" + where + " ORDER BY updated_at DESC" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &pages, query, args); err != nil {
		return nil, 0, err
	}
	return pages, count, nil
}

func (r *PGRepository) IsSlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM cms_pages WHERE slug = $1 AND id::text <> $2)`, slug, excludeID)
	return exists, err
}

func (r *PGRepository) SetPageStatus(ctx context.Context, p *model.CMSPage) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE cms_pages SET status = $2, published_at = $3, updated_by = $4, updated_at = $5 WHERE id = $1
    `, p.ID, p.Status, p.PublishedAt, p.UpdatedBy, p.UpdatedAt)
	return err
}

func (r *PGRepository) DeletePage(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM cms_pages WHERE id = $1`, id)
	return err
}

func (r *PGRepository) ListRevisions(ctx context.Context, pageID string) ([]model.CMSPageRevision, error) {
	revs := []model.CMSPageRevision{}
	err := r.DB.SelectContext(ctx, &revs,
		`SELECT * FROM cms_page_revisions WHERE page_id = $1 ORDER BY version DESC`, pageID)
	return revs, err
}

func (r *PGRepository) FindRevision(ctx context.Context, pageID, id string) (*model.CMSPageRevision, error) {
	var rev model.CMSPageRevision
	err := r.DB.GetContext(ctx, &rev,
		`SELECT * FROM cms_page_revisions WHERE page_id = $1 AND id = $2`, pageID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rev, nil
}

func (r *PGRepository) ListBlocks(ctx context.Context, f *dto.BlockFilters) ([]model.CMSBlock, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.PageID != "" {
		conditions = append(conditions, "page_id = :page_id")
		args["page_id"] = f.PageID
	}
	if f.Placement != "" {
		conditions = append(conditions, "placement = :placement")
		args["placement"] = f.Placement
	}
	if f.ActiveOnly {
		conditions = append(conditions, "is_active")
	}

	blocks := []model.CMSBlock{}
	query := "SELECT * FROM cms_blocks" + postgres.Where(conditions) + " ORDER BY sort_order ASC, created_at ASC"
	err := postgres.NamedSelect(ctx, r.DB, &blocks, query, args)
	return blocks, err
}

func (r *PGRepository) FindBlock(ctx context.Context, id string) (*model.CMSBlock, error) {
	var b model.CMSBlock
	if err := r.DB.GetContext(ctx, &b, `SELECT * FROM cms_blocks WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) CreateBlock(ctx context.Context, b *model.CMSBlock) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO cms_blocks (id, page_id, template_id, name, placement, sort_order, config, is_active, created_at, updated_at)
        VALUES (:id, :page_id, :template_id, :name, :placement, :sort_order, :config, :is_active, :created_at, :updated_at)
    `, b)
	return err
}

func (r *PGRepository) UpdateBlock(ctx context.Context, b *model.CMSBlock) error {
	_, err := r.DB.NamedExecContext(ctx, `
        UPDATE cms_blocks
        SET page_id = :page_id,
            template_id = :template_id,
            name = :name,
            placement = :placement,
            sort_order = :sort_order,
            config = :config,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `, b)
	return err
}

func (r *PGRepository) DeleteBlock(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM cms_blocks WHERE id = $1`, id)
	return err
}

func (r *PGRepository) ReorderBlocks(ctx context.Context, pageID string, ids []string) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		for i, id := range ids {
			res, err := tx.ExecContext(ctx,
				`UPDATE cms_blocks SET sort_order = $3, updated_at = NOW() WHERE id = $1 AND page_id = $2`,
				id, pageID, i)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return cms.ErrBlockNotOnPage
			}
		}
		return nil
	})
}
