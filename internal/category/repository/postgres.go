package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/category/dto"
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

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, parent_id, name, slug, description, image_url, sort_order, is_active, created_at, updated_at)
        VALUES (:id, :parent_id, :name, :slug, :description, :image_url, :sort_order, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.findOne(ctx, `SELECT * FROM categories WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.findOne(ctx, `SELECT * FROM categories WHERE slug = $1 LIMIT 1`, slug)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Category, error) {
	var category model.Category
	err := r.DB.GetContext(ctx, &category, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "parent_id IS NULL")
		} else {
			conditions = append(conditions, "parent_id = :parent_id")
			args["parent_id"] = *f.ParentID
		}
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.Query != "" {
		conditions = append(conditions, "name ILIKE :q")
		args["q"] = "%" + f.Query + "%"
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM categories"+where, args)
	if err != nil {
		return nil, 0, err
	}

	categories := []model.Category{}
	query := "SELECT * FROM categories" + where + " ORDER BY sort_order ASC, name ASC" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &categories, query, args); err != nil {
		return nil, 0, err
	}
	return categories, count, nil
}

func (r *PGRepository) FindAllActive(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	err := r.DB.SelectContext(ctx, &categories,
		`SELECT * FROM categories WHERE is_active ORDER BY sort_order ASC, name ASC`)
	return categories, err
}

func (r *PGRepository) IsSlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1 AND id::text <> $2)`, slug, excludeID)
	return exists, err
}

func (r *PGRepository) AncestorIDs(ctx context.Context, id string) ([]string, error) {
	ids := []string{}
	err := r.DB.SelectContext(ctx, &ids, `
        WITH RECURSIVE chain AS (
            SELECT id, parent_id, 1 AS depth FROM categories WHERE id = $1
            UNION ALL
            SELECT c.id, c.parent_id, chain.depth + 1
            FROM categories c JOIN chain ON c.id = chain.parent_id
            WHERE chain.depth < 64
        )
        SELECT id FROM chain
    `, id)
	return ids, err
}

func (r *PGRepository) CountChildren(ctx context.Context, id string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT count(*) FROM categories WHERE parent_id = $1`, id)
	return n, err
}

func (r *PGRepository) CountProducts(ctx context.Context, id string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT count(*) FROM products WHERE category_id = $1`, id)
	return n, err
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            name = :name,
            slug = :slug,
            description = :description,
            image_url = :image_url,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	return err
}
