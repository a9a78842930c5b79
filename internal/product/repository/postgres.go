package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	invrepo "github.com/fekuna/omnipos-commerce/internal/inventory/repository"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/product/dto"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertVariant = `
    INSERT INTO product_variants (id, product_id, sku, name, price_adjustment, stock, is_active, created_at, updated_at)
    VALUES (:id, :product_id, :sku, :name, :price_adjustment, :stock, :is_active, :created_at, :updated_at)
`

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		query := `
            INSERT INTO products (
                id, category_id, name, slug, description, base_price, compare_at_price,
                stock, images, is_active, is_featured, created_at, updated_at
            )
            VALUES (
                :id, :category_id, :name, :slug, :description, :base_price, :compare_at_price,
                :stock, :images, :is_active, :is_featured, :created_at, :updated_at
            )
        `
		if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
			return err
		}
		for i := range p.Variants {
			if err := insertVariantWithStock(ctx, tx, &p.Variants[i]); err != nil {
				return fmt.Errorf("failed to insert variant %s: %w", p.Variants[i].SKU, err)
			}
		}
		return invrepo.SyncProductStock(ctx, tx, p.ID)
	})
}

// insertVariantWithStock writes the variant and, when it opens with stock,
// the initial movement that explains it.
func insertVariantWithStock(ctx context.Context, tx *sqlx.Tx, v *model.ProductVariant) error {
	if _, err := tx.NamedExecContext(ctx, insertVariant, v); err != nil {
		return err
	}
	if v.Stock == 0 {
		return nil
	}
	return invrepo.InsertMovement(ctx, tx, &model.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      v.ProductID,
		VariantID:      v.ID,
		MovementType:   model.MovementInitial,
		QuantityChange: v.Stock,
		QuantityAfter:  v.Stock,
		Notes:          "opening stock",
		CreatedAt:      v.CreatedAt,
	})
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.findOne(ctx, `SELECT * FROM products WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.findOne(ctx, `SELECT * FROM products WHERE slug = $1 LIMIT 1`, slug)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Product, error) {
	var p model.Product
	if err := r.DB.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	variants, err := r.ListVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

// FindByIDs keeps the order of ids and skips ids that no longer exist.
func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	rows := []model.Product{}
	if err := r.DB.SelectContext(ctx, &rows, `SELECT * FROM products WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, err
	}

	byID := make(map[string]model.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	products := make([]model.Product, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

var sortColumns = map[string]string{
	"name":       "p.name",
	"price":      "p.base_price",
	"created_at": "p.created_at",
	"rating":     "p.avg_rating",
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.CategoryID != "" {
		conditions = append(conditions, "p.category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.CategorySlug != "" {
		conditions = append(conditions, "p.category_id IN (SELECT id FROM categories WHERE slug = :category_slug)")
		args["category_slug"] = f.CategorySlug
	}
	if f.IsActive != nil {
		conditions = append(conditions, "p.is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.IsFeatured != nil {
		conditions = append(conditions, "p.is_featured = :is_featured")
		args["is_featured"] = *f.IsFeatured
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(p.name ILIKE :q OR p.description ILIKE :q)")
		args["q"] = "%" + f.SearchQuery + "%"
	}
	if f.MinPrice != nil {
		conditions = append(conditions, "p.base_price >= :min_price")
		args["min_price"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "p.base_price <= :max_price")
		args["max_price"] = *f.MaxPrice
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM products p"+where, args)
	if err != nil {
		return nil, 0, err
	}

	orderBy := "p.created_at DESC"
	if col, ok := sortColumns[f.SortBy]; ok {
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy = col + " ASC"
		} else {
			orderBy = col + " DESC"
		}
	}

	products := []model.Product{}
	query := "SELECT p.* FROM products p" + where + " ORDER BY " + orderBy + ", p.id" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &products, query, args); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

// FindAllActive pages through active products by id, for reindexing and sitemaps.
func (r *PGRepository) FindAllActive(ctx context.Context, afterID string, limit int) ([]model.Product, error) {
	products := []model.Product{}
	err := r.DB.SelectContext(ctx, &products,
		`SELECT * FROM products WHERE is_active AND id::text > $1 ORDER BY id::text LIMIT $2`, afterID, limit)
	return products, err
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET category_id = :category_id,
            name = :name,
            slug = :slug,
            description = :description,
            base_price = :base_price,
            compare_at_price = :compare_at_price,
            images = :images,
            is_active = :is_active,
            is_featured = :is_featured,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *PGRepository) IsSlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1 AND id::text <> $2)`, slug, excludeID)
	return exists, err
}

func (r *PGRepository) IsSKUTaken(ctx context.Context, sku, excludeVariantID string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM product_variants WHERE sku = $1 AND id::text <> $2)`, sku, excludeVariantID)
	return exists, err
}

func (r *PGRepository) CategoryExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id)
	return exists, err
}

func (r *PGRepository) ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error) {
	variants := []model.ProductVariant{}
	err := r.DB.SelectContext(ctx, &variants,
		`SELECT * FROM product_variants WHERE product_id = $1 ORDER BY created_at ASC, sku ASC`, productID)
	return variants, err
}

func (r *PGRepository) FindVariant(ctx context.Context, productID, variantID string) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.DB.GetContext(ctx, &v,
		`SELECT * FROM product_variants WHERE id = $1 AND product_id = $2`, variantID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) AddVariant(ctx context.Context, v *model.ProductVariant) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if err := insertVariantWithStock(ctx, tx, v); err != nil {
			return err
		}
		return invrepo.SyncProductStock(ctx, tx, v.ProductID)
	})
}

// UpdateVariant leaves stock alone; stock only moves through inventory movements.
func (r *PGRepository) UpdateVariant(ctx context.Context, v *model.ProductVariant) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		query := `
            UPDATE product_variants
            SET sku = :sku,
                name = :name,
                price_adjustment = :price_adjustment,
                is_active = :is_active,
                updated_at = :updated_at
            WHERE id = :id AND product_id = :product_id
        `
		if _, err := tx.NamedExecContext(ctx, query, v); err != nil {
			return err
		}
		return invrepo.SyncProductStock(ctx, tx, v.ProductID)
	})
}

func (r *PGRepository) DeleteVariant(ctx context.Context, productID, variantID string) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM product_variants WHERE id = $1 AND product_id = $2`, variantID, productID); err != nil {
			return err
		}
		return invrepo.SyncProductStock(ctx, tx, productID)
	})
}

// FindSellable loads variants with the product fields needed to price them.
// IsActive is false when either the variant or its product is inactive.
func FindSellable(ctx context.Context, q sqlx.QueryerContext, variantIDs []string) ([]model.SellableVariant, error) {
	variants := []model.SellableVariant{}
	if len(variantIDs) == 0 {
		return variants, nil
	}
	err := sqlx.SelectContext(ctx, q, &variants, `
        SELECT v.id AS variant_id, p.id AS product_id, p.name AS product_name, p.slug AS product_slug,
               v.name AS variant_name, v.sku, p.base_price, v.price_adjustment, v.stock,
               (v.is_active AND p.is_active) AS is_active, p.images[1] AS image
        FROM product_variants v
        JOIN products p ON p.id = v.product_id
        WHERE v.id = ANY($1)
    `, pq.Array(variantIDs))
	return variants, err
}
