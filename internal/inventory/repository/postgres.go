package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-commerce/internal/inventory"
	"github.com/fekuna/omnipos-commerce/internal/inventory/dto"
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

// SyncProductStock sets products.stock to the sum of its active variants.
// Every variant stock change must call it inside the same transaction.
func SyncProductStock(ctx context.Context, tx sqlx.ExecerContext, productID string) error {
	_, err := tx.ExecContext(ctx, `
        UPDATE products
        SET stock = (SELECT COALESCE(SUM(stock), 0) FROM product_variants WHERE product_id = $1 AND is_active),
            updated_at = NOW()
        WHERE id = $1
    `, productID)
	return err
}

// ChangeVariantStock adds delta to a variant's stock unless the result would be
// negative, in which case inventory.ErrInsufficientStock is returned.
func ChangeVariantStock(ctx context.Context, tx sqlx.QueryerContext, variantID string, delta int) (productID string, before, after int, err error) {
	row := tx.QueryRowxContext(ctx, `
        UPDATE product_variants
        SET stock = stock + $2, updated_at = NOW()
        WHERE id = $1 AND stock + $2 >= 0
        RETURNING product_id, stock - $2, stock
    `, variantID, delta)
	if err = row.Scan(&productID, &before, &after); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, 0, inventory.ErrInsufficientStock
		}
		return "", 0, 0, err
	}
	return productID, before, after, nil
}

func InsertMovement(ctx context.Context, tx sqlx.ExtContext, m *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, product_id, variant_id, movement_type, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :product_id, :variant_id, :movement_type, :quantity_change, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, tx, query, m)
	return err
}

// ApplyMovement changes stock, records the movement and resyncs the product.
func ApplyMovement(ctx context.Context, tx *sqlx.Tx, m *model.InventoryMovement) error {
	productID, before, after, err := ChangeVariantStock(ctx, tx, m.VariantID, m.QuantityChange)
	if err != nil {
		return err
	}
	m.ProductID = productID
	m.QuantityBefore = before
	m.QuantityAfter = after

	if err := InsertMovement(ctx, tx, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}
	return SyncProductStock(ctx, tx, productID)
}

func (r *PGRepository) FindVariant(ctx context.Context, id string) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.DB.GetContext(ctx, &v, `SELECT * FROM product_variants WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) AdjustStock(ctx context.Context, m *model.InventoryMovement) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		return ApplyMovement(ctx, tx, m)
	})
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.VariantID != "" {
		conditions = append(conditions, "variant_id = :variant_id")
		args["variant_id"] = f.VariantID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM inventory_movements"+where, args)
	if err != nil {
		return nil, 0, err
	}

	items := []model.InventoryMovement{}
	query := "SELECT * FROM inventory_movements" + where + " ORDER BY created_at DESC" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &items, query, args); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) ListLowStock(ctx context.Context, threshold, page, pageSize int) ([]model.LowStockItem, int, error) {
	const from = `
        FROM product_variants v
        JOIN products p ON p.id = v.product_id
        WHERE v.is_active AND p.is_active AND v.stock <= $1
    `
	var count int
	if err := r.DB.GetContext(ctx, &count, "SELECT count(*)"+from, threshold); err != nil {
		return nil, 0, err
	}

	items := []model.LowStockItem{}
	query := `SELECT v.id AS variant_id, p.id AS product_id, p.name AS product_name, v.name AS variant_name, v.sku, v.stock` +
		from + " ORDER BY v.stock ASC, p.name ASC" + postgres.Paginate(page, pageSize)
	if err := r.DB.SelectContext(ctx, &items, query, threshold); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}
