package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/flashsale"
	"github.com/fekuna/omnipos-commerce/internal/flashsale/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const itemColumns = `
    i.id, i.flash_sale_id, i.product_id, i.sale_price, i.quantity_limit, i.sold_count,
    p.name AS product_name, p.slug AS product_slug, p.base_price
`

// ConsumeItem counts qty sold units of a sale item inside the order
// transaction, failing with flashsale.ErrSoldOut past the quantity limit.
func ConsumeItem(ctx context.Context, tx sqlx.ExecerContext, itemID string, qty int) error {
	res, err := tx.ExecContext(ctx, `
        UPDATE flash_sale_items
        SET sold_count = sold_count + $2
        WHERE id = $1 AND (quantity_limit IS NULL OR sold_count + $2 <= quantity_limit)
    `, itemID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return flashsale.ErrSoldOut
	}
	return nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, sale *model.FlashSale) error {
	for i := range sale.Items {
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO flash_sale_items (id, flash_sale_id, product_id, sale_price, quantity_limit, sold_count)
            VALUES (:id, :flash_sale_id, :product_id, :sale_price, :quantity_limit, :sold_count)
        `, &sale.Items[i])
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepository) Create(ctx context.Context, sale *model.FlashSale) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO flash_sales (id, name, description, starts_at, ends_at, status, created_at, updated_at)
            VALUES (:id, :name, :description, :starts_at, :ends_at, :status, :created_at, :updated_at)
        `, sale)
		if err != nil {
			return err
		}
		return insertItems(ctx, tx, sale)
	})
}

func (r *PGRepository) Update(ctx context.Context, sale *model.FlashSale) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
            UPDATE flash_sales
            SET name = :name, description = :description, starts_at = :starts_at, ends_at = :ends_at, updated_at = :updated_at
            WHERE id = :id
        `, sale)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM flash_sale_items WHERE flash_sale_id = $1`, sale.ID); err != nil {
			return err
		}
		return insertItems(ctx, tx, sale)
	})
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.FlashSale, error) {
	var sale model.FlashSale
	if err := r.DB.GetContext(ctx, &sale, `SELECT * FROM flash_sales WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, []*model.FlashSale{&sale}); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *PGRepository) loadItems(ctx context.Context, sales []*model.FlashSale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	byID := make(map[string]*model.FlashSale, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		byID[s.ID] = s
		s.Items = []model.FlashSaleItem{}
	}

	items := []model.FlashSaleItem{}
	err := r.DB.SelectContext(ctx, &items, `
        SELECT `+itemColumns+`
        FROM flash_sale_items i
        JOIN products p ON p.id = i.product_id
        WHERE i.flash_sale_id = ANY($1)
        ORDER BY p.name ASC
    `, pq.Array(ids))
	if err != nil {
		return err
	}
	for _, it := range items {
		if s, ok := byID[it.FlashSaleID]; ok {
			s.Items = append(s.Items, it)
		}
	}
	return nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.SaleFilters) ([]model.FlashSale, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM flash_sales"+where, args)
	if err != nil {
		return nil, 0, err
	}

	sales := []model.FlashSale{}
	query := "SELECT * FROM flash_sales" + where + " ORDER BY starts_at DESC" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &sales, query, args); err != nil {
		return nil, 0, err
	}
	return sales, count, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM flash_sales WHERE id = $1`, id)
	return err
}

func (r *PGRepository) SetStatus(ctx context.Context, id, status string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE flash_sales SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *PGRepository) BasePrices(ctx context.Context, productIDs []string) (map[string]decimal.Decimal, error) {
	rows := []struct {
		ID        string          `db:"id"`
		BasePrice decimal.Decimal `db:"base_price"`
	}{}
	err := r.DB.SelectContext(ctx, &rows, `SELECT id, base_price FROM products WHERE id = ANY($1)`, pq.Array(productIDs))
	if err != nil {
		return nil, err
	}
	prices := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		prices[row.ID] = row.BasePrice
	}
	return prices, nil
}

// FindRunning returns ACTIVE sales inside their window, so a late cron tick
// never leaves an expired sale visible.
func (r *PGRepository) FindRunning(ctx context.Context, now time.Time) ([]model.FlashSale, error) {
	sales := []model.FlashSale{}
	err := r.DB.SelectContext(ctx, &sales, `
        SELECT * FROM flash_sales
        WHERE status = 'ACTIVE' AND starts_at <= $1 AND ends_at > $1
        ORDER BY ends_at ASC
    `, now)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*model.FlashSale, len(sales))
	for i := range sales {
		ptrs[i] = &sales[i]
	}
	if err := r.loadItems(ctx, ptrs); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *PGRepository) FindRunningItems(ctx context.Context, productIDs []string, now time.Time) ([]model.FlashSaleItem, error) {
	items := []model.FlashSaleItem{}
	if len(productIDs) == 0 {
		return items, nil
	}
	err := r.DB.SelectContext(ctx, &items, `
        SELECT `+itemColumns+`
        FROM flash_sale_items i
        JOIN flash_sales s ON s.id = i.flash_sale_id
        JOIN products p ON p.id = i.product_id
        WHERE i.product_id = ANY($1)
          AND s.status = 'ACTIVE' AND s.starts_at <= $2 AND s.ends_at > $2
          AND (i.quantity_limit IS NULL OR i.sold_count < i.quantity_limit)
        ORDER BY i.sale_price ASC
    `, pq.Array(productIDs), now)
	return items, err
}

func (r *PGRepository) StartDue(ctx context.Context, now time.Time) (int, error) {
	return r.transition(ctx, `
        UPDATE flash_sales SET status = 'ACTIVE', updated_at = NOW()
        WHERE status = 'SCHEDULED' AND starts_at <= $1 AND ends_at > $1
    `, now)
}

// EndDue also closes scheduled sales whose whole window passed unnoticed.
func (r *PGRepository) EndDue(ctx context.Context, now time.Time) (int, error) {
	return r.transition(ctx, `
        UPDATE flash_sales SET status = 'ENDED', updated_at = NOW()
        WHERE status IN ('SCHEDULED', 'ACTIVE') AND ends_at <= $1
    `, now)
}

func (r *PGRepository) transition(ctx context.Context, query string, now time.Time) (int, error) {
	res, err := r.DB.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
