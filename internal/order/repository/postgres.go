package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	cartrepo "github.com/fekuna/omnipos-commerce/internal/cart/repository"
	discountrepo "github.com/fekuna/omnipos-commerce/internal/discount/repository"
	flashrepo "github.com/fekuna/omnipos-commerce/internal/flashsale/repository"
	invrepo "github.com/fekuna/omnipos-commerce/internal/inventory/repository"
	loyaltyrepo "github.com/fekuna/omnipos-commerce/internal/loyalty/repository"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/order"
	"github.com/fekuna/omnipos-commerce/internal/order/dto"
	posrepo "github.com/fekuna/omnipos-commerce/internal/pos/repository"
	prodrepo "github.com/fekuna/omnipos-commerce/internal/product/repository"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/google/uuid"
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

const referenceOrder = "order"

func (r *PGRepository) Place(ctx context.Context, p *dto.Placement) error {
	o := p.Order
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO orders (
                id, order_number, user_id, customer_email, channel, status, currency,
                subtotal, discount_total, tier_discount, loyalty_discount, shipping_total, tax_total, grand_total,
                discount_code_id, discount_code, points_redeemed, shipping_address, payment_method,
                amount_tendered, change_due, pos_session_id, notes, created_at, updated_at
            )
            VALUES (
                :id, :order_number, :user_id, :customer_email, :channel, :status, :currency,
                :subtotal, :discount_total, :tier_discount, :loyalty_discount, :shipping_total, :tax_total, :grand_total,
                :discount_code_id, :discount_code, :points_redeemed, :shipping_address, :payment_method,
                :amount_tendered, :change_due, :pos_session_id, :notes, :created_at, :updated_at
            )
        `, o)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		ref := referenceOrder
		for i := range o.Items {
			item := &o.Items[i]
			if _, err := tx.NamedExecContext(ctx, `
                INSERT INTO order_items (
                    id, order_id, product_id, variant_id, product_name, variant_name, sku,
                    unit_price, quantity, line_total, flash_sale_id
                )
                VALUES (
                    :id, :order_id, :product_id, :variant_id, :product_name, :variant_name, :sku,
                    :unit_price, :quantity, :line_total, :flash_sale_id
                )
            `, item); err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}

			if err := invrepo.ApplyMovement(ctx, tx, &model.InventoryMovement{
				ID:             uuid.New().String(),
				VariantID:      item.VariantID,
				MovementType:   model.MovementSale,
				QuantityChange: -item.Quantity,
				ReferenceType:  &ref,
				ReferenceID:    &o.ID,
				Notes:          o.OrderNumber,
				CreatedBy:      optional(p.ActorID),
				CreatedAt:      o.CreatedAt,
			}); err != nil {
				return err
			}
		}

		for _, use := range p.FlashUses {
			if err := flashrepo.ConsumeItem(ctx, tx, use.ItemID, use.Quantity); err != nil {
				return err
			}
		}
		if o.DiscountCodeID != nil {
			if err := discountrepo.ConsumeCode(ctx, tx, *o.DiscountCodeID); err != nil {
				return err
			}
		}
		if o.PointsRedeemed > 0 && o.UserID != nil {
			if err := loyaltyrepo.Redeem(ctx, tx, *o.UserID, o.ID, o.PointsRedeemed, o.CreatedAt); err != nil {
				return err
			}
		}
		if o.POSSessionID != nil {
			if err := posrepo.RecordSale(ctx, tx, *o.POSSessionID, o.PaymentMethod, o.GrandTotal); err != nil {
				return err
			}
		}
		if p.CartID != "" {
			if err := cartrepo.Convert(ctx, tx, p.CartID); err != nil {
				return err
			}
		}
		return nil
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	if err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	o.Items = []model.OrderItem{}
	if err := r.DB.SelectContext(ctx, &o.Items,
		`SELECT * FROM order_items WHERE order_id = $1 ORDER BY product_name, sku`, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.UserID != "" {
		conditions = append(conditions, "user_id = :user_id")
		args["user_id"] = f.UserID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.Channel != "" {
		conditions = append(conditions, "channel = :channel")
		args["channel"] = f.Channel
	}
	if f.From != nil {
		conditions = append(conditions, "created_at >= :from")
		args["from"] = *f.From
	}
	if f.To != nil {
		conditions = append(conditions, "created_at < :to")
		args["to"] = *f.To
	}
	if f.Query != "" {
		conditions = append(conditions, "(order_number ILIKE :q OR customer_email ILIKE :q)")
		args["q"] = "%" + f.Query + "%"
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM orders"+where, args)
	if err != nil {
		return nil, 0, err
	}

	orders := []model.Order{}
	query := "SELECT * FROM orders" + where + " ORDER BY created_at DESC, id" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &orders, query, args); err != nil {
		return nil, 0, err
	}
	return orders, count, r.attachItems(ctx, orders)
}

func (r *PGRepository) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []model.OrderItem{}
	}

	items := []model.OrderItem{}
	if err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM order_items WHERE order_id = ANY($1) ORDER BY product_name, sku`, pq.Array(ids)); err != nil {
		return err
	}
	for _, it := range items {
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return nil
}

func (r *PGRepository) Transition(ctx context.Context, o *model.Order, from string, restock bool, actorID string) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
            UPDATE orders SET status = $3, updated_at = $4
            WHERE id = $1 AND status = $2
        `, o.ID, from, o.Status, o.UpdatedAt)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return order.ErrStatusChanged
		}
		if !restock {
			return nil
		}

		ref := referenceOrder
		for _, item := range o.Items {
			if err := invrepo.ApplyMovement(ctx, tx, &model.InventoryMovement{
				ID:             uuid.New().String(),
				VariantID:      item.VariantID,
				MovementType:   model.MovementRestock,
				QuantityChange: item.Quantity,
				ReferenceType:  &ref,
				ReferenceID:    &o.ID,
				Notes:          o.OrderNumber + " " + o.Status,
				CreatedBy:      optional(actorID),
				CreatedAt:      o.UpdatedAt,
			}); err != nil {
				return err
			}
		}
		if o.POSSessionID != nil {
			return posrepo.VoidSale(ctx, tx, *o.POSSessionID, o.PaymentMethod, o.GrandTotal)
		}
		return nil
	})
}

func (r *PGRepository) SalesSummary(ctx context.Context, from, to time.Time) (*model.SalesSummary, error) {
	summary := &model.SalesSummary{ByStatus: []model.StatusCount{}}

	var totals struct {
		Count   int             `db:"order_count"`
		Revenue decimal.Decimal `db:"revenue"`
	}
	err := r.DB.GetContext(ctx, &totals, `
        SELECT count(*) AS order_count, COALESCE(SUM(grand_total), 0) AS revenue
        FROM orders
        WHERE created_at >= $1 AND created_at < $2 AND status NOT IN ('CANCELLED', 'REFUNDED')
    `, from, to)
	if err != nil {
		return nil, err
	}
	summary.OrderCount = totals.Count
	summary.Revenue = totals.Revenue.Round(2)
	if totals.Count > 0 {
		summary.AverageOrderValue = totals.Revenue.Div(decimal.NewFromInt(int64(totals.Count))).Round(2)
	}

	err = r.DB.SelectContext(ctx, &summary.ByStatus, `
        SELECT status, count(*) AS count
        FROM orders
        WHERE created_at >= $1 AND created_at < $2
        GROUP BY status
        ORDER BY status
    `, from, to)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *PGRepository) FindSellable(ctx context.Context, variantIDs []string) ([]model.SellableVariant, error) {
	return prodrepo.FindSellable(ctx, r.DB, variantIDs)
}

func (r *PGRepository) FindAddress(ctx context.Context, userID, addressID string) (*model.Address, error) {
	var a model.Address
	err := r.DB.GetContext(ctx, &a, `SELECT * FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) FindCustomerEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := r.DB.GetContext(ctx, &email, `SELECT email FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return email, err
}
