package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/pos"
	"github.com/fekuna/omnipos-commerce/internal/pos/dto"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// RecordSale adds a paid order to an open session's running totals inside
// the order transaction.
func RecordSale(ctx context.Context, tx sqlx.ExecerContext, sessionID, paymentMethod string, total decimal.Decimal) error {
	column := "card_sales"
	if paymentMethod == model.PaymentCash {
		column = "cash_sales"
	}
	res, err := tx.ExecContext(ctx, `
        UPDATE pos_sessions
        SET `+column+` = `+column+` + $2, order_count = order_count + 1
        WHERE id = $1 AND status = 'OPEN'
    `, sessionID, total)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return pos.ErrSessionClosed
	}
	return nil
}

// VoidSale takes a cancelled or refunded order back out of its session's
// totals. A closed session keeps its figures.
func VoidSale(ctx context.Context, tx sqlx.ExecerContext, sessionID, paymentMethod string, total decimal.Decimal) error {
	column := "card_sales"
	if paymentMethod == model.PaymentCash {
		column = "cash_sales"
	}
	_, err := tx.ExecContext(ctx, `
        UPDATE pos_sessions
        SET `+column+` = GREATEST(`+column+` - $2, 0), order_count = GREATEST(order_count - 1, 0)
        WHERE id = $1 AND status = 'OPEN'
    `, sessionID, total)
	return err
}

func (r *PGRepository) Open(ctx context.Context, s *model.POSSession) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO pos_sessions (id, staff_id, register_name, status, opening_cash, cash_sales, card_sales, order_count, notes, opened_at)
        VALUES (:id, :staff_id, :register_name, :status, :opening_cash, :cash_sales, :card_sales, :order_count, :notes, :opened_at)
    `, s)
	return err
}

func (r *PGRepository) FindOpenByStaff(ctx context.Context, staffID string) (*model.POSSession, error) {
	return r.findOne(ctx, `SELECT * FROM pos_sessions WHERE staff_id = $1 AND status = 'OPEN'`, staffID)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.POSSession, error) {
	return r.findOne(ctx, `SELECT * FROM pos_sessions WHERE id = $1`, id)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.POSSession, error) {
	var s model.POSSession
	if err := r.DB.GetContext(ctx, &s, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.SessionFilters) ([]model.POSSession, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.StaffID != "" {
		conditions = append(conditions, "staff_id = :staff_id")
		args["staff_id"] = f.StaffID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.From != nil {
		conditions = append(conditions, "opened_at >= :from")
		args["from"] = *f.From
	}
	if f.To != nil {
		conditions = append(conditions, "opened_at < :to")
		args["to"] = *f.To
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM pos_sessions"+where, args)
	if err != nil {
		return nil, 0, err
	}

	sessions := []model.POSSession{}
	query := "SELECT * FROM pos_sessions" + where + " ORDER BY opened_at DESC" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &sessions, query, args); err != nil {
		return nil, 0, err
	}
	return sessions, count, nil
}

// Close computes expected cash in SQL so sales recorded up to the last
// moment are included.
func (r *PGRepository) Close(ctx context.Context, s *model.POSSession) (bool, error) {
	err := r.DB.GetContext(ctx, s, `
        UPDATE pos_sessions
        SET status = 'CLOSED',
            closing_cash = $2,
            expected_cash = opening_cash + cash_sales,
            notes = $3,
            closed_at = NOW()
        WHERE id = $1 AND status = 'OPEN'
        RETURNING *
    `, s.ID, s.ClosingCash, s.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
