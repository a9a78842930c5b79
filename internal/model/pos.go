package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SessionOpen   = "OPEN"
	SessionClosed = "CLOSED"
)

type POSSession struct {
	ID           string           `db:"id" json:"id"`
	StaffID      string           `db:"staff_id" json:"staff_id"`
	RegisterName string           `db:"register_name" json:"register_name"`
	Status       string           `db:"status" json:"status"`
	OpeningCash  decimal.Decimal  `db:"opening_cash" json:"opening_cash"`
	CashSales    decimal.Decimal  `db:"cash_sales" json:"cash_sales"`
	CardSales    decimal.Decimal  `db:"card_sales" json:"card_sales"`
	OrderCount   int              `db:"order_count" json:"order_count"`
	ClosingCash  *decimal.Decimal `db:"closing_cash" json:"closing_cash"`
	ExpectedCash *decimal.Decimal `db:"expected_cash" json:"expected_cash"`
	Notes        string           `db:"notes" json:"notes"`
	OpenedAt     time.Time        `db:"opened_at" json:"opened_at"`
	ClosedAt     *time.Time       `db:"closed_at" json:"closed_at"`
}

// Variance is closing minus expected cash, zero while the session is open.
func (s *POSSession) Variance() decimal.Decimal {
	if s.ClosingCash == nil || s.ExpectedCash == nil {
		return decimal.Zero
	}
	return s.ClosingCash.Sub(*s.ExpectedCash)
}
