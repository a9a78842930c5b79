package dto

import (
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/shopspring/decimal"
)

type OpenInput struct {
	StaffID      string
	RegisterName string
	OpeningCash  decimal.Decimal
}

type CloseInput struct {
	StaffID     string
	ClosingCash decimal.Decimal
	Notes       string
}

type SaleLine struct {
	VariantID string
	Quantity  int
}

type SaleInput struct {
	StaffID        string
	Items          []SaleLine
	PaymentMethod  string
	AmountTendered *decimal.Decimal
	CustomerID     string
	DiscountCode   string
	Notes          string
}

// SessionReport is a closed session with its cash variance.
type SessionReport struct {
	*model.POSSession
	Variance decimal.Decimal `json:"variance"`
}
