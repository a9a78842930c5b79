package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountPercentage   = "PERCENTAGE"
	DiscountFixed        = "FIXED"
	DiscountFreeShipping = "FREE_SHIPPING"
)

type DiscountCode struct {
	BaseModel
	Code           string          `db:"code" json:"code"`
	Description    string          `db:"description" json:"description"`
	Type           string          `db:"type" json:"type"`
	Value          decimal.Decimal `db:"value" json:"value"`
	MinOrderAmount decimal.Decimal `db:"min_order_amount" json:"min_order_amount"`
	MaxUses        *int            `db:"max_uses" json:"max_uses"`
	UsedCount      int             `db:"used_count" json:"used_count"`
	StartsAt       *time.Time      `db:"starts_at" json:"starts_at"`
	EndsAt         *time.Time      `db:"ends_at" json:"ends_at"`
	IsActive       bool            `db:"is_active" json:"is_active"`
}
