package dto

import (
	"time"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/shopspring/decimal"
)

type CodeInput struct {
	ActorID        string
	ID             string
	Code           string
	Description    string
	Type           string
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxUses        *int
	StartsAt       *time.Time
	EndsAt         *time.Time
	IsActive       bool
}

// Quote is the outcome of applying a code to a subtotal.
type Quote struct {
	Discount     *model.DiscountCode `json:"-"`
	Code         string              `json:"code"`
	Type         string              `json:"type"`
	Amount       decimal.Decimal     `json:"amount"`
	FreeShipping bool                `json:"free_shipping"`
}
