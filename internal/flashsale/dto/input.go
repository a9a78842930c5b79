package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleInput struct {
	ActorID     string
	ID          string
	Name        string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Items       []ItemInput
}

type ItemInput struct {
	ProductID     string
	SalePrice     decimal.Decimal
	QuantityLimit *int
}
