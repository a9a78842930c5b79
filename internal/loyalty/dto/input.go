package dto

import "github.com/shopspring/decimal"

type TierInput struct {
	ActorID          string
	ID               string
	Name             string
	MinPoints        int
	DiscountPercent  decimal.Decimal
	PointsMultiplier decimal.Decimal
	Benefits         string
}

type AdjustInput struct {
	ActorID string
	UserID  string
	Points  int
	Reason  string
}
