package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LoyaltyEarn    = "EARN"
	LoyaltyRedeem  = "REDEEM"
	LoyaltyAdjust  = "ADJUST"
	LoyaltyReverse = "REVERSE"
	LoyaltyRefund  = "REFUND"
)

type LoyaltyTier struct {
	BaseModel
	Name             string          `db:"name" json:"name"`
	MinPoints        int             `db:"min_points" json:"min_points"`
	DiscountPercent  decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	PointsMultiplier decimal.Decimal `db:"points_multiplier" json:"points_multiplier"`
	Benefits         string          `db:"benefits" json:"benefits"`
}

type LoyaltyAccount struct {
	BaseModel
	UserID         string       `db:"user_id" json:"user_id"`
	TierID         *string      `db:"tier_id" json:"tier_id"`
	PointsBalance  int          `db:"points_balance" json:"points_balance"`
	LifetimePoints int          `db:"lifetime_points" json:"lifetime_points"`
	UserEmail      string       `db:"user_email" json:"user_email,omitempty"`
	UserName       string       `db:"user_name" json:"user_name,omitempty"`
	Tier           *LoyaltyTier `db:"-" json:"tier,omitempty"`
}

type LoyaltyTransaction struct {
	ID          string    `db:"id" json:"id"`
	AccountID   string    `db:"account_id" json:"account_id"`
	Type        string    `db:"type" json:"type"`
	Points      int       `db:"points" json:"points"`
	OrderID     *string   `db:"order_id" json:"order_id"`
	Description string    `db:"description" json:"description"`
	CreatedBy   *string   `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PointsQuote previews what redeeming points is worth.
type PointsQuote struct {
	Points int             `json:"points"`
	Value  decimal.Decimal `json:"value"`
}
