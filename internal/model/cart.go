package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CartActive    = "ACTIVE"
	CartAbandoned = "ABANDONED"
	CartRecovered = "RECOVERED"
	CartConverted = "CONVERTED"
)

type Cart struct {
	BaseModel
	UserID         *string    `db:"user_id" json:"user_id"`
	SessionID      *string    `db:"session_id" json:"session_id,omitempty"`
	Status         string     `db:"status" json:"status"`
	LastActivityAt time.Time  `db:"last_activity_at" json:"last_activity_at"`
	AbandonedAt    *time.Time `db:"abandoned_at" json:"abandoned_at,omitempty"`
}

type CartItem struct {
	BaseModel
	CartID    string `db:"cart_id" json:"cart_id"`
	VariantID string `db:"variant_id" json:"variant_id"`
	Quantity  int    `db:"quantity" json:"quantity"`
}

// CartLine is a cart item priced at current prices.
type CartLine struct {
	ItemID      string          `json:"id"`
	VariantID   string          `json:"variant_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	VariantName string          `json:"variant_name"`
	SKU         string          `json:"sku"`
	Image       *string         `json:"image,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Available   int             `json:"available"`
	FlashSale   bool            `json:"flash_sale"`
}

type CartView struct {
	Cart
	Items     []CartLine      `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// AbandonedCart is a row of the admin abandoned cart report.
type AbandonedCart struct {
	ID          string          `db:"id" json:"id"`
	UserID      *string         `db:"user_id" json:"user_id"`
	Email       *string         `db:"email" json:"email"`
	ItemCount   int             `db:"item_count" json:"item_count"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
	AbandonedAt *time.Time      `db:"abandoned_at" json:"abandoned_at"`
}
