package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	FlashSaleScheduled = "SCHEDULED"
	FlashSaleActive    = "ACTIVE"
	FlashSaleEnded     = "ENDED"
	FlashSaleCancelled = "CANCELLED"
)

type FlashSale struct {
	BaseModel
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	StartsAt    time.Time       `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time       `db:"ends_at" json:"ends_at"`
	Status      string          `db:"status" json:"status"`
	Items       []FlashSaleItem `db:"-" json:"items,omitempty"`
}

type FlashSaleItem struct {
	ID            string          `db:"id" json:"id"`
	FlashSaleID   string          `db:"flash_sale_id" json:"flash_sale_id"`
	ProductID     string          `db:"product_id" json:"product_id"`
	SalePrice     decimal.Decimal `db:"sale_price" json:"sale_price"`
	QuantityLimit *int            `db:"quantity_limit" json:"quantity_limit"`
	SoldCount     int             `db:"sold_count" json:"sold_count"`
	ProductName   string          `db:"product_name" json:"product_name,omitempty"`
	ProductSlug   string          `db:"product_slug" json:"product_slug,omitempty"`
	BasePrice     decimal.Decimal `db:"base_price" json:"base_price"`
}

// Remaining reports how many units can still sell at the sale price; -1 is unlimited.
func (i FlashSaleItem) Remaining() int {
	if i.QuantityLimit == nil {
		return -1
	}
	if r := *i.QuantityLimit - i.SoldCount; r > 0 {
		return r
	}
	return 0
}
