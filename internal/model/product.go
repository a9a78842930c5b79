package model

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	CategoryID     *string          `db:"category_id" json:"category_id"`
	Name           string           `db:"name" json:"name"`
	Slug           string           `db:"slug" json:"slug"`
	Description    *string          `db:"description" json:"description"`
	BasePrice      decimal.Decimal  `db:"base_price" json:"base_price"`
	CompareAtPrice *decimal.Decimal `db:"compare_at_price" json:"compare_at_price"`
	Stock          int              `db:"stock" json:"stock"`
	Images         pq.StringArray   `db:"images" json:"images"`
	IsActive       bool             `db:"is_active" json:"is_active"`
	IsFeatured     bool             `db:"is_featured" json:"is_featured"`
	AvgRating      decimal.Decimal  `db:"avg_rating" json:"avg_rating"`
	ReviewCount    int              `db:"review_count" json:"review_count"`
	Variants       []ProductVariant `db:"-" json:"variants,omitempty"`
	Category       *Category        `db:"-" json:"category,omitempty"`
	FlashPrice     *decimal.Decimal `db:"-" json:"flash_price,omitempty"`
}

type ProductVariant struct {
	BaseModel
	ProductID       string          `db:"product_id" json:"product_id"`
	SKU             string          `db:"sku" json:"sku"`
	Name            string          `db:"name" json:"name"`
	PriceAdjustment decimal.Decimal `db:"price_adjustment" json:"price_adjustment"`
	Stock           int             `db:"stock" json:"stock"`
	IsActive        bool            `db:"is_active" json:"is_active"`
}

// SellableVariant is a variant joined with the product fields needed to price it.
type SellableVariant struct {
	VariantID       string          `db:"variant_id"`
	ProductID       string          `db:"product_id"`
	ProductName     string          `db:"product_name"`
	ProductSlug     string          `db:"product_slug"`
	VariantName     string          `db:"variant_name"`
	SKU             string          `db:"sku"`
	BasePrice       decimal.Decimal `db:"base_price"`
	PriceAdjustment decimal.Decimal `db:"price_adjustment"`
	Stock           int             `db:"stock"`
	IsActive        bool            `db:"is_active"`
	Image           *string         `db:"image"`
}
