package dto

import "github.com/shopspring/decimal"

type ProductFilters struct {
	CategoryID   string           `json:"category_id,omitempty"`
	CategorySlug string           `json:"category_slug,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
	IsFeatured   *bool            `json:"is_featured,omitempty"`
	SearchQuery  string           `json:"q,omitempty"`
	MinPrice     *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice     *decimal.Decimal `json:"max_price,omitempty"`
	SortBy       string           `json:"sort_by,omitempty"`    // name, price, created_at, rating
	SortOrder    string           `json:"sort_order,omitempty"` // asc, desc
	Page         int              `json:"page"`
	PageSize     int              `json:"page_size"`
}
