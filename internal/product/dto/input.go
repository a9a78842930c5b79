package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	ActorID        string
	CategoryID     string
	Name           string
	Slug           string
	Description    string
	BasePrice      decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Images         []string
	IsFeatured     bool
	// SKU and Stock describe the default variant when Variants is empty.
	SKU      string
	Stock    int
	Variants []VariantInput
}

type UpdateProductInput struct {
	ActorID        string
	ID             string
	CategoryID     string
	Name           string
	Slug           string
	Description    string
	BasePrice      decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Images         []string
	IsFeatured     bool
	IsActive       bool
}

// VariantInput.Stock is the opening stock and is ignored on update.
type VariantInput struct {
	ActorID         string
	ID              string
	ProductID       string
	SKU             string
	Name            string
	PriceAdjustment decimal.Decimal
	Stock           int
	IsActive        bool
}
