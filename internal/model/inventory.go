package model

import "time"

const (
	MovementInitial    = "initial"
	MovementAdjustment = "adjustment"
	MovementSale       = "sale"
	MovementRestock    = "restock"
)

type InventoryMovement struct {
	ID             string    `db:"id" json:"id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	VariantID      string    `db:"variant_id" json:"variant_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange int       `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// LowStockItem is a variant at or under the low-stock threshold.
type LowStockItem struct {
	VariantID   string `db:"variant_id" json:"variant_id"`
	ProductID   string `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	VariantName string `db:"variant_name" json:"variant_name"`
	SKU         string `db:"sku" json:"sku"`
	Stock       int    `db:"stock" json:"stock"`
}
