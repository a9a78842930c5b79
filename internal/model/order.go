package model

import (
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

const (
	OrderPending    = "PENDING"
	OrderPaid       = "PAID"
	OrderProcessing = "PROCESSING"
	OrderShipped    = "SHIPPED"
	OrderDelivered  = "DELIVERED"
	OrderCancelled  = "CANCELLED"
	OrderRefunded   = "REFUNDED"

	ChannelWeb = "WEB"
	ChannelPOS = "POS"

	PaymentCash = "CASH"
	PaymentCard = "CARD"
)

type Order struct {
	BaseModel
	OrderNumber     string           `db:"order_number" json:"order_number"`
	UserID          *string          `db:"user_id" json:"user_id"`
	CustomerEmail   string           `db:"customer_email" json:"customer_email"`
	Channel         string           `db:"channel" json:"channel"`
	Status          string           `db:"status" json:"status"`
	Currency        string           `db:"currency" json:"currency"`
	Subtotal        decimal.Decimal  `db:"subtotal" json:"subtotal"`
	DiscountTotal   decimal.Decimal  `db:"discount_total" json:"discount_total"`
	TierDiscount    decimal.Decimal  `db:"tier_discount" json:"tier_discount"`
	LoyaltyDiscount decimal.Decimal  `db:"loyalty_discount" json:"loyalty_discount"`
	ShippingTotal   decimal.Decimal  `db:"shipping_total" json:"shipping_total"`
	TaxTotal        decimal.Decimal  `db:"tax_total" json:"tax_total"`
	GrandTotal      decimal.Decimal  `db:"grand_total" json:"grand_total"`
	DiscountCodeID  *string          `db:"discount_code_id" json:"discount_code_id"`
	DiscountCode    *string          `db:"discount_code" json:"discount_code"`
	PointsRedeemed  int              `db:"points_redeemed" json:"points_redeemed"`
	ShippingAddress types.JSONText   `db:"shipping_address" json:"shipping_address"`
	PaymentMethod   string           `db:"payment_method" json:"payment_method"`
	AmountTendered  *decimal.Decimal `db:"amount_tendered" json:"amount_tendered,omitempty"`
	ChangeDue       *decimal.Decimal `db:"change_due" json:"change_due,omitempty"`
	POSSessionID    *string          `db:"pos_session_id" json:"pos_session_id,omitempty"`
	Notes           string           `db:"notes" json:"notes"`
	Items           []OrderItem      `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	ID          string          `db:"id" json:"id"`
	OrderID     string          `db:"order_id" json:"order_id"`
	ProductID   string          `db:"product_id" json:"product_id"`
	VariantID   string          `db:"variant_id" json:"variant_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	VariantName string          `db:"variant_name" json:"variant_name"`
	SKU         string          `db:"sku" json:"sku"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	LineTotal   decimal.Decimal `db:"line_total" json:"line_total"`
	FlashSaleID *string         `db:"flash_sale_id" json:"flash_sale_id,omitempty"`
}

type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

type SalesSummary struct {
	OrderCount        int             `json:"order_count"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	ByStatus          []StatusCount   `json:"by_status"`
}
