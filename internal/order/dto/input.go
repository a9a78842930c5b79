package dto

import (
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/shopspring/decimal"
)

type CheckoutInput struct {
	UserID         string
	AddressID      string
	DiscountCode   string
	PointsToRedeem int
	PaymentMethod  string
	Notes          string
}

type LineInput struct {
	VariantID string
	Quantity  int
}

type PlaceOrderInput struct {
	ActorID        string
	UserID         string
	CustomerEmail  string
	Channel        string
	Status         string
	Items          []LineInput
	DiscountCode   string
	PointsToRedeem int
	Ship           bool
	Address        *model.Address
	PaymentMethod  string
	AmountTendered *decimal.Decimal
	POSSessionID   string
	CartID         string
	Notes          string
}

type StatusInput struct {
	ActorID string
	OrderID string
	Status  string
}

// FlashUse is one flash-sale item consumed by an order.
type FlashUse struct {
	ItemID   string
	Quantity int
}

// Placement is everything the order transaction writes.
type Placement struct {
	Order     *model.Order
	FlashUses []FlashUse
	CartID    string
	ActorID   string
}
