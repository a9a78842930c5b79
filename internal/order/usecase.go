package order

import (
	"context"
	"time"

	cartdto "github.com/fekuna/omnipos-commerce/internal/cart/dto"
	discountdto "github.com/fekuna/omnipos-commerce/internal/discount/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/order/dto"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	// Checkout turns the user's cart into a PENDING web order.
	Checkout(ctx context.Context, input *dto.CheckoutInput) (*model.Order, error)
	// PlaceOrder runs the same pipeline from explicit lines; POS uses it.
	PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*model.Order, error)

	ListMyOrders(ctx context.Context, userID string, filters *dto.OrderFilters) ([]model.Order, int, error)
	GetMyOrder(ctx context.Context, userID, id string) (*model.Order, error)
	CancelMyOrder(ctx context.Context, userID, id string) (*model.Order, error)

	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, input *dto.StatusInput) (*model.Order, error)
	SalesSummary(ctx context.Context, from, to time.Time) (*model.SalesSummary, error)
}

// CartReader loads the priced cart of a signed-in user.
type CartReader interface {
	GetCart(ctx context.Context, owner cartdto.Owner) (*model.CartView, error)
}

// FlashItems reports the running flash-sale item per product.
type FlashItems interface {
	ActiveItems(ctx context.Context, productIDs []string) (map[string]model.FlashSaleItem, error)
}

type DiscountValidator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*discountdto.Quote, error)
}

// LoyaltyReader exposes the account used for tier discounts and redemption.
type LoyaltyReader interface {
	GetMyAccount(ctx context.Context, userID string) (*model.LoyaltyAccount, error)
}
