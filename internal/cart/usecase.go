package cart

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/cart/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	GetCart(ctx context.Context, owner dto.Owner) (*model.CartView, error)
	AddItem(ctx context.Context, owner dto.Owner, input *dto.AddItemInput) (*model.CartView, error)
	UpdateItem(ctx context.Context, owner dto.Owner, itemID string, quantity int) (*model.CartView, error)
	RemoveItem(ctx context.Context, owner dto.Owner, itemID string) (*model.CartView, error)
	Clear(ctx context.Context, owner dto.Owner) error

	MergeGuestCart(ctx context.Context, sessionID, userID string) error

	// SweepAbandoned marks idle carts abandoned and returns how many changed.
	SweepAbandoned(ctx context.Context) (int, error)
	ListAbandoned(ctx context.Context, page, pageSize int) ([]model.AbandonedCart, int, error)
}

// Pricer reports running flash-sale prices keyed by product id.
type Pricer interface {
	ActivePrices(ctx context.Context, productIDs []string) (map[string]decimal.Decimal, error)
}
