package cart

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/model"
)

type Repository interface {
	FindByUser(ctx context.Context, userID string) (*model.Cart, error)
	FindBySession(ctx context.Context, sessionID string) (*model.Cart, error)
	Create(ctx context.Context, cart *model.Cart) error
	// Touch records activity and moves ABANDONED carts to RECOVERED and CONVERTED carts back to ACTIVE.
	Touch(ctx context.Context, cart *model.Cart) error

	ListItems(ctx context.Context, cartID string) ([]model.CartItem, error)
	FindItem(ctx context.Context, cartID, itemID string) (*model.CartItem, error)
	// SetItemQuantity inserts the line or overwrites its quantity.
	SetItemQuantity(ctx context.Context, item *model.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID string) error
	ClearItems(ctx context.Context, cartID string) error

	FindSellable(ctx context.Context, variantIDs []string) ([]model.SellableVariant, error)

	// Merge writes the merged lines into the user cart and deletes the guest cart in one transaction.
	Merge(ctx context.Context, guestCartID string, target *model.Cart, lines []model.CartItem) error

	MarkAbandoned(ctx context.Context, idleSince time.Time) ([]model.AbandonedCart, error)
	ListAbandoned(ctx context.Context, page, pageSize int) ([]model.AbandonedCart, int, error)
}
