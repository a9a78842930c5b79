package order

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/order/dto"
)

// ErrStatusChanged means another request moved the order first.
var ErrStatusChanged = errors.New("order status changed concurrently")

type Repository interface {
	// Place writes the order and every side effect of the sale in one transaction.
	Place(ctx context.Context, p *dto.Placement) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	// Transition moves an order from one status to another, restocking its
	// items when restock is set.
	Transition(ctx context.Context, o *model.Order, from string, restock bool, actorID string) error
	SalesSummary(ctx context.Context, from, to time.Time) (*model.SalesSummary, error)

	FindSellable(ctx context.Context, variantIDs []string) ([]model.SellableVariant, error)
	FindAddress(ctx context.Context, userID, addressID string) (*model.Address, error)
	FindCustomerEmail(ctx context.Context, userID string) (string, error)
}
