package pos

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/order/dto"
	posdto "github.com/fekuna/omnipos-commerce/internal/pos/dto"
)

type UseCase interface {
	OpenSession(ctx context.Context, input *posdto.OpenInput) (*model.POSSession, error)
	CloseSession(ctx context.Context, input *posdto.CloseInput) (*posdto.SessionReport, error)
	GetCurrentSession(ctx context.Context, staffID string) (*model.POSSession, error)
	GetSession(ctx context.Context, id string) (*model.POSSession, error)
	ListSessions(ctx context.Context, filters *posdto.SessionFilters) ([]model.POSSession, int, error)

	CreateSale(ctx context.Context, input *posdto.SaleInput) (*model.Order, error)
}

// OrderPlacer is the part of the order service a register needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*model.Order, error)
}

// CustomerFinder resolves the member attached to a register sale.
type CustomerFinder interface {
	GetMe(ctx context.Context, userID string) (*model.User, error)
}
