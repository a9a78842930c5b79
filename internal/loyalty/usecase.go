package loyalty

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/loyalty/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/order"
)

type UseCase interface {
	ListTiers(ctx context.Context) ([]model.LoyaltyTier, error)
	CreateTier(ctx context.Context, input *dto.TierInput) (*model.LoyaltyTier, error)
	UpdateTier(ctx context.Context, input *dto.TierInput) (*model.LoyaltyTier, error)
	DeleteTier(ctx context.Context, actorID, id string) error

	EnsureAccount(ctx context.Context, userID string) (*model.LoyaltyAccount, error)
	GetMyAccount(ctx context.Context, userID string) (*model.LoyaltyAccount, error)
	ListMyTransactions(ctx context.Context, userID string, page, pageSize int) ([]model.LoyaltyTransaction, int, error)
	Quote(ctx context.Context, userID string, points int) (*model.PointsQuote, error)

	ListAccounts(ctx context.Context, filters *dto.AccountFilters) ([]model.LoyaltyAccount, int, error)
	AdjustPoints(ctx context.Context, input *dto.AdjustInput) (*model.LoyaltyAccount, error)

	// HandleOrderEvent earns points when an order is paid and reverses them
	// when it is cancelled or refunded. Replays are no-ops.
	HandleOrderEvent(ctx context.Context, event *order.Event) error
}
