package loyalty

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/loyalty/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

var (
	// ErrInsufficientPoints is returned when a redemption exceeds the balance.
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
	ErrAccountNotFound    = errors.New("loyalty account not found")
)

type Repository interface {
	ListTiers(ctx context.Context) ([]model.LoyaltyTier, error)
	FindTierByID(ctx context.Context, id string) (*model.LoyaltyTier, error)
	CreateTier(ctx context.Context, tier *model.LoyaltyTier) error
	UpdateTier(ctx context.Context, tier *model.LoyaltyTier) error
	DeleteTier(ctx context.Context, id string) error
	// RefreshTiers reassigns every account after the tier table changed.
	RefreshTiers(ctx context.Context) error

	FindAccountByUser(ctx context.Context, userID string) (*model.LoyaltyAccount, error)
	CreateAccount(ctx context.Context, account *model.LoyaltyAccount) error
	ListAccounts(ctx context.Context, filters *dto.AccountFilters) ([]model.LoyaltyAccount, int, error)
	ListTransactions(ctx context.Context, accountID string, page, pageSize int) ([]model.LoyaltyTransaction, int, error)

	// Post records a transaction and applies it to the account balance,
	// lifetime points and tier. It reports false when the (order, type) pair
	// was already posted.
	Post(ctx context.Context, userID string, tx *model.LoyaltyTransaction, lifetimeDelta int) (bool, error)
	// OrderPoints sums posted points per transaction type for an order.
	OrderPoints(ctx context.Context, orderID string) (map[string]int, error)
}
