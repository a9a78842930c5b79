package user

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/user/dto"
)

type UseCase interface {
	Register(ctx context.Context, input *dto.RegisterInput) (*dto.AuthResult, error)
	Login(ctx context.Context, input *dto.LoginInput) (*dto.AuthResult, error)
	GetMe(ctx context.Context, userID string) (*model.User, error)
	UpdateMe(ctx context.Context, input *dto.UpdateProfileInput) (*model.User, error)
	ChangePassword(ctx context.Context, input *dto.ChangePasswordInput) error

	ListAddresses(ctx context.Context, userID string) ([]model.Address, error)
	CreateAddress(ctx context.Context, input *dto.AddressInput) (*model.Address, error)
	UpdateAddress(ctx context.Context, input *dto.AddressInput) (*model.Address, error)
	DeleteAddress(ctx context.Context, userID, id string) error
	SetDefaultAddress(ctx context.Context, userID, id string) (*model.Address, error)

	ListUsers(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error)
	UpdateRole(ctx context.Context, input *dto.UpdateRoleInput) (*model.User, error)
	SetActive(ctx context.Context, input *dto.SetActiveInput) (*model.User, error)
}

// LoyaltyEnroller opens a loyalty account for a new customer.
type LoyaltyEnroller interface {
	EnsureAccount(ctx context.Context, userID string) (*model.LoyaltyAccount, error)
}

// CartMerger folds a guest cart into the user's cart after login.
type CartMerger interface {
	MergeGuestCart(ctx context.Context, sessionID, userID string) error
}
