package user

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/user/dto"
)

type Repository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error)
	Update(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id, hash string) error

	ListAddresses(ctx context.Context, userID string) ([]model.Address, error)
	FindAddress(ctx context.Context, userID, id string) (*model.Address, error)
	CountAddresses(ctx context.Context, userID string) (int, error)
	// CreateAddress clears the user's other defaults in the same transaction
	// when the new address is the default.
	CreateAddress(ctx context.Context, a *model.Address) error
	UpdateAddress(ctx context.Context, a *model.Address) error
	// DeleteAddress promotes the newest remaining address when the default is removed.
	DeleteAddress(ctx context.Context, userID, id string) error
	SetDefaultAddress(ctx context.Context, userID, id string) error
}
