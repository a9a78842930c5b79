package discount

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/discount/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

// ErrUsageExhausted is returned when a code reached max_uses between validation and checkout.
var ErrUsageExhausted = errors.New("discount code usage exhausted")

type Repository interface {
	Create(ctx context.Context, d *model.DiscountCode) error
	FindByID(ctx context.Context, id string) (*model.DiscountCode, error)
	FindByCode(ctx context.Context, code string) (*model.DiscountCode, error)
	FindAll(ctx context.Context, filters *dto.CodeFilters) ([]model.DiscountCode, int, error)
	Update(ctx context.Context, d *model.DiscountCode) error
	Delete(ctx context.Context, id string) error
}
