package discount

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/discount/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	CreateCode(ctx context.Context, input *dto.CodeInput) (*model.DiscountCode, error)
	GetCode(ctx context.Context, id string) (*model.DiscountCode, error)
	ListCodes(ctx context.Context, filters *dto.CodeFilters) ([]model.DiscountCode, int, error)
	UpdateCode(ctx context.Context, input *dto.CodeInput) (*model.DiscountCode, error)
	DeleteCode(ctx context.Context, actorID, id string) error

	// Validate resolves a code against a merchandise subtotal.
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*dto.Quote, error)
}
