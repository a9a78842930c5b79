package flashsale

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/flashsale/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/shopspring/decimal"
)

// ErrSoldOut is returned when a sale item's quantity limit was reached during checkout.
var ErrSoldOut = errors.New("flash sale item sold out")

type Repository interface {
	// Create and Update write the sale and replace its items in one transaction.
	Create(ctx context.Context, sale *model.FlashSale) error
	Update(ctx context.Context, sale *model.FlashSale) error
	FindByID(ctx context.Context, id string) (*model.FlashSale, error)
	FindAll(ctx context.Context, filters *dto.SaleFilters) ([]model.FlashSale, int, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status string) error

	// BasePrices returns base prices of the given products keyed by id.
	BasePrices(ctx context.Context, productIDs []string) (map[string]decimal.Decimal, error)
	FindRunning(ctx context.Context, now time.Time) ([]model.FlashSale, error)
	FindRunningItems(ctx context.Context, productIDs []string, now time.Time) ([]model.FlashSaleItem, error)

	StartDue(ctx context.Context, now time.Time) (int, error)
	EndDue(ctx context.Context, now time.Time) (int, error)
}
