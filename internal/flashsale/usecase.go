package flashsale

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/flashsale/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	CreateSale(ctx context.Context, input *dto.SaleInput) (*model.FlashSale, error)
	GetSale(ctx context.Context, id string) (*model.FlashSale, error)
	ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.FlashSale, int, error)
	UpdateSale(ctx context.Context, input *dto.SaleInput) (*model.FlashSale, error)
	DeleteSale(ctx context.Context, actorID, id string) error
	CancelSale(ctx context.Context, actorID, id string) (*model.FlashSale, error)

	ListActive(ctx context.Context) ([]model.FlashSale, error)
	// ActiveItems returns the cheapest running sale item per product that still has units left.
	ActiveItems(ctx context.Context, productIDs []string) (map[string]model.FlashSaleItem, error)
	ActivePrices(ctx context.Context, productIDs []string) (map[string]decimal.Decimal, error)

	// RunLifecycle starts due sales and ends expired ones.
	RunLifecycle(ctx context.Context, now time.Time) (started, ended int, err error)
}
