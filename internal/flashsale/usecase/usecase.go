package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/flashsale"
	"github.com/fekuna/omnipos-commerce/internal/flashsale/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errSaleNotFound = apperror.NotFound("FlashSaleNotFound", "flash sale not found")

type flashSaleUseCase struct {
	repo     flashsale.Repository
	activity activitylog.Recorder
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewFlashSaleUseCase(repo flashsale.Repository, activity activitylog.Recorder, log logger.ZapLogger) flashsale.UseCase {
	return &flashSaleUseCase{
		repo:     repo,
		activity: activity,
		logger:   log,
		now:      time.Now,
	}
}

func (uc *flashSaleUseCase) CreateSale(ctx context.Context, input *dto.SaleInput) (*model.FlashSale, error) {
	now := uc.now()
	sale := &model.FlashSale{
		BaseModel: model.NewBase(uuid.New().String(), now),
		Status:    model.FlashSaleScheduled,
	}
	if err := uc.fill(ctx, sale, input); err != nil {
		return nil, err
	}
	if !sale.EndsAt.After(now) {
		return nil, apperror.Invalid("FlashSaleInPast", "flash sale must end in the future")
	}

	if err := uc.repo.Create(ctx, sale); err != nil {
		return nil, err
	}
	uc.record(ctx, input.ActorID, "flash_sale.created", sale.ID)
	return sale, nil
}

// fill validates input and copies it onto sale, replacing its items.
func (uc *flashSaleUseCase) fill(ctx context.Context, sale *model.FlashSale, input *dto.SaleInput) error {
	if !input.StartsAt.Before(input.EndsAt) {
		return apperror.Invalid("DateRangeInvalid", "start must be before end")
	}
	if len(input.Items) == 0 {
		return apperror.Invalid("FlashSaleEmpty", "a flash sale needs at least one product")
	}

	ids := make([]string, 0, len(input.Items))
	seen := map[string]bool{}
	for _, it := range input.Items {
		if seen[it.ProductID] {
			return apperror.Invalid("FlashSaleDuplicateProduct", "a product may appear only once per sale")
		}
		seen[it.ProductID] = true
		ids = append(ids, it.ProductID)
	}

	basePrices, err := uc.repo.BasePrices(ctx, ids)
	if err != nil {
		return err
	}

	items := make([]model.FlashSaleItem, 0, len(input.Items))
	for _, it := range input.Items {
		base, ok := basePrices[it.ProductID]
		if !ok {
			return apperror.Invalid("ProductNotFound", "product not found")
		}
		if it.SalePrice.IsNegative() || !it.SalePrice.LessThan(base) {
			return apperror.Invalid("SalePriceNotLower", "sale price must be below the base price of {{.BasePrice}}").
				WithData("BasePrice", base.StringFixed(2))
		}
		if it.QuantityLimit != nil && *it.QuantityLimit < 1 {
			return apperror.Invalid("QuantityLimitInvalid", "quantity limit must be at least 1")
		}
		items = append(items, model.FlashSaleItem{
			ID:            uuid.New().String(),
			FlashSaleID:   sale.ID,
			ProductID:     it.ProductID,
			SalePrice:     it.SalePrice.Round(2),
			QuantityLimit: it.QuantityLimit,
			BasePrice:     base,
		})
	}

	sale.Name = strings.TrimSpace(input.Name)
	sale.Description = strings.TrimSpace(input.Description)
	sale.StartsAt = input.StartsAt
	sale.EndsAt = input.EndsAt
	sale.Items = items
	return nil
}

func (uc *flashSaleUseCase) GetSale(ctx context.Context, id string) (*model.FlashSale, error) {
	sale, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, errSaleNotFound
	}
	return sale, nil
}

func (uc *flashSaleUseCase) ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.FlashSale, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *flashSaleUseCase) UpdateSale(ctx context.Context, input *dto.SaleInput) (*model.FlashSale, error) {
	sale, err := uc.GetSale(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if sale.Status != model.FlashSaleScheduled {
		return nil, notScheduled(sale.Status)
	}
	if err := uc.fill(ctx, sale, input); err != nil {
		return nil, err
	}
	sale.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, sale); err != nil {
		return nil, err
	}
	uc.record(ctx, input.ActorID, "flash_sale.updated", sale.ID)
	return sale, nil
}

func notScheduled(status string) *apperror.Error {
	return apperror.Conflict("FlashSaleNotEditable", "only scheduled flash sales can be changed (status {{.Status}})").
		WithData("Status", status)
}

// DeleteSale refuses running sales; cancel them first.
func (uc *flashSaleUseCase) DeleteSale(ctx context.Context, actorID, id string) error {
	sale, err := uc.GetSale(ctx, id)
	if err != nil {
		return err
	}
	if sale.Status == model.FlashSaleActive {
		return notScheduled(sale.Status)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.record(ctx, actorID, "flash_sale.deleted", id)
	return nil
}

func (uc *flashSaleUseCase) CancelSale(ctx context.Context, actorID, id string) (*model.FlashSale, error) {
	sale, err := uc.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status != model.FlashSaleScheduled && sale.Status != model.FlashSaleActive {
		return nil, apperror.Invalid("FlashSaleNotCancellable", "flash sale in status {{.Status}} cannot be cancelled").
			WithData("Status", sale.Status)
	}
	if err := uc.repo.SetStatus(ctx, id, model.FlashSaleCancelled); err != nil {
		return nil, err
	}
	sale.Status = model.FlashSaleCancelled
	uc.record(ctx, actorID, "flash_sale.cancelled", id)
	return sale, nil
}

func (uc *flashSaleUseCase) ListActive(ctx context.Context) ([]model.FlashSale, error) {
	return uc.repo.FindRunning(ctx, uc.now())
}

func (uc *flashSaleUseCase) ActiveItems(ctx context.Context, productIDs []string) (map[string]model.FlashSaleItem, error) {
	items, err := uc.repo.FindRunningItems(ctx, productIDs, uc.now())
	if err != nil {
		return nil, err
	}
	// rows come cheapest first; keep the first per product
	best := make(map[string]model.FlashSaleItem, len(items))
	for _, it := range items {
		if _, ok := best[it.ProductID]; !ok {
			best[it.ProductID] = it
		}
	}
	return best, nil
}

func (uc *flashSaleUseCase) ActivePrices(ctx context.Context, productIDs []string) (map[string]decimal.Decimal, error) {
	items, err := uc.ActiveItems(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]decimal.Decimal, len(items))
	for id, it := range items {
		prices[id] = it.SalePrice
	}
	return prices, nil
}

func (uc *flashSaleUseCase) RunLifecycle(ctx context.Context, now time.Time) (int, int, error) {
	ended, err := uc.repo.EndDue(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	started, err := uc.repo.StartDue(ctx, now)
	if err != nil {
		return 0, ended, err
	}
	if started > 0 || ended > 0 {
		uc.logger.Info("flash sale lifecycle", zap.Int("started", started), zap.Int("ended", ended))
	}
	return started, ended, nil
}

func (uc *flashSaleUseCase) record(ctx context.Context, actorID, action, id string) {
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     action,
		EntityType: "flash_sale",
		EntityID:   id,
	})
}
