package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/inventory"
	"github.com/fekuna/omnipos-commerce/internal/inventory/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/product"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/cache"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
	lockTTL      = 5 * time.Second
)

type inventoryUseCase struct {
	repo              inventory.Repository
	cache             *cache.RedisClient
	lowStockThreshold int
	lockBackoff       time.Duration
	logger            logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, cache *cache.RedisClient, lowStockThreshold int, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:              repo,
		cache:             cache,
		lowStockThreshold: lowStockThreshold,
		lockBackoff:       lockBackoff,
		logger:            log,
	}
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, page, pageSize int) ([]model.LowStockItem, int, error) {
	return uc.repo.ListLowStock(ctx, uc.lowStockThreshold, page, pageSize)
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryMovement, error) {
	if input.QuantityChange == 0 {
		return nil, apperror.Invalid("QuantityChangeZero", "quantity change must not be zero")
	}

	variant, err := uc.repo.FindVariant(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, apperror.NotFound("VariantNotFound", "variant not found")
	}

	lockKey := "lock:inventory:" + input.VariantID
	lockValue := uuid.New().String()

	if err := uc.acquire(ctx, lockKey, lockValue); err != nil {
		return nil, err
	}
	defer func() {
		if err := uc.cache.ReleaseLock(context.WithoutCancel(ctx), lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release inventory lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	movement := &model.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      variant.ProductID,
		VariantID:      variant.ID,
		MovementType:   model.MovementAdjustment,
		QuantityChange: input.QuantityChange,
		ReferenceType:  optional(input.ReferenceType),
		ReferenceID:    optional(input.ReferenceID),
		Notes:          input.Reason,
		CreatedBy:      optional(input.UserID),
		CreatedAt:      time.Now(),
	}

	if err := uc.repo.AdjustStock(ctx, movement); err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) {
			return nil, apperror.Invalid("StockNegative", "stock cannot go below zero").
				WithData("Available", variant.Stock)
		}
		return nil, err
	}

	if err := uc.cache.DeleteByPattern(ctx, product.ListCachePattern); err != nil {
		uc.logger.Warn("failed to invalidate product listings", zap.Error(err))
	}
	if movement.QuantityAfter <= uc.lowStockThreshold {
		uc.logger.Info("variant at low stock",
			zap.String("variant_id", variant.ID),
			zap.String("sku", variant.SKU),
			zap.Int("stock", movement.QuantityAfter),
		)
	}
	return movement, nil
}

func (uc *inventoryUseCase) acquire(ctx context.Context, key, value string) error {
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			return nil
		}
		if i == lockAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(uc.lockBackoff):
		}
	}
	return apperror.Busy("StockBusy", "stock is being updated, please try again")
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
