package inventory

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/inventory/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

// ErrInsufficientStock is returned when a change would take a variant below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

type Repository interface {
	FindVariant(ctx context.Context, id string) (*model.ProductVariant, error)
	// AdjustStock applies m.QuantityChange, fills in the before/after counts,
	// logs the movement and resyncs product stock in one transaction.
	AdjustStock(ctx context.Context, m *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
	ListLowStock(ctx context.Context, threshold, page, pageSize int) ([]model.LowStockItem, int, error)
}
