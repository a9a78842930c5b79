package review

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/review/dto"
)

type Repository interface {
	// FindProductID resolves an active product by id or slug; "" when missing.
	FindProductID(ctx context.Context, idOrSlug string) (string, error)
	HasDeliveredPurchase(ctx context.Context, userID, productID string) (bool, error)
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id string) (*model.Review, error)
	FindAll(ctx context.Context, filters *dto.ReviewFilters) ([]model.Review, int, error)
	// SetStatus and Delete refresh the product's rating in the same transaction.
	SetStatus(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, review *model.Review) error
}
