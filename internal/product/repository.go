package product

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/product/dto"
)

type Repository interface {
	// Create inserts the product with its variants and syncs stock in one transaction.
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	FindAllActive(ctx context.Context, afterID string, limit int) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	SoftDelete(ctx context.Context, id string) error

	IsSlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	IsSKUTaken(ctx context.Context, sku, excludeVariantID string) (bool, error)
	CategoryExists(ctx context.Context, id string) (bool, error)

	ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error)
	FindVariant(ctx context.Context, productID, variantID string) (*model.ProductVariant, error)
	// Variant writes resync products.stock in the same transaction.
	AddVariant(ctx context.Context, v *model.ProductVariant) error
	UpdateVariant(ctx context.Context, v *model.ProductVariant) error
	DeleteVariant(ctx context.Context, productID, variantID string) error
}
