package product

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/product/dto"
	"github.com/shopspring/decimal"
)

// ListCachePattern matches every cached storefront listing. Writers that
// change what a listing shows must drop these keys.
const ListCachePattern = "products:list:*"

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, actorID, id string) error

	AddVariant(ctx context.Context, input *dto.VariantInput) (*model.ProductVariant, error)
	UpdateVariant(ctx context.Context, input *dto.VariantInput) (*model.ProductVariant, error)
	DeleteVariant(ctx context.Context, actorID, productID, variantID string) error

	// ReindexAll pushes every active product to the search index.
	ReindexAll(ctx context.Context) (int, error)
}

// FlashPricer reports active flash-sale prices keyed by product id.
type FlashPricer interface {
	ActivePrices(ctx context.Context, productIDs []string) (map[string]decimal.Decimal, error)
}
