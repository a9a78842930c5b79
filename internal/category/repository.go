package category

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/category/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	FindAllActive(ctx context.Context) ([]model.Category, error)
	IsSlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	// AncestorIDs walks parent links upward from id, inclusive.
	AncestorIDs(ctx context.Context, id string) ([]string, error)
	CountChildren(ctx context.Context, id string) (int, error)
	CountProducts(ctx context.Context, id string) (int, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
}
