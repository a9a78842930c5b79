package seo

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
)

type Repository interface {
	// EntityExists reports whether the product, category or page exists.
	EntityExists(ctx context.Context, entityType, entityID string) (bool, error)
	Upsert(ctx context.Context, meta *model.SEOMetadata) error
	Find(ctx context.Context, entityType, entityID string) (*model.SEOMetadata, error)
	Delete(ctx context.Context, entityType, entityID string) (bool, error)
	// SitemapEntries lists active products and categories plus published
	// pages, skipping anything marked no_index.
	SitemapEntries(ctx context.Context) ([]model.SitemapEntry, error)
}
