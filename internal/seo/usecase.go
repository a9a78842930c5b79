package seo

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/seo/dto"
)

type UseCase interface {
	Upsert(ctx context.Context, input *dto.MetadataInput) (*model.SEOMetadata, error)
	Get(ctx context.Context, entityType, entityID string) (*model.SEOMetadata, error)
	Delete(ctx context.Context, actorID, entityType, entityID string) error
	// Sitemap renders the sitemap.xml document for every indexable page.
	Sitemap(ctx context.Context) ([]byte, error)
}
