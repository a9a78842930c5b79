package featureflag

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
)

type Repository interface {
	FindAll(ctx context.Context) ([]model.FeatureFlag, error)
	FindByKey(ctx context.Context, key string) (*model.FeatureFlag, error)
	Upsert(ctx context.Context, flag *model.FeatureFlag) error
	SetEnabled(ctx context.Context, key string, enabled bool) error
}
