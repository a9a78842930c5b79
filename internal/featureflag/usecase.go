package featureflag

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/featureflag/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

// Flags gating parts of the API.
const (
	LoyaltyProgram = "loyalty_program"
	FlashSales     = "flash_sales"
	POS            = "pos"
)

// Checker answers whether a flag is on. Unknown flags are off.
type Checker interface {
	IsEnabled(ctx context.Context, key string) bool
}

type UseCase interface {
	Checker
	List(ctx context.Context) ([]model.FeatureFlag, error)
	Get(ctx context.Context, key string) (*model.FeatureFlag, error)
	Upsert(ctx context.Context, input *dto.FlagInput) (*model.FeatureFlag, error)
	Toggle(ctx context.Context, actorID, key string) (*model.FeatureFlag, error)
}
