package theme

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/theme/dto"
)

type UseCase interface {
	List(ctx context.Context) ([]model.Theme, error)
	Get(ctx context.Context, id string) (*model.Theme, error)
	Create(ctx context.Context, input *dto.ThemeInput) (*model.Theme, error)
	Update(ctx context.Context, input *dto.ThemeInput) (*model.Theme, error)
	Delete(ctx context.Context, actorID, id string) error
	Activate(ctx context.Context, actorID, id string) (*model.Theme, error)
	GetActive(ctx context.Context) (*model.Theme, error)
}
