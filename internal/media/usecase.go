package media

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/media/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

type UseCase interface {
	Upload(ctx context.Context, input *dto.UploadInput) (*model.MediaAsset, error)
	List(ctx context.Context, filters *dto.MediaFilters) ([]model.MediaAsset, int, error)
	Get(ctx context.Context, id string) (*model.MediaAsset, error)
	Update(ctx context.Context, input *dto.UpdateInput) (*model.MediaAsset, error)
	Delete(ctx context.Context, actorID, id string) error
}
