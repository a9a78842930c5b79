package media

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/media/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

type Repository interface {
	Create(ctx context.Context, asset *model.MediaAsset) error
	FindByID(ctx context.Context, id string) (*model.MediaAsset, error)
	FindAll(ctx context.Context, filters *dto.MediaFilters) ([]model.MediaAsset, int, error)
	Update(ctx context.Context, asset *model.MediaAsset) error
	Delete(ctx context.Context, id string) error
}

// FileStore keeps uploaded bytes under paths relative to its root.
type FileStore interface {
	Save(relPath string, data []byte) error
	Remove(relPath string) error
}
