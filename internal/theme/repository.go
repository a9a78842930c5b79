package theme

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/model"
)

type Repository interface {
	FindAll(ctx context.Context) ([]model.Theme, error)
	FindByID(ctx context.Context, id string) (*model.Theme, error)
	FindActive(ctx context.Context) (*model.Theme, error)
	Create(ctx context.Context, t *model.Theme) error
	Update(ctx context.Context, t *model.Theme) error
	Delete(ctx context.Context, id string) error
	// Activate deactivates every other theme in the same transaction.
	Activate(ctx context.Context, id string) error
}
