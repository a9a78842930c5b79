package activitylog

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

type Repository interface {
	Insert(ctx context.Context, entry *model.ActivityLog) error
	FindAll(ctx context.Context, filters *dto.LogFilters) ([]model.ActivityLog, int, error)
}
