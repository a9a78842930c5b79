package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	"github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeTimeout = 2 * time.Second

type activityLogUseCase struct {
	repo   activitylog.Repository
	logger logger.ZapLogger
}

// NewActivityLogUseCase accepts a nil repo; entries then only reach the log.
func NewActivityLogUseCase(repo activitylog.Repository, log logger.ZapLogger) activitylog.UseCase {
	return &activityLogUseCase{repo: repo, logger: log}
}

func (uc *activityLogUseCase) Record(ctx context.Context, in *dto.RecordInput) {
	entry := &model.ActivityLog{
		ID:         uuid.New().String(),
		ActorID:    in.ActorID,
		ActorRole:  in.ActorRole,
		Action:     in.Action,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		Metadata:   in.Metadata,
		CreatedAt:  time.Now().UTC(),
	}

	fields := []zap.Field{
		zap.String("actor_id", entry.ActorID),
		zap.String("action", entry.Action),
		zap.String("entity_type", entry.EntityType),
		zap.String("entity_id", entry.EntityID),
	}

	if uc.repo == nil {
		uc.logger.Info("activity", fields...)
		return
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := uc.repo.Insert(wctx, entry); err != nil {
		uc.logger.Warn("failed to store activity log", append(fields, zap.Error(err))...)
	}
}

func (uc *activityLogUseCase) ListLogs(ctx context.Context, filters *dto.LogFilters) ([]model.ActivityLog, int, error) {
	if uc.repo == nil {
		return nil, 0, apperror.Busy("ActivityLogUnavailable", "activity log storage is not configured")
	}
	return uc.repo.FindAll(ctx, filters)
}
