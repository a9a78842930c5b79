package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/theme"
	"github.com/fekuna/omnipos-commerce/internal/theme/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/cache"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	activeCacheKey = "theme:active"
	activeCacheTTL = 10 * time.Minute
)

type themeUseCase struct {
	repo     theme.Repository
	cache    *cache.RedisClient
	activity activitylog.Recorder
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewThemeUseCase(repo theme.Repository, cache *cache.RedisClient, activity activitylog.Recorder, log logger.ZapLogger) theme.UseCase {
	return &themeUseCase{
		repo:     repo,
		cache:    cache,
		activity: activity,
		logger:   log,
		now:      time.Now,
	}
}

func (uc *themeUseCase) List(ctx context.Context) ([]model.Theme, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *themeUseCase) Get(ctx context.Context, id string) (*model.Theme, error) {
	t, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperror.NotFound("ThemeNotFound", "theme not found")
	}
	return t, nil
}

func (uc *themeUseCase) apply(t *model.Theme, input *dto.ThemeInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperror.Invalid("ThemeNameRequired", "theme name is required")
	}
	settings := types.JSONText(input.Settings)
	if len(strings.TrimSpace(string(settings))) == 0 {
		settings = types.JSONText(`{}`)
	}
	if !gjson.ValidBytes(settings) || !gjson.ParseBytes(settings).IsObject() {
		return apperror.Invalid("ThemeSettingsInvalid", "theme settings must be a JSON object")
	}
	t.Name = name
	t.Description = strings.TrimSpace(input.Description)
	t.Settings = settings
	t.UpdatedAt = uc.now()
	return nil
}

func nameConflict(err error) error {
	if postgres.IsUniqueViolation(err) {
		return apperror.Conflict("ThemeNameTaken", "a theme with this name already exists").Wrap(err)
	}
	return err
}

func (uc *themeUseCase) Create(ctx context.Context, input *dto.ThemeInput) (*model.Theme, error) {
	t := &model.Theme{BaseModel: model.NewBase(uuid.New().String(), uc.now())}
	if err := uc.apply(t, input); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, nameConflict(err)
	}
	uc.record(ctx, input.ActorID, "theme.created", t.ID)
	return t, nil
}

func (uc *themeUseCase) Update(ctx context.Context, input *dto.ThemeInput) (*model.Theme, error) {
	t, err := uc.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.apply(t, input); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, t); err != nil {
		return nil, nameConflict(err)
	}
	if t.IsActive {
		uc.invalidate(ctx)
	}
	uc.record(ctx, input.ActorID, "theme.updated", t.ID)
	return t, nil
}

func (uc *themeUseCase) Delete(ctx context.Context, actorID, id string) error {
	t, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.IsActive {
		return apperror.Conflict("ThemeActive", "the active theme cannot be deleted")
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.record(ctx, actorID, "theme.deleted", id)
	return nil
}

func (uc *themeUseCase) Activate(ctx context.Context, actorID, id string) (*model.Theme, error) {
	t, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		if err := uc.repo.Activate(ctx, id); err != nil {
			return nil, err
		}
		t.IsActive = true
		uc.invalidate(ctx)
		uc.logger.Info("theme activated", zap.String("theme_id", id), zap.String("name", t.Name))
	}
	uc.record(ctx, actorID, "theme.activated", id)
	return t, nil
}

func (uc *themeUseCase) GetActive(ctx context.Context) (*model.Theme, error) {
	var cached model.Theme
	if ok, err := uc.cache.GetJSON(ctx, activeCacheKey, &cached); err == nil && ok {
		return &cached, nil
	}

	t, err := uc.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperror.NotFound("ThemeNotActive", "no theme is active")
	}
	if err := uc.cache.SetJSON(ctx, activeCacheKey, t, activeCacheTTL); err != nil {
		uc.logger.Warn("failed to cache active theme", zap.Error(err))
	}
	return t, nil
}

func (uc *themeUseCase) invalidate(ctx context.Context) {
	if err := uc.cache.Delete(ctx, activeCacheKey); err != nil {
		uc.logger.Warn("failed to invalidate active theme cache", zap.Error(err))
	}
}

func (uc *themeUseCase) record(ctx context.Context, actorID, action, id string) {
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     action,
		EntityType: "theme",
		EntityID:   id,
	})
}
