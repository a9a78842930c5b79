package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/featureflag"
	"github.com/fekuna/omnipos-commerce/internal/featureflag/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/cache"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const flagCacheTTL = 60 * time.Second

var (
	keyPattern      = regexp.MustCompile(`^[a-z][a-z0-9_]{1,62}$`)
	errFlagNotFound = apperror.NotFound("FeatureFlagNotFound", "feature flag not found")
)

func cacheKey(key string) string { return "flag:" + key }

type flagUseCase struct {
	repo     featureflag.Repository
	cache    *cache.RedisClient
	activity activitylog.Recorder
	logger   logger.ZapLogger
	now      func() time.Time
}

// NewFeatureFlagUseCase builds the flag service. cache may be nil.
func NewFeatureFlagUseCase(repo featureflag.Repository, cache *cache.RedisClient, activity activitylog.Recorder, log logger.ZapLogger) featureflag.UseCase {
	return &flagUseCase{
		repo:     repo,
		cache:    cache,
		activity: activity,
		logger:   log,
		now:      time.Now,
	}
}

// IsEnabled never fails: lookup errors read as disabled.
func (uc *flagUseCase) IsEnabled(ctx context.Context, key string) bool {
	var enabled bool
	hit, err := uc.cache.GetJSON(ctx, cacheKey(key), &enabled)
	if err != nil {
		uc.logger.Warn("feature flag cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return enabled
	}

	flag, err := uc.repo.FindByKey(ctx, key)
	if err != nil {
		uc.logger.Error("feature flag lookup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	enabled = flag != nil && flag.Enabled
	if err := uc.cache.SetJSON(ctx, cacheKey(key), enabled, flagCacheTTL); err != nil {
		uc.logger.Warn("feature flag cache write failed", zap.String("key", key), zap.Error(err))
	}
	return enabled
}

func (uc *flagUseCase) List(ctx context.Context) ([]model.FeatureFlag, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *flagUseCase) Get(ctx context.Context, key string) (*model.FeatureFlag, error) {
	flag, err := uc.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if flag == nil {
		return nil, errFlagNotFound
	}
	return flag, nil
}

func (uc *flagUseCase) Upsert(ctx context.Context, input *dto.FlagInput) (*model.FeatureFlag, error) {
	key := strings.TrimSpace(input.Key)
	if !keyPattern.MatchString(key) {
		return nil, apperror.Invalid("FeatureFlagKeyInvalid", "flag keys are lowercase letters, digits and underscores")
	}

	flag := &model.FeatureFlag{
		BaseModel:   model.NewBase(uuid.New().String(), uc.now()),
		Key:         key,
		Description: strings.TrimSpace(input.Description),
		Enabled:     input.Enabled,
		IsPremium:   input.IsPremium,
	}
	if err := uc.repo.Upsert(ctx, flag); err != nil {
		return nil, err
	}
	uc.changed(ctx, input.ActorID, "feature_flag.upserted", flag)
	return flag, nil
}

func (uc *flagUseCase) Toggle(ctx context.Context, actorID, key string) (*model.FeatureFlag, error) {
	flag, err := uc.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	flag.Enabled = !flag.Enabled
	flag.UpdatedAt = uc.now()
	if err := uc.repo.SetEnabled(ctx, key, flag.Enabled); err != nil {
		return nil, err
	}
	uc.changed(ctx, actorID, "feature_flag.toggled", flag)
	return flag, nil
}

func (uc *flagUseCase) changed(ctx context.Context, actorID, action string, flag *model.FeatureFlag) {
	if err := uc.cache.Delete(ctx, cacheKey(flag.Key)); err != nil {
		uc.logger.Warn("feature flag cache invalidation failed", zap.String("key", flag.Key), zap.Error(err))
	}
	uc.logger.Info("feature flag changed", zap.String("key", flag.Key), zap.Bool("enabled", flag.Enabled))
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     action,
		EntityType: "feature_flag",
		EntityID:   flag.ID,
		Metadata:   map[string]interface{}{"key": flag.Key, "enabled": flag.Enabled},
	})
}
