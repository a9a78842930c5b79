package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	"github.com/fekuna/omnipos-commerce/internal/featureflag/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/cache"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) FindAll(ctx context.Context) ([]model.FeatureFlag, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.FeatureFlag), args.Error(1)
}

func (m *mockRepo) FindByKey(ctx context.Context, key string) (*model.FeatureFlag, error) {
	args := m.Called(ctx, key)
	f, _ := args.Get(0).(*model.FeatureFlag)
	return f, args.Error(1)
}

func (m *mockRepo) Upsert(ctx context.Context, f *model.FeatureFlag) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockRepo) SetEnabled(ctx context.Context, key string, enabled bool) error {
	return m.Called(ctx, key, enabled).Error(0)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *cache.RedisClient) {
	srv := miniredis.RunT(t)
	return srv, &cache.RedisClient{Client: redis.NewClient(&redis.Options{Addr: srv.Addr()})}
}

func TestIsEnabledCachesForAMinute(t *testing.T) {
	srv, rc := newRedis(t)
	repo := new(mockRepo)
	uc := NewFeatureFlagUseCase(repo, rc, activitylog.NopRecorder{}, logger.NewNop())

	repo.On("FindByKey", mock.Anything, "pos").Return(&model.FeatureFlag{Key: "pos", Enabled: true}, nil).Once()

	assert.True(t, uc.IsEnabled(context.Background(), "pos"))
	assert.True(t, uc.IsEnabled(context.Background(), "pos"))
	repo.AssertNumberOfCalls(t, "FindByKey", 1)

	ttl := srv.TTL("flag:pos")
	assert.Equal(t, 60*time.Second, ttl)

	srv.FastForward(61 * time.Second)
	repo.On("FindByKey", mock.Anything, "pos").Return(&model.FeatureFlag{Key: "pos", Enabled: false}, nil).Once()
	assert.False(t, uc.IsEnabled(context.Background(), "pos"))
}

func TestUnknownFlagIsDisabled(t *testing.T) {
	repo := new(mockRepo)
	uc := NewFeatureFlagUseCase(repo, nil, activitylog.NopRecorder{}, logger.NewNop())
	repo.On("FindByKey", mock.Anything, "dark_mode").Return(nil, nil)

	assert.False(t, uc.IsEnabled(context.Background(), "dark_mode"))
}

func TestLookupFailureIsDisabled(t *testing.T) {
	repo := new(mockRepo)
	uc := NewFeatureFlagUseCase(repo, nil, activitylog.NopRecorder{}, logger.NewNop())
	repo.On("FindByKey", mock.Anything, "pos").Return(nil, errors.New("connection refused"))

	assert.False(t, uc.IsEnabled(context.Background(), "pos"))
}

func TestToggleFlipsAndInvalidates(t *testing.T) {
	srv, rc := newRedis(t)
	repo := new(mockRepo)
	uc := NewFeatureFlagUseCase(repo, rc, activitylog.NopRecorder{}, logger.NewNop())
	require.NoError(t, srv.Set("flag:pos", "true"))

	repo.On("FindByKey", mock.Anything, "pos").Return(&model.FeatureFlag{Key: "pos", Enabled: true}, nil)
	repo.On("SetEnabled", mock.Anything, "pos", false).Return(nil)

	flag, err := uc.Toggle(context.Background(), "admin", "pos")
	require.NoError(t, err)
	assert.False(t, flag.Enabled)
	assert.False(t, srv.Exists("flag:pos"))
}

func TestToggleUnknown(t *testing.T) {
	repo := new(mockRepo)
	uc := NewFeatureFlagUseCase(repo, nil, activitylog.NopRecorder{}, logger.NewNop())
	repo.On("FindByKey", mock.Anything, "nope").Return(nil, nil)

	_, err := uc.Toggle(context.Background(), "admin", "nope")
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpsertValidatesKey(t *testing.T) {
	repo := new(mockRepo)
	uc := NewFeatureFlagUseCase(repo, nil, activitylog.NopRecorder{}, logger.NewNop())

	for _, key := range []string{"", "Flash Sales", "9lives", "x"} {
		_, err := uc.Upsert(context.Background(), &dto.FlagInput{Key: key})
		assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err), key)
	}
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestUpsertWrites(t *testing.T) {
	repo := new(mockRepo)
	uc := NewFeatureFlagUseCase(repo, nil, activitylog.NopRecorder{}, logger.NewNop())
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(f *model.FeatureFlag) bool {
		return f.Key == "flash_sales" && f.Enabled && f.IsPremium && f.Description == "Timed sales"
	})).Return(nil)

	_, err := uc.Upsert(context.Background(), &dto.FlagInput{
		Key: " flash_sales ", Description: "Timed sales ", Enabled: true, IsPremium: true,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
