package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-commerce/internal/inventory"
	"github.com/fekuna/omnipos-commerce/internal/inventory/dto"
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

func (m *mockRepo) FindVariant(ctx context.Context, id string) (*model.ProductVariant, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.ProductVariant)
	return v, args.Error(1)
}

func (m *mockRepo) AdjustStock(ctx context.Context, mv *model.InventoryMovement) error {
	return m.Called(ctx, mv).Error(0)
}

func (m *mockRepo) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.InventoryMovement), args.Int(1), args.Error(2)
}

func (m *mockRepo) ListLowStock(ctx context.Context, threshold, page, pageSize int) ([]model.LowStockItem, int, error) {
	args := m.Called(ctx, threshold, page, pageSize)
	return args.Get(0).([]model.LowStockItem), args.Int(1), args.Error(2)
}

var variant = &model.ProductVariant{BaseModel: model.BaseModel{ID: "v1"}, ProductID: "p1", SKU: "TEE-M", Stock: 4}

func TestAdjustStockWithoutRedis(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindVariant", mock.Anything, "v1").Return(variant, nil)
	repo.On("AdjustStock", mock.Anything, mock.MatchedBy(func(m *model.InventoryMovement) bool {
		return m.QuantityChange == 6 && m.MovementType == model.MovementAdjustment && *m.CreatedBy == "staff-1"
	})).Run(func(args mock.Arguments) {
		mv := args.Get(1).(*model.InventoryMovement)
		mv.QuantityBefore, mv.QuantityAfter = 4, 10
	}).Return(nil)

	uc := NewInventoryUseCase(repo, nil, 5, logger.NewNop())
	mv, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{VariantID: "v1", QuantityChange: 6, Reason: "delivery", UserID: "staff-1"})

	require.NoError(t, err)
	assert.Equal(t, 10, mv.QuantityAfter)
}

func TestAdjustStockNegative(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindVariant", mock.Anything, "v1").Return(variant, nil)
	repo.On("AdjustStock", mock.Anything, mock.Anything).Return(inventory.ErrInsufficientStock)

	uc := NewInventoryUseCase(repo, nil, 5, logger.NewNop())
	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{VariantID: "v1", QuantityChange: -9})

	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))
}

func TestAdjustStockUnknownVariant(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindVariant", mock.Anything, "nope").Return(nil, nil)

	uc := NewInventoryUseCase(repo, nil, 5, logger.NewNop())
	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{VariantID: "nope", QuantityChange: 1})
	assert.True(t, apperror.IsNotFound(err))
}

func TestAdjustStockBusyWhenLocked(t *testing.T) {
	srv := miniredis.RunT(t)
	rc := &cache.RedisClient{Client: redis.NewClient(&redis.Options{Addr: srv.Addr()})}
	require.NoError(t, srv.Set("lock:inventory:v1", "someone-else"))
	srv.SetTTL("lock:inventory:v1", time.Minute)

	repo := new(mockRepo)
	repo.On("FindVariant", mock.Anything, "v1").Return(variant, nil)

	uc := NewInventoryUseCase(repo, rc, 5, logger.NewNop())
	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{VariantID: "v1", QuantityChange: 1})

	assert.Equal(t, apperror.KindBusy, apperror.KindOf(err))
	repo.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything)
}

func TestAdjustStockReleasesLock(t *testing.T) {
	srv := miniredis.RunT(t)
	rc := &cache.RedisClient{Client: redis.NewClient(&redis.Options{Addr: srv.Addr()})}

	repo := new(mockRepo)
	repo.On("FindVariant", mock.Anything, "v1").Return(variant, nil)
	repo.On("AdjustStock", mock.Anything, mock.Anything).Return(nil)

	uc := NewInventoryUseCase(repo, rc, 5, logger.NewNop())
	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{VariantID: "v1", QuantityChange: 1})

	require.NoError(t, err)
	assert.False(t, srv.Exists("lock:inventory:v1"))
}

func TestAdjustStockBusyStopsAfterLastAttempt(t *testing.T) {
	srv := miniredis.RunT(t)
	rc := &cache.RedisClient{Client: redis.NewClient(&redis.Options{Addr: srv.Addr()})}
	require.NoError(t, srv.Set("lock:inventory:v1", "someone-else"))

	repo := new(mockRepo)
	repo.On("FindVariant", mock.Anything, "v1").Return(variant, nil)

	uc := NewInventoryUseCase(repo, rc, 5, logger.NewNop()).(*inventoryUseCase)
	uc.lockBackoff = 300 * time.Millisecond

	start := time.Now()
	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{VariantID: "v1", QuantityChange: 1})
	elapsed := time.Since(start)

	assert.Equal(t, apperror.KindBusy, apperror.KindOf(err))
	// Two waits between three attempts, none after the last.
	assert.Less(t, elapsed, 800*time.Millisecond)
}

func TestAdjustStockLockWaitHonoursContext(t *testing.T) {
	srv := miniredis.RunT(t)
	rc := &cache.RedisClient{Client: redis.NewClient(&redis.Options{Addr: srv.Addr()})}
	require.NoError(t, srv.Set("lock:inventory:v1", "someone-else"))

	repo := new(mockRepo)
	repo.On("FindVariant", mock.Anything, "v1").Return(variant, nil)

	uc := NewInventoryUseCase(repo, rc, 5, logger.NewNop()).(*inventoryUseCase)
	uc.lockBackoff = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := uc.AdjustStock(ctx, &dto.AdjustStockInput{VariantID: "v1", QuantityChange: 1})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	repo.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything)
}

func TestAdjustStockDropsCachedListings(t *testing.T) {
	srv := miniredis.RunT(t)
	rc := &cache.RedisClient{Client: redis.NewClient(&redis.Options{Addr: srv.Addr()})}
	require.NoError(t, srv.Set("products:list:abc", "{}"))
	require.NoError(t, srv.Set("flags:pos", "1"))

	repo := new(mockRepo)
	repo.On("FindVariant", mock.Anything, "v1").Return(variant, nil)
	repo.On("AdjustStock", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		mv := args.Get(1).(*model.InventoryMovement)
		mv.QuantityBefore, mv.QuantityAfter = 4, 0
	}).Return(nil)

	uc := NewInventoryUseCase(repo, rc, 5, logger.NewNop())
	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{VariantID: "v1", QuantityChange: -4})

	require.NoError(t, err)
	assert.False(t, srv.Exists("products:list:abc"))
	assert.True(t, srv.Exists("flags:pos"))
}
