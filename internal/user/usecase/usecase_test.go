package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/user"
	"github.com/fekuna/omnipos-commerce/internal/user/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, u *model.User) error { return m.Called(ctx, u).Error(0) }

func (m *mockRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockRepo) FindAll(ctx context.Context, f *dto.UserFilters) ([]model.User, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.User), args.Int(1), args.Error(2)
}

func (m *mockRepo) Update(ctx context.Context, u *model.User) error { return m.Called(ctx, u).Error(0) }

func (m *mockRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *mockRepo) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Address), args.Error(1)
}

func (m *mockRepo) FindAddress(ctx context.Context, userID, id string) (*model.Address, error) {
	args := m.Called(ctx, userID, id)
	a, _ := args.Get(0).(*model.Address)
	return a, args.Error(1)
}

func (m *mockRepo) CountAddresses(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) CreateAddress(ctx context.Context, a *model.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockRepo) UpdateAddress(ctx context.Context, a *model.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockRepo) DeleteAddress(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockRepo) SetDefaultAddress(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type mockEnroller struct{ mock.Mock }

func (m *mockEnroller) EnsureAccount(ctx context.Context, userID string) (*model.LoyaltyAccount, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).(*model.LoyaltyAccount)
	return a, args.Error(1)
}

type mockMerger struct{ mock.Mock }

func (m *mockMerger) MergeGuestCart(ctx context.Context, sessionID, userID string) error {
	return m.Called(ctx, sessionID, userID).Error(0)
}

func newUseCase(repo *mockRepo, enroller *mockEnroller, merger *mockMerger) *userUseCase {
	var (
		loyalty user.LoyaltyEnroller
		carts   user.CartMerger
	)
	if enroller != nil {
		loyalty = enroller
	}
	if merger != nil {
		carts = merger
	}
	uc := NewUserUseCase(repo, auth.NewTokenManager("secret", time.Hour), loyalty, carts,
		activitylog.NopRecorder{}, logger.NewNop())
	return uc.(*userUseCase)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister(t *testing.T) {
	repo, enroller, merger := new(mockRepo), new(mockEnroller), new(mockMerger)
	repo.On("FindByEmail", mock.Anything, "ann@example.com").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "ann@example.com" && u.Role == auth.RoleCustomer && u.PasswordHash != "password123"
	})).Return(nil)
	enroller.On("EnsureAccount", mock.Anything, mock.Anything).Return(&model.LoyaltyAccount{}, nil)

	res, err := newUseCase(repo, enroller, merger).Register(context.Background(), &dto.RegisterInput{
		Email: "  Ann@Example.com ", Password: "password123", Name: "Ann",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ann@example.com", res.User.Email)
	enroller.AssertExpectations(t)
	merger.AssertNotCalled(t, "MergeGuestCart", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindByEmail", mock.Anything, "ann@example.com").Return(&model.User{}, nil)

	_, err := newUseCase(repo, nil, nil).Register(context.Background(), &dto.RegisterInput{
		Email: "ann@example.com", Password: "password123", Name: "Ann",
	})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestRegisterShortPassword(t *testing.T) {
	_, err := newUseCase(new(mockRepo), nil, nil).Register(context.Background(), &dto.RegisterInput{
		Email: "ann@example.com", Password: "short", Name: "Ann",
	})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))
}

func TestLogin(t *testing.T) {
	u := &model.User{BaseModel: model.BaseModel{ID: "u1"}, Email: "ann@example.com", PasswordHash: hashed(t, "password123"), Role: auth.RoleCustomer, IsActive: true}

	t.Run("success merges guest cart", func(t *testing.T) {
		repo, merger := new(mockRepo), new(mockMerger)
		repo.On("FindByEmail", mock.Anything, "ann@example.com").Return(u, nil)
		merger.On("MergeGuestCart", mock.Anything, "sess-1", "u1").Return(errors.New("ignored"))

		res, err := newUseCase(repo, nil, merger).Login(context.Background(), &dto.LoginInput{
			Email: "ann@example.com", Password: "password123", SessionID: "sess-1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		merger.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("FindByEmail", mock.Anything, "ann@example.com").Return(u, nil)
		_, err := newUseCase(repo, nil, nil).Login(context.Background(), &dto.LoginInput{Email: "ann@example.com", Password: "nope-nope"})
		assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	})

	t.Run("unknown email gets same error", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("FindByEmail", mock.Anything, "who@example.com").Return(nil, nil)
		_, err := newUseCase(repo, nil, nil).Login(context.Background(), &dto.LoginInput{Email: "who@example.com", Password: "password123"})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, "InvalidCredentials", appErr.MessageID)
	})

	t.Run("inactive", func(t *testing.T) {
		inactive := *u
		inactive.IsActive = false
		repo := new(mockRepo)
		repo.On("FindByEmail", mock.Anything, "ann@example.com").Return(&inactive, nil)
		_, err := newUseCase(repo, nil, nil).Login(context.Background(), &dto.LoginInput{Email: "ann@example.com", Password: "password123"})
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	})
}

func TestChangePassword(t *testing.T) {
	u := &model.User{BaseModel: model.BaseModel{ID: "u1"}, PasswordHash: hashed(t, "old-password")}
	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, "u1").Return(u, nil)
	repo.On("UpdatePassword", mock.Anything, "u1", mock.AnythingOfType("string")).Return(nil)
	uc := newUseCase(repo, nil, nil)

	err := uc.ChangePassword(context.Background(), &dto.ChangePasswordInput{UserID: "u1", CurrentPassword: "wrong", NewPassword: "new-password"})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))

	err = uc.ChangePassword(context.Background(), &dto.ChangePasswordInput{UserID: "u1", CurrentPassword: "old-password", NewPassword: "new-password"})
	assert.NoError(t, err)
	repo.AssertCalled(t, "UpdatePassword", mock.Anything, "u1", mock.AnythingOfType("string"))
}

func TestCreateFirstAddressBecomesDefault(t *testing.T) {
	repo := new(mockRepo)
	repo.On("CountAddresses", mock.Anything, "u1").Return(0, nil)
	repo.On("CreateAddress", mock.Anything, mock.MatchedBy(func(a *model.Address) bool { return a.IsDefault })).Return(nil)

	a, err := newUseCase(repo, nil, nil).CreateAddress(context.Background(), &dto.AddressInput{UserID: "u1", Recipient: "Ann", Country: "id"})
	require.NoError(t, err)
	assert.True(t, a.IsDefault)
	assert.Equal(t, "ID", a.Country)
}

func TestSetDefaultAddressNotFound(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindAddress", mock.Anything, "u1", "a9").Return(nil, nil)

	_, err := newUseCase(repo, nil, nil).SetDefaultAddress(context.Background(), "u1", "a9")
	assert.True(t, apperror.IsNotFound(err))
	repo.AssertNotCalled(t, "SetDefaultAddress", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateRole(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, "u2").Return(&model.User{BaseModel: model.BaseModel{ID: "u2"}, Role: auth.RoleCustomer}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	uc := newUseCase(repo, nil, nil)

	u, err := uc.UpdateRole(context.Background(), &dto.UpdateRoleInput{ActorID: "admin", UserID: "u2", Role: auth.RoleStaff})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleStaff, u.Role)

	_, err = uc.UpdateRole(context.Background(), &dto.UpdateRoleInput{ActorID: "admin", UserID: "admin", Role: auth.RoleCustomer})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))

	_, err = uc.UpdateRole(context.Background(), &dto.UpdateRoleInput{ActorID: "admin", UserID: "u2", Role: "ROOT"})
	assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))
}
