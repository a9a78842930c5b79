package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/user"
	"github.com/fekuna/omnipos-commerce/internal/user/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	errInvalidCredentials = apperror.Unauthorized("InvalidCredentials", "invalid email or password")
	errUserNotFound       = apperror.NotFound("UserNotFound", "user not found")
	errAddressNotFound    = apperror.NotFound("AddressNotFound", "address not found")
)

type userUseCase struct {
	repo     user.Repository
	tokens   *auth.TokenManager
	loyalty  user.LoyaltyEnroller
	carts    user.CartMerger
	activity activitylog.Recorder
	logger   logger.ZapLogger
}

// NewUserUseCase wires the identity use case. loyalty and carts may be nil.
func NewUserUseCase(
	repo user.Repository,
	tokens *auth.TokenManager,
	loyalty user.LoyaltyEnroller,
	carts user.CartMerger,
	activity activitylog.Recorder,
	log logger.ZapLogger,
) user.UseCase {
	return &userUseCase{
		repo:     repo,
		tokens:   tokens,
		loyalty:  loyalty,
		carts:    carts,
		activity: activity,
		logger:   log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *userUseCase) Register(ctx context.Context, input *dto.RegisterInput) (*dto.AuthResult, error) {
	if len(input.Password) < minPasswordLength {
		return nil, apperror.Invalid("PasswordTooShort", "password must be at least {{.Min}} characters").
			WithData("Min", minPasswordLength)
	}

	email := normalizeEmail(input.Email)
	existing, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("EmailTaken", "email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		BaseModel:    model.NewBase(uuid.New().String(), time.Now()),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(input.Name),
		Role:         auth.RoleCustomer,
		IsActive:     true,
	}
	if input.Phone != "" {
		u.Phone = &input.Phone
	}

	if err := uc.repo.Create(ctx, u); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperror.Conflict("EmailTaken", "email is already registered")
		}
		return nil, err
	}

	if uc.loyalty != nil {
		if _, err := uc.loyalty.EnsureAccount(ctx, u.ID); err != nil {
			uc.logger.Warn("failed to open loyalty account", zap.String("user_id", u.ID), zap.Error(err))
		}
	}
	uc.mergeCart(ctx, input.SessionID, u.ID)

	return uc.issue(u)
}

func (uc *userUseCase) Login(ctx context.Context, input *dto.LoginInput) (*dto.AuthResult, error) {
	u, err := uc.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !u.IsActive {
		return nil, apperror.Forbidden("AccountDisabled", "account is disabled")
	}

	uc.mergeCart(ctx, input.SessionID, u.ID)
	return uc.issue(u)
}

func (uc *userUseCase) mergeCart(ctx context.Context, sessionID, userID string) {
	if uc.carts == nil || sessionID == "" {
		return
	}
	if err := uc.carts.MergeGuestCart(ctx, sessionID, userID); err != nil {
		uc.logger.Warn("failed to merge guest cart", zap.String("user_id", userID), zap.Error(err))
	}
}

func (uc *userUseCase) issue(u *model.User) (*dto.AuthResult, error) {
	token, exp, err := uc.tokens.Issue(auth.UserContext{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, err
	}
	return &dto.AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (uc *userUseCase) GetMe(ctx context.Context, userID string) (*model.User, error) {
	u, err := uc.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errUserNotFound
	}
	return u, nil
}

func (uc *userUseCase) UpdateMe(ctx context.Context, input *dto.UpdateProfileInput) (*model.User, error) {
	u, err := uc.GetMe(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		u.Name = name
	}
	if input.Phone != "" {
		u.Phone = &input.Phone
	}
	u.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *userUseCase) ChangePassword(ctx context.Context, input *dto.ChangePasswordInput) error {
	u, err := uc.GetMe(ctx, input.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return apperror.Invalid("CurrentPasswordWrong", "current password is incorrect")
	}
	if len(input.NewPassword) < minPasswordLength {
		return apperror.Invalid("PasswordTooShort", "password must be at least {{.Min}} characters").
			WithData("Min", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.repo.UpdatePassword(ctx, u.ID, string(hash))
}

func (uc *userUseCase) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	return uc.repo.ListAddresses(ctx, userID)
}

func (uc *userUseCase) CreateAddress(ctx context.Context, input *dto.AddressInput) (*model.Address, error) {
	count, err := uc.repo.CountAddresses(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	a := &model.Address{BaseModel: model.NewBase(uuid.New().String(), time.Now())}
	applyAddress(a, input)
	// The first address is always the default.
	if count == 0 {
		a.IsDefault = true
	}

	if err := uc.repo.CreateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (uc *userUseCase) UpdateAddress(ctx context.Context, input *dto.AddressInput) (*model.Address, error) {
	a, err := uc.repo.FindAddress(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, errAddressNotFound
	}

	wasDefault := a.IsDefault
	applyAddress(a, input)
	// Unsetting the only default is done by choosing another one.
	if wasDefault {
		a.IsDefault = true
	}
	a.UpdatedAt = time.Now()

	if err := uc.repo.UpdateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func applyAddress(a *model.Address, in *dto.AddressInput) {
	a.UserID = in.UserID
	a.Label = in.Label
	a.Recipient = in.Recipient
	a.Phone = in.Phone
	a.Line1 = in.Line1
	a.Line2 = in.Line2
	a.City = in.City
	a.Province = in.Province
	a.PostalCode = in.PostalCode
	a.Country = strings.ToUpper(in.Country)
	a.IsDefault = in.IsDefault
}

func (uc *userUseCase) DeleteAddress(ctx context.Context, userID, id string) error {
	a, err := uc.repo.FindAddress(ctx, userID, id)
	if err != nil {
		return err
	}
	if a == nil {
		return errAddressNotFound
	}
	return uc.repo.DeleteAddress(ctx, userID, id)
}

func (uc *userUseCase) SetDefaultAddress(ctx context.Context, userID, id string) (*model.Address, error) {
	a, err := uc.repo.FindAddress(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, errAddressNotFound
	}
	if err := uc.repo.SetDefaultAddress(ctx, userID, id); err != nil {
		return nil, err
	}
	a.IsDefault = true
	return a, nil
}

func (uc *userUseCase) ListUsers(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error) {
	if filters.Role != "" && !auth.ValidRole(filters.Role) {
		return nil, 0, apperror.Invalid("RoleInvalid", "unknown role")
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *userUseCase) UpdateRole(ctx context.Context, input *dto.UpdateRoleInput) (*model.User, error) {
	if !auth.ValidRole(input.Role) {
		return nil, apperror.Invalid("RoleInvalid", "unknown role")
	}
	if input.ActorID == input.UserID {
		return nil, apperror.Invalid("CannotChangeOwnRole", "you cannot change your own role")
	}

	u, err := uc.GetMe(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	previous := u.Role
	u.Role = input.Role
	u.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    input.ActorID,
		ActorRole:  auth.RoleAdmin,
		Action:     "user.role_changed",
		EntityType: "user",
		EntityID:   u.ID,
		Metadata:   map[string]interface{}{"from": previous, "to": u.Role},
	})
	return u, nil
}

func (uc *userUseCase) SetActive(ctx context.Context, input *dto.SetActiveInput) (*model.User, error) {
	if input.ActorID == input.UserID && !input.IsActive {
		return nil, apperror.Invalid("CannotDisableSelf", "you cannot disable your own account")
	}

	u, err := uc.GetMe(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	u.IsActive = input.IsActive
	u.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    input.ActorID,
		ActorRole:  auth.RoleAdmin,
		Action:     "user.active_changed",
		EntityType: "user",
		EntityID:   u.ID,
		Metadata:   map[string]interface{}{"is_active": u.IsActive},
	})
	return u, nil
}
