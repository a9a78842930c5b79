package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/loyalty"
	"github.com/fekuna/omnipos-commerce/internal/loyalty/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUseCase struct {
	loyalty.UseCase
	mock.Mock
}

func (m *mockUseCase) GetMyAccount(ctx context.Context, userID string) (*model.LoyaltyAccount, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).(*model.LoyaltyAccount)
	return a, args.Error(1)
}

func (m *mockUseCase) Quote(ctx context.Context, userID string, points int) (*model.PointsQuote, error) {
	args := m.Called(ctx, userID, points)
	q, _ := args.Get(0).(*model.PointsQuote)
	return q, args.Error(1)
}

func (m *mockUseCase) CreateTier(ctx context.Context, in *dto.TierInput) (*model.LoyaltyTier, error) {
	args := m.Called(ctx, in)
	t, _ := args.Get(0).(*model.LoyaltyTier)
	return t, args.Error(1)
}

func (m *mockUseCase) AdjustPoints(ctx context.Context, in *dto.AdjustInput) (*model.LoyaltyAccount, error) {
	args := m.Called(ctx, in)
	a, _ := args.Get(0).(*model.LoyaltyAccount)
	return a, args.Error(1)
}

func setup() (*gin.Engine, *mockUseCase) {
	gin.SetMode(gin.TestMode)
	uc := new(mockUseCase)
	h := NewLoyaltyHandler(uc, logger.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetUser(c, auth.UserContext{UserID: "u1", Role: auth.RoleCustomer})
		c.Next()
	})
	r.GET("/loyalty/me", h.GetMyAccount)
	r.GET("/loyalty/me/quote", h.Quote)
	r.POST("/admin/loyalty/tiers", h.CreateTier)
	r.POST("/admin/loyalty/accounts/:userId/adjust", h.AdjustPoints)
	return r, uc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGetMyAccount(t *testing.T) {
	r, uc := setup()
	uc.On("GetMyAccount", mock.Anything, "u1").Return(&model.LoyaltyAccount{UserID: "u1", PointsBalance: 42}, nil)

	w := do(r, http.MethodGet, "/loyalty/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"points_balance":42`)
}

func TestQuoteParsesPoints(t *testing.T) {
	r, uc := setup()
	uc.On("Quote", mock.Anything, "u1", 150).Return(&model.PointsQuote{Points: 150, Value: decimal.RequireFromString("1.5")}, nil)

	w := do(r, http.MethodGet, "/loyalty/me/quote?points=150", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/loyalty/me/quote?points=lots", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTierDefaultsMultiplier(t *testing.T) {
	r, uc := setup()
	uc.On("CreateTier", mock.Anything, mock.MatchedBy(func(in *dto.TierInput) bool {
		return in.Name == "Silver" && in.MinPoints == 500 && in.PointsMultiplier.Equal(decimal.NewFromInt(1)) && in.ActorID == "u1"
	})).Return(&model.LoyaltyTier{Name: "Silver"}, nil)

	w := do(r, http.MethodPost, "/admin/loyalty/tiers", `{"name":"Silver","min_points":500,"discount_percent":"2.5"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	uc.AssertExpectations(t)
}

func TestCreateTierConflict(t *testing.T) {
	r, uc := setup()
	uc.On("CreateTier", mock.Anything, mock.Anything).Return(nil, apperror.Conflict("TierConflict", "exists"))

	w := do(r, http.MethodPost, "/admin/loyalty/tiers", `{"name":"Silver"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdjustPointsRequiresReason(t *testing.T) {
	r, _ := setup()

	w := do(r, http.MethodPost, "/admin/loyalty/accounts/u2/adjust", `{"points":50}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"reason":"required"`)
}

func TestAdjustPointsPassesTarget(t *testing.T) {
	r, uc := setup()
	uc.On("AdjustPoints", mock.Anything, &dto.AdjustInput{ActorID: "u1", UserID: "u2", Points: -20, Reason: "typo"}).
		Return(&model.LoyaltyAccount{UserID: "u2"}, nil)

	w := do(r, http.MethodPost, "/admin/loyalty/accounts/u2/adjust", `{"points":-20,"reason":"typo"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
