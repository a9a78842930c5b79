package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/featureflag"
	"github.com/fekuna/omnipos-commerce/internal/featureflag/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUseCase struct {
	featureflag.UseCase
	mock.Mock
}

func (m *mockUseCase) Upsert(ctx context.Context, in *dto.FlagInput) (*model.FeatureFlag, error) {
	args := m.Called(ctx, in)
	f, _ := args.Get(0).(*model.FeatureFlag)
	return f, args.Error(1)
}

func (m *mockUseCase) Toggle(ctx context.Context, actorID, key string) (*model.FeatureFlag, error) {
	args := m.Called(ctx, actorID, key)
	f, _ := args.Get(0).(*model.FeatureFlag)
	return f, args.Error(1)
}

func setup() (*gin.Engine, *mockUseCase) {
	gin.SetMode(gin.TestMode)
	uc := new(mockUseCase)
	h := NewFlagHandler(uc, logger.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetUser(c, auth.UserContext{UserID: "admin", Role: auth.RoleAdmin})
		c.Next()
	})
	r.PUT("/feature-flags/:key", h.Upsert)
	r.POST("/feature-flags/:key/toggle", h.Toggle)
	return r, uc
}

func TestUpsertUsesPathKey(t *testing.T) {
	r, uc := setup()
	uc.On("Upsert", mock.Anything, &dto.FlagInput{ActorID: "admin", Key: "pos", Description: "Register", Enabled: true}).
		Return(&model.FeatureFlag{Key: "pos", Enabled: true}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/feature-flags/pos", strings.NewReader(`{"description":"Register","enabled":true}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"enabled":true`)
}

func TestToggleUnknownFlag(t *testing.T) {
	r, uc := setup()
	uc.On("Toggle", mock.Anything, "admin", "ghost").Return(nil, apperror.NotFound("FeatureFlagNotFound", "feature flag not found"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/feature-flags/ghost/toggle", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
