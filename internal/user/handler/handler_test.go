package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/user"
	"github.com/fekuna/omnipos-commerce/internal/user/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockUseCase implements only what the tests exercise; other methods panic.
type mockUseCase struct {
	user.UseCase
	mock.Mock
}

func (m *mockUseCase) Register(ctx context.Context, in *dto.RegisterInput) (*dto.AuthResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*dto.AuthResult)
	return res, args.Error(1)
}

func (m *mockUseCase) Login(ctx context.Context, in *dto.LoginInput) (*dto.AuthResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*dto.AuthResult)
	return res, args.Error(1)
}

func (m *mockUseCase) SetActive(ctx context.Context, in *dto.SetActiveInput) (*model.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func newRouter(uc *mockUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(uc, logger.NewNop())
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.PATCH("/admin/users/:id/active", func(c *gin.Context) {
		auth.SetUser(c, auth.UserContext{UserID: "admin-1", Role: auth.RoleAdmin})
	}, h.SetActive)
	return r
}

func postJSON(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterValidation(t *testing.T) {
	w := postJSON(newRouter(new(mockUseCase)), http.MethodPost, "/auth/register",
		map[string]string{"email": "not-an-email", "password": "short"}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body httpx.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "email", body.Error.Fields["email"])
	assert.Equal(t, "min", body.Error.Fields["password"])
	assert.Equal(t, "required", body.Error.Fields["name"])
}

func TestRegisterConflict(t *testing.T) {
	uc := new(mockUseCase)
	uc.On("Register", mock.Anything, mock.Anything).Return(nil, apperror.Conflict("EmailTaken", "email is already registered"))

	w := postJSON(newRouter(uc), http.MethodPost, "/auth/register",
		map[string]string{"email": "ann@example.com", "password": "password123", "name": "Ann"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginPassesCartSession(t *testing.T) {
	uc := new(mockUseCase)
	uc.On("Login", mock.Anything, mock.MatchedBy(func(in *dto.LoginInput) bool {
		return in.SessionID == "guest-42"
	})).Return(&dto.AuthResult{Token: "tok", User: &model.User{Email: "ann@example.com"}}, nil)

	w := postJSON(newRouter(uc), http.MethodPost, "/auth/login",
		map[string]string{"email": "ann@example.com", "password": "password123"},
		map[string]string{auth.CartSessionHeader: "guest-42"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"tok"`)
	uc.AssertExpectations(t)
}

func TestSetActiveRequiresFlag(t *testing.T) {
	uc := new(mockUseCase)
	r := newRouter(uc)

	w := postJSON(r, http.MethodPatch, "/admin/users/u2/active", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	uc.On("SetActive", mock.Anything, &dto.SetActiveInput{ActorID: "admin-1", UserID: "u2", IsActive: false}).
		Return(&model.User{IsActive: false}, nil)
	w = postJSON(r, http.MethodPatch, "/admin/users/u2/active", map[string]bool{"is_active": false}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
