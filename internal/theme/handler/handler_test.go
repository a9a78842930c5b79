package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/theme"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUseCase struct {
	theme.UseCase
	mock.Mock
}

func (m *mockUseCase) GetActive(ctx context.Context) (*model.Theme, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).(*model.Theme)
	return t, args.Error(1)
}

func (m *mockUseCase) Delete(ctx context.Context, actorID, id string) error {
	return m.Called(ctx, actorID, id).Error(0)
}

func setup() (*gin.Engine, *mockUseCase) {
	gin.SetMode(gin.TestMode)
	uc := new(mockUseCase)
	h := NewThemeHandler(uc, logger.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetUser(c, auth.UserContext{UserID: "a1", Role: auth.RoleAdmin})
		c.Next()
	})
	r.GET("/themes/active", h.GetActive)
	r.POST("/admin/themes", h.Create)
	r.DELETE("/admin/themes/:id", h.Delete)
	return r, uc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGetActive(t *testing.T) {
	r, uc := setup()
	uc.On("GetActive", mock.Anything).Return(&model.Theme{Name: "Dark", IsActive: true}, nil)

	w := do(r, http.MethodGet, "/themes/active", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Dark"`)
}

func TestCreateRequiresName(t *testing.T) {
	r, _ := setup()
	w := do(r, http.MethodPost, "/admin/themes", `{"settings":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteActiveConflict(t *testing.T) {
	r, uc := setup()
	uc.On("Delete", mock.Anything, "a1", "t1").Return(apperror.Conflict("ThemeActive", "the active theme cannot be deleted"))

	w := do(r, http.MethodDelete, "/admin/themes/t1", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
