package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/cms"
	"github.com/fekuna/omnipos-commerce/internal/cms/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUseCase struct {
	cms.UseCase
	mock.Mock
}

func (m *mockUseCase) CreatePage(ctx context.Context, in *dto.PageInput) (*model.CMSPage, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*model.CMSPage)
	return p, args.Error(1)
}

func (m *mockUseCase) GetPublishedPage(ctx context.Context, slug string) (*model.CMSPage, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*model.CMSPage)
	return p, args.Error(1)
}

func (m *mockUseCase) ReorderBlocks(ctx context.Context, in *dto.ReorderInput) ([]model.CMSBlock, error) {
	args := m.Called(ctx, in)
	return args.Get(0).([]model.CMSBlock), args.Error(1)
}

func (m *mockUseCase) ListBlocks(ctx context.Context, f *dto.BlockFilters) ([]model.CMSBlock, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.CMSBlock), args.Error(1)
}

func setup() (*gin.Engine, *mockUseCase) {
	gin.SetMode(gin.TestMode)
	uc := new(mockUseCase)
	h := NewCMSHandler(uc, logger.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetUser(c, auth.UserContext{UserID: "a1", Role: auth.RoleAdmin})
		c.Next()
	})
	r.GET("/pages/:slug", h.GetPublishedPage)
	r.POST("/admin/cms/pages", h.CreatePage)
	r.PUT("/admin/cms/pages/:id/blocks/order", h.ReorderBlocks)
	r.GET("/admin/cms/blocks", h.ListBlocks)
	return r, uc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePagePassesContentThrough(t *testing.T) {
	r, uc := setup()
	uc.On("CreatePage", mock.Anything, mock.MatchedBy(func(in *dto.PageInput) bool {
		return in.ActorID == "a1" && in.Title == "About" && string(in.Content) == `{"body":"hi"}`
	})).Return(&model.CMSPage{Title: "About"}, nil)

	w := do(r, http.MethodPost, "/admin/cms/pages", `{"title":"About","content":{"body":"hi"}}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreatePageRequiresTitle(t *testing.T) {
	r, uc := setup()
	w := do(r, http.MethodPost, "/admin/cms/pages", `{"slug":"about"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything)
}

func TestGetPublishedPageNotFound(t *testing.T) {
	r, uc := setup()
	uc.On("GetPublishedPage", mock.Anything, "hidden").
		Return(nil, apperror.NotFound("PageNotFound", "page not found"))

	w := do(r, http.MethodGet, "/pages/hidden", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderBlocksValidatesIDs(t *testing.T) {
	r, _ := setup()
	w := do(r, http.MethodPut, "/admin/cms/pages/pg1/blocks/order", `{"block_ids":["not-a-uuid"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReorderBlocks(t *testing.T) {
	r, uc := setup()
	ids := []string{"0b7c5d1e-8f4a-4c3b-9a6e-2d1f0e9c8b7a", "5f3e2d1c-0b9a-4876-a5b4-c3d2e1f0a9b8"}
	uc.On("ReorderBlocks", mock.Anything, &dto.ReorderInput{ActorID: "a1", PageID: "pg1", BlockIDs: ids}).
		Return([]model.CMSBlock{{Name: "second"}, {Name: "first"}}, nil)

	w := do(r, http.MethodPut, "/admin/cms/pages/pg1/blocks/order", `{"block_ids":["`+ids[0]+`","`+ids[1]+`"]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"second"`)
}

func TestListBlocksActiveFilter(t *testing.T) {
	r, uc := setup()
	uc.On("ListBlocks", mock.Anything, &dto.BlockFilters{Placement: "sidebar", ActiveOnly: true}).
		Return([]model.CMSBlock{}, nil)

	w := do(r, http.MethodGet, "/admin/cms/blocks?placement=sidebar&active=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}
