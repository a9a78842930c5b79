package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce/internal/flashsale"
	"github.com/fekuna/omnipos-commerce/internal/flashsale/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUseCase struct {
	flashsale.UseCase
	mock.Mock
}

func (m *mockUseCase) ListActive(ctx context.Context) ([]model.FlashSale, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.FlashSale), args.Error(1)
}

func (m *mockUseCase) CreateSale(ctx context.Context, in *dto.SaleInput) (*model.FlashSale, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(*model.FlashSale)
	return s, args.Error(1)
}

func setup() (*gin.Engine, *mockUseCase) {
	gin.SetMode(gin.TestMode)
	uc := new(mockUseCase)
	h := NewFlashSaleHandler(uc, logger.NewNop())
	r := gin.New()
	r.GET("/flash-sales/active", h.ListActive)
	r.POST("/admin/flash-sales", h.CreateSale)
	return r, uc
}

func TestListActive(t *testing.T) {
	r, uc := setup()
	uc.On("ListActive", mock.Anything).Return([]model.FlashSale{{Name: "Payday", Status: model.FlashSaleActive}}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flash-sales/active", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payday")
}

func TestCreateSaleBindsItems(t *testing.T) {
	r, uc := setup()
	uc.On("CreateSale", mock.Anything, mock.MatchedBy(func(in *dto.SaleInput) bool {
		return len(in.Items) == 1 && *in.Items[0].QuantityLimit == 5 && in.EndsAt.After(in.StartsAt)
	})).Return(&model.FlashSale{Name: "Payday"}, nil)

	body := `{"name":"Payday","starts_at":"2026-06-01T10:00:00Z","ends_at":"2026-06-01T12:00:00Z",
		"items":[{"product_id":"8a6e0804-2bd0-4672-b79d-d97027f9071a","sale_price":"9.99","quantity_limit":5}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/flash-sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	uc.AssertExpectations(t)
}

func TestCreateSaleRequiresItems(t *testing.T) {
	r, _ := setup()
	body := `{"name":"Payday","starts_at":"2026-06-01T10:00:00Z","ends_at":"2026-06-01T12:00:00Z","items":[]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/flash-sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
