package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/inventory/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) AdjustStock(ctx context.Context, in *dto.AdjustStockInput) (*model.InventoryMovement, error) {
	args := m.Called(ctx, in)
	mv, _ := args.Get(0).(*model.InventoryMovement)
	return mv, args.Error(1)
}

func (m *mockUseCase) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.InventoryMovement), args.Int(1), args.Error(2)
}

func (m *mockUseCase) ListLowStock(ctx context.Context, page, pageSize int) ([]model.LowStockItem, int, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]model.LowStockItem), args.Int(1), args.Error(2)
}

func newRouter(uc *mockUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewInventoryHandler(uc, logger.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) { auth.SetUser(c, auth.UserContext{UserID: "staff-1", Role: auth.RoleStaff}) })
	r.POST("/inventory/adjust", h.AdjustStock)
	r.GET("/inventory/low-stock", h.ListLowStock)
	return r
}

func TestAdjustStockBusy(t *testing.T) {
	uc := new(mockUseCase)
	uc.On("AdjustStock", mock.Anything, mock.MatchedBy(func(in *dto.AdjustStockInput) bool {
		return in.UserID == "staff-1" && in.QuantityChange == -1
	})).Return(nil, apperror.Busy("StockBusy", "stock is being updated, please try again"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/inventory/adjust",
		strings.NewReader(`{"variant_id":"7f1c1a5e-5d43-4a8e-9a39-7a3f0e8a1b11","quantity_change":-1,"reason":"damaged"}`))
	req.Header.Set("Content-Type", "application/json")
	newRouter(uc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdjustStockRequiresReason(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/inventory/adjust",
		strings.NewReader(`{"variant_id":"7f1c1a5e-5d43-4a8e-9a39-7a3f0e8a1b11","quantity_change":3}`))
	req.Header.Set("Content-Type", "application/json")
	newRouter(new(mockUseCase)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListLowStock(t *testing.T) {
	uc := new(mockUseCase)
	uc.On("ListLowStock", mock.Anything, 1, 20).Return([]model.LowStockItem{{SKU: "TEE-S", Stock: 1}}, 1, nil)

	w := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/inventory/low-stock", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TEE-S")
}
