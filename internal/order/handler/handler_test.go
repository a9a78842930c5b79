package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/order"
	"github.com/fekuna/omnipos-commerce/internal/order/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUseCase struct {
	order.UseCase
	mock.Mock
}

func (m *mockUseCase) Checkout(ctx context.Context, in *dto.CheckoutInput) (*model.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *mockUseCase) GetMyOrder(ctx context.Context, userID, id string) (*model.Order, error) {
	args := m.Called(ctx, userID, id)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *mockUseCase) ListOrders(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.Order), args.Int(1), args.Error(2)
}

func (m *mockUseCase) UpdateStatus(ctx context.Context, in *dto.StatusInput) (*model.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func setup() (*gin.Engine, *mockUseCase) {
	gin.SetMode(gin.TestMode)
	uc := new(mockUseCase)
	h := NewOrderHandler(uc, logger.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetUser(c, auth.UserContext{UserID: "u1", Role: auth.RoleCustomer})
		c.Next()
	})
	r.POST("/checkout", h.Checkout)
	r.GET("/orders/:id", h.GetMyOrder)
	r.GET("/admin/orders", h.ListOrders)
	r.PATCH("/admin/orders/:id/status", h.UpdateStatus)
	return r, uc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCheckout(t *testing.T) {
	r, uc := setup()
	uc.On("Checkout", mock.Anything, mock.MatchedBy(func(in *dto.CheckoutInput) bool {
		return in.UserID == "u1" && in.PointsToRedeem == 200 && in.DiscountCode == "SAVE10"
	})).Return(&model.Order{OrderNumber: "ORD-20260701-ABCDEF12"}, nil)

	w := do(r, http.MethodPost, "/checkout",
		`{"address_id":"8a6e0804-2bd0-4672-b79d-d97027f9071a","discount_code":"SAVE10","points_to_redeem":200}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "ORD-20260701-ABCDEF12")
}

func TestCheckoutNeedsAddress(t *testing.T) {
	r, _ := setup()
	w := do(r, http.MethodPost, "/checkout", `{"points_to_redeem":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMyOrderNotFound(t *testing.T) {
	r, uc := setup()
	uc.On("GetMyOrder", mock.Anything, "u1", "o9").Return(nil, apperror.NotFound("OrderNotFound", "order not found"))

	w := do(r, http.MethodGet, "/orders/o9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrdersParsesFilters(t *testing.T) {
	r, uc := setup()
	uc.On("ListOrders", mock.Anything, mock.MatchedBy(func(f *dto.OrderFilters) bool {
		return f.Status == "PAID" && f.Channel == "POS" && f.From != nil &&
			f.From.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) && f.Page == 2
	})).Return([]model.Order{}, 0, nil)

	w := do(r, http.MethodGet, "/admin/orders?status=PAID&channel=POS&from=2026-06-01&page=2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestListOrdersBadDate(t *testing.T) {
	r, _ := setup()
	w := do(r, http.MethodGet, "/admin/orders?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusValidatesValue(t *testing.T) {
	r, _ := setup()
	w := do(r, http.MethodPatch, "/admin/orders/o1/status", `{"status":"LOST"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	r, uc := setup()
	uc.On("UpdateStatus", mock.Anything, &dto.StatusInput{ActorID: "u1", OrderID: "o1", Status: "SHIPPED"}).
		Return(&model.Order{Status: "SHIPPED"}, nil)

	w := do(r, http.MethodPatch, "/admin/orders/o1/status", `{"status":"SHIPPED"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
