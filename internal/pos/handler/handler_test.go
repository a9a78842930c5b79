package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/pos"
	"github.com/fekuna/omnipos-commerce/internal/pos/dto"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUseCase struct {
	pos.UseCase
	mock.Mock
}

func (m *mockUseCase) OpenSession(ctx context.Context, in *dto.OpenInput) (*model.POSSession, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(*model.POSSession)
	return s, args.Error(1)
}

func (m *mockUseCase) CloseSession(ctx context.Context, in *dto.CloseInput) (*dto.SessionReport, error) {
	args := m.Called(ctx, in)
	r, _ := args.Get(0).(*dto.SessionReport)
	return r, args.Error(1)
}

func (m *mockUseCase) CreateSale(ctx context.Context, in *dto.SaleInput) (*model.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func setup() (*gin.Engine, *mockUseCase) {
	gin.SetMode(gin.TestMode)
	uc := new(mockUseCase)
	h := NewPOSHandler(uc, logger.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetUser(c, auth.UserContext{UserID: "staff1", Role: auth.RoleStaff})
		c.Next()
	})
	r.POST("/pos/sessions", h.OpenSession)
	r.POST("/pos/sessions/current/close", h.CloseSession)
	r.POST("/pos/sales", h.CreateSale)
	return r, uc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestOpenSession(t *testing.T) {
	r, uc := setup()
	uc.On("OpenSession", mock.Anything, mock.MatchedBy(func(in *dto.OpenInput) bool {
		return in.StaffID == "staff1" && in.RegisterName == "Front" && in.OpeningCash.Equal(decimal.NewFromInt(100))
	})).Return(&model.POSSession{ID: "s1"}, nil)

	w := do(r, http.MethodPost, "/pos/sessions", `{"register_name":"Front","opening_cash":"100"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	uc.AssertExpectations(t)
}

func TestOpenSessionConflict(t *testing.T) {
	r, uc := setup()
	uc.On("OpenSession", mock.Anything, mock.Anything).
		Return(nil, apperror.Conflict("SessionAlreadyOpen", "already open"))

	w := do(r, http.MethodPost, "/pos/sessions", `{"register_name":"Front"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCloseSessionReturnsVariance(t *testing.T) {
	r, uc := setup()
	uc.On("CloseSession", mock.Anything, mock.Anything).Return(&dto.SessionReport{
		POSSession: &model.POSSession{ID: "s1", Status: model.SessionClosed},
		Variance:   decimal.RequireFromString("-4.5"),
	}, nil)

	w := do(r, http.MethodPost, "/pos/sessions/current/close", `{"closing_cash":"335.5"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"variance":"-4.5"`)
	assert.Contains(t, w.Body.String(), `"status":"CLOSED"`)
}

func TestCreateSaleValidatesPayload(t *testing.T) {
	r, _ := setup()

	for _, body := range []string{
		`{"items":[],"payment_method":"CASH"}`,
		`{"items":[{"variant_id":"8c1f9a4e-4b65-4a1b-9d57-1f0a2b3c4d5e","quantity":1}],"payment_method":"CHEQUE"}`,
		`{"items":[{"variant_id":"not-a-uuid","quantity":1}],"payment_method":"CARD"}`,
	} {
		w := do(r, http.MethodPost, "/pos/sales", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestCreateSale(t *testing.T) {
	r, uc := setup()
	uc.On("CreateSale", mock.Anything, mock.MatchedBy(func(in *dto.SaleInput) bool {
		return in.StaffID == "staff1" &&
			in.PaymentMethod == "CASH" &&
			in.AmountTendered != nil && in.AmountTendered.Equal(decimal.NewFromInt(50)) &&
			len(in.Items) == 1 && in.Items[0].Quantity == 2
	})).Return(&model.Order{BaseModel: model.BaseModel{ID: "o1"}}, nil)

	w := do(r, http.MethodPost, "/pos/sales",
		`{"items":[{"variant_id":"8c1f9a4e-4b65-4a1b-9d57-1f0a2b3c4d5e","quantity":2}],"payment_method":"CASH","amount_tendered":50}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	uc.AssertExpectations(t)
}
