package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/internal/review"
	"github.com/fekuna/omnipos-commerce/internal/review/dto"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUseCase struct {
	review.UseCase
	mock.Mock
}

func (m *mockUseCase) CreateReview(ctx context.Context, in *dto.CreateReviewInput) (*model.Review, error) {
	args := m.Called(ctx, in)
	rv, _ := args.Get(0).(*model.Review)
	return rv, args.Error(1)
}

func (m *mockUseCase) ListReviews(ctx context.Context, f *dto.ReviewFilters) ([]model.Review, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.Review), args.Int(1), args.Error(2)
}

func setup() (*gin.Engine, *mockUseCase) {
	gin.SetMode(gin.TestMode)
	uc := new(mockUseCase)
	h := NewReviewHandler(uc, logger.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetUser(c, auth.UserContext{UserID: "u1", Role: auth.RoleCustomer})
		c.Next()
	})
	r.POST("/products/:id/reviews", h.CreateReview)
	r.GET("/admin/reviews", h.ListReviews)
	r.PATCH("/admin/reviews/:id", h.ModerateReview)
	return r, uc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateReview(t *testing.T) {
	r, uc := setup()
	uc.On("CreateReview", mock.Anything, &dto.CreateReviewInput{UserID: "u1", ProductID: "p1", Rating: 5, Title: "Love it"}).
		Return(&model.Review{Rating: 5}, nil)

	w := do(r, http.MethodPost, "/products/p1/reviews", `{"rating":5,"title":"Love it"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateReviewRatingRange(t *testing.T) {
	r, _ := setup()

	w := do(r, http.MethodPost, "/products/p1/reviews", `{"rating":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListReviewsFilters(t *testing.T) {
	r, uc := setup()
	uc.On("ListReviews", mock.Anything, &dto.ReviewFilters{Status: "PENDING", Rating: 1, Page: 1, PageSize: 20}).
		Return([]model.Review{}, 0, nil)

	w := do(r, http.MethodGet, "/admin/reviews?status=PENDING&rating=1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestModerateReviewStatus(t *testing.T) {
	r, _ := setup()

	w := do(r, http.MethodPatch, "/admin/reviews/r1", `{"status":"PENDING"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
