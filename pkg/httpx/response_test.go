package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/i18n"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	i18n.Init()
}

func newContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestErrorMapsDomainKinds(t *testing.T) {
	c, rec := newContext("/x")
	Error(c, logger.NewNop(), apperror.Conflict("SlugTaken", "slug taken").WithData("Slug", "summer-sale"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "conflict", body.Code)
	assert.Equal(t, "slug summer-sale is already in use", body.Message)
}

func TestErrorFallsBackToDefaultMessage(t *testing.T) {
	c, rec := newContext("/x")
	Error(c, logger.NewNop(), apperror.Invalid("NotInAnyLocale", "plain {{.N}} default").WithData("N", 3))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "plain 3 default", decodeError(t, rec).Message)
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	c, rec := newContext("/x")
	Error(c, logger.NewNop(), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.NotContains(t, body.Message, "pq")
}

func TestErrorLocalizesIndonesian(t *testing.T) {
	c, rec := newContext("/x")
	c.Request.Header.Set("Accept-Language", "id-ID,id;q=0.9")
	Error(c, logger.NewNop(), apperror.NotFound("ProductNotFound", "product not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "produk tidak ditemukan", decodeError(t, rec).Message)
}

func TestPaginationClamps(t *testing.T) {
	tests := []struct {
		query      string
		page, size int
	}{
		{"", 1, 20},
		{"?page=3&page_size=50", 3, 50},
		{"?page=0&page_size=-1", 1, 20},
		{"?page=abc&page_size=1000", 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := newContext("/items" + tt.query)
			page, size := Pagination(c)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.size, size)
		})
	}
}

func TestBindErrorListsFields(t *testing.T) {
	type req struct {
		Email string `json:"email" binding:"required,email"`
	}
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)
	c.Request.Header.Set("Content-Type", "application/json")

	var r req
	err := c.ShouldBindJSON(&r)
	require.Error(t, err)
	BindError(c, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "discount_code", toSnake("DiscountCode"))
	assert.Equal(t, "sku", toSnake("SKU"))
	assert.Equal(t, "variant_id", toSnake("VariantID"))
}
