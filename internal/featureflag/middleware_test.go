package featureflag

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type staticFlags map[string]bool

func (s staticFlags) IsEnabled(_ context.Context, key string) bool { return s[key] }

func TestRequireFeature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	flags := staticFlags{POS: true}

	r := gin.New()
	r.GET("/pos", RequireFeature(flags, logger.NewNop(), POS), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/loyalty", RequireFeature(flags, logger.NewNop(), LoyaltyProgram), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pos", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/loyalty", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "feature disabled")
}
