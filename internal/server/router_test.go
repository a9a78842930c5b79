package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/fekuna/omnipos-commerce/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flagSet map[string]bool

func (f flagSet) IsEnabled(_ context.Context, key string) bool { return f[key] }

func newTestRouter(db Pinger, flags flagSet) (*gin.Engine, *auth.TokenManager) {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	r := NewRouter(Deps{
		Tokens:  tokens,
		Flags:   flags,
		Limiter: middleware.NewRateLimiter(100, 100, log),
		DB:      db,
		Logger:  log,
	})
	return r, tokens
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(&fakeDB{}, nil)
	assert.Equal(t, http.StatusOK, get(r, "/healthz", "").Code)

	r, _ = newTestRouter(&fakeDB{err: errors.New("down")}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/healthz", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(&fakeDB{}, nil)
	w := get(r, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestCustomerRoutesNeedToken(t *testing.T) {
	r, _ := newTestRouter(&fakeDB{}, nil)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/me", "").Code)
}

func TestAdminRoutesNeedStaff(t *testing.T) {
	r, tokens := newTestRouter(&fakeDB{}, nil)
	token, _, err := tokens.Issue(auth.UserContext{UserID: "u1", Role: auth.RoleCustomer})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "/api/v1/admin/orders", token).Code)
}

func TestActivityLogsAdminOnly(t *testing.T) {
	r, tokens := newTestRouter(&fakeDB{}, nil)
	token, _, err := tokens.Issue(auth.UserContext{UserID: "s1", Role: auth.RoleStaff})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "/api/v1/admin/activity-logs", token).Code)
}

func TestDisabledFeatureIsForbidden(t *testing.T) {
	r, tokens := newTestRouter(&fakeDB{}, flagSet{})
	token, _, err := tokens.Issue(auth.UserContext{UserID: "s1", Role: auth.RoleStaff})
	require.NoError(t, err)

	w := get(r, "/api/v1/flash-sales/active", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "feature disabled")

	assert.Equal(t, http.StatusForbidden, get(r, "/api/v1/admin/pos/sessions/current", token).Code)
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(&fakeDB{}, nil)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/nope", "").Code)
}
