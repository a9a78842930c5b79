package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tm *TokenManager, required bool, roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{Authenticate(tm, logger.NewNop(), required)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(logger.NewNop(), roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c)+"|"+GetRole(c))
	})
	r.GET("/t", handlers...)
	return r
}

func do(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, exp, err := tm.Issue(UserContext{UserID: "u-1", Role: RoleCustomer})
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	rec := do(newRouter(tm, true), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1|CUSTOMER", rec.Body.String())
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	assert.Equal(t, http.StatusUnauthorized, do(newRouter(tm, true), "").Code)

	rec := do(newRouter(tm, false), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "|", rec.Body.String())
}

func TestAuthenticate_BadTokens(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)
	foreign, _, err := other.Issue(UserContext{UserID: "u-1", Role: RoleAdmin})
	require.NoError(t, err)

	expired := NewTokenManager("secret", -time.Minute)
	old, _, err := expired.Issue(UserContext{UserID: "u-1", Role: RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "token"},
		{"basic scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage", "Bearer a.b.c"},
		{"wrong key", "Bearer " + foreign},
		{"expired", "Bearer " + old},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, do(newRouter(tm, false), tt.header).Code)
		})
	}
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	claims := &Claims{UserID: "u-1", Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "omnipos-commerce",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.Error(t, err)
}

func TestRequireRoles(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	customer, _, _ := tm.Issue(UserContext{UserID: "c", Role: RoleCustomer})
	staff, _, _ := tm.Issue(UserContext{UserID: "s", Role: RoleStaff})

	r := newRouter(tm, false, RoleStaff, RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+customer).Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer "+staff).Code)
}
