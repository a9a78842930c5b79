package auth

import (
	"strings"

	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticate parses the bearer token when present. With required=false an
// absent header passes through anonymously, but a malformed one is still rejected.
func Authenticate(tm *TokenManager, log logger.ZapLogger, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				httpx.Error(c, log, apperror.Unauthorized("AuthRequired", "authentication required"))
				return
			}
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			httpx.Error(c, log, apperror.Unauthorized("AuthHeaderInvalid", "invalid authorization header"))
			return
		}

		claims, err := tm.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Debug("token rejected", zap.Error(err), zap.String("path", c.FullPath()))
			httpx.Error(c, log, apperror.Unauthorized("TokenInvalid", "invalid or expired token"))
			return
		}

		SetUser(c, UserContext{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
		c.Next()
	}
}

// RequireRoles must run after Authenticate.
func RequireRoles(log logger.ZapLogger, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			httpx.Error(c, log, apperror.Unauthorized("AuthRequired", "authentication required"))
			return
		}
		if !allowed[GetRole(c)] {
			httpx.Error(c, log, apperror.Forbidden("RoleForbidden", "insufficient permissions"))
			return
		}
		c.Next()
	}
}
