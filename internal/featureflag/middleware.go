package featureflag

import (
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/httpx"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RequireFeature rejects requests with 403 while the flag is off.
func RequireFeature(flags Checker, log logger.ZapLogger, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !flags.IsEnabled(c.Request.Context(), key) {
			httpx.Error(c, log, apperror.Forbidden("FeatureDisabled", "feature disabled").WithData("Feature", key))
			return
		}
		c.Next()
	}
}
