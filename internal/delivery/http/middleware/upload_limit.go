package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"fursa-backend/internal/delivery/http/response"
	"fursa-backend/pkg/logger"
	"fursa-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// UploadLimitMiddleware applies the upload quota to multipart requests.
// It must run after AuthMiddleware so the daily quota is keyed by user.
func UploadLimitMiddleware(limiter *security.UploadLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isMultipart(c) {
			c.Next()
			return
		}

		userID := userIDString(c)
		allowed, retryAfter, err := limiter.AllowUpload(c.Request.Context(), c.ClientIP(), userID)
		if err != nil {
			logger.Log.Warn("Upload limit check failed", "request_id", response.RequestID(c), "error", err)
			c.Next()
			return
		}
		if !allowed {
			security.DefaultLogger().LogUploadLimited(c.Request.Context(), userID, c.ClientIP(), response.RequestID(c), retryAfter)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.Error(c, http.StatusTooManyRequests, "Too many uploads. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}
