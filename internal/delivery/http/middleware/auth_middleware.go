package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"fursa-backend/internal/delivery/http/response"
	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware admits requests carrying a valid access token for an existing user.
// The user id is stored under domain.KeyUserID.
func AuthMiddleware(tokens domain.TokenService, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Authentication credentials were not provided.", nil)
			c.Abort()
			return
		}

		userID, err := tokens.VerifyAccess(tokenString)
		if err != nil {
			logUnauthorized(c, "invalid_token")
			response.Error(c, http.StatusUnauthorized, "Given token not valid for any token type", nil)
			c.Abort()
			return
		}

		// Tokens outlive deleted accounts
		if _, err := authUC.GetCurrentUser(c.Request.Context(), userID); err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				logUnauthorized(c, "user_not_found")
				response.Error(c, http.StatusUnauthorized, "User not found", nil)
			} else {
				c.Error(err)
			}
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by AuthMiddleware.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(string(domain.KeyUserID))
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func logUnauthorized(c *gin.Context, reason string) {
	security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
		Event:     security.EventUnauthorizedAccess,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: response.RequestID(c),
		Details: map[string]interface{}{
			"reason": reason,
			"path":   c.FullPath(),
		},
	})
}

func userIDString(c *gin.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatInt(id, 10)
	}
	return ""
}
