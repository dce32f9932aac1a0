package middleware

import (
	"errors"
	"net/http"

	"fursa-backend/internal/delivery/http/response"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler pushed with c.Error.
// Field errors become the "error" object of the envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal(err)
		}

		if appErr.Code >= http.StatusInternalServerError {
			// Never expose internal error details to clients
			logger.Log.Error("Request failed",
				"request_id", response.RequestID(c),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", appErr.Code,
				"error", errorCause(appErr),
			)
		}

		var fields interface{}
		if len(appErr.Fields) > 0 {
			fields = appErr.Fields
		}
		response.Error(c, appErr.Code, appErr.Message, fields)
	}
}

func errorCause(e *apperror.AppError) string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}
