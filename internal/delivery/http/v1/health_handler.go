package v1

import (
	"errors"
	"net/http"

	"fursa-backend/internal/delivery/http/response"
	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthUC domain.HealthUsecase
}

func NewHealthHandler(public *gin.RouterGroup, healthUC domain.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}
	public.GET("/health/", handler.Check)
}

// Check godoc
// @Summary      Health check
// @Description  Pings PostgreSQL and, when configured, Redis
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.HealthStatus}
// @Failure      503  {object}  response.Response{data=domain.HealthStatus}
// @Router       /health/ [get]
func (h *HealthHandler) Check(c *gin.Context) {
	status, err := h.healthUC.Check(c.Request.Context())
	if err != nil {
		code := http.StatusServiceUnavailable
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			code = appErr.Code
		}
		c.JSON(code, response.Response{
			Success:   false,
			Message:   "Service unavailable",
			Data:      status,
			RequestID: response.RequestID(c),
		})
		return
	}

	response.Success(c, http.StatusOK, "System operational", status)
}
