package v1

import (
	"net/http"
	"strconv"
	"strings"

	"fursa-backend/internal/delivery/http/response"
	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/logger"
	"fursa-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC  domain.AuthUsecase
	tracker *security.LoginTracker
	secLog  *security.SecurityLogger
}

// NewAuthHandler registers the credential routes. tracker may be nil.
func NewAuthHandler(public *gin.RouterGroup, authUC domain.AuthUsecase, tracker *security.LoginTracker, secLog *security.SecurityLogger) {
	if secLog == nil {
		secLog = security.DefaultLogger()
	}
	handler := &AuthHandler{authUC: authUC, tracker: tracker, secLog: secLog}

	public.POST("/register/", handler.Register)
	public.POST("/login/", handler.Login)
	public.POST("/token/refresh/", handler.Refresh)
}

type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type RefreshRequest struct {
	Refresh      string `json:"refresh"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Register godoc
// @Summary      Register a new account
// @Description  Creates the user and an empty profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.RegisterInput  true  "Credentials"
// @Success      201   {object}  response.Response{data=RegisterResponse}
// @Failure      400   {object}  response.Response
// @Router       /register/ [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	user, err := h.authUC.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	logger.Log.Info("User registered", "user_id", user.ID, "request_id", response.RequestID(c))
	response.Success(c, http.StatusCreated, "Account created successfully!", RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// Login godoc
// @Summary      Obtain a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.LoginInput  true  "Credentials"
// @Success      200   {object}  response.Response{data=domain.TokenPair}
// @Failure      401   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Unauthorized("Invalid credentials"))
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	ip := c.ClientIP()
	ua := c.GetHeader("User-Agent")
	reqID := response.RequestID(c)

	if h.tracker != nil {
		blocked, err := h.tracker.IsBlocked(ctx, email, ip)
		if err != nil {
			logger.Log.Warn("Login block check failed", "request_id", reqID, "error", err)
		}
		if blocked {
			h.secLog.LogLoginBlocked(ctx, email, ip, ua, reqID)
			if ttl, ok, _ := h.tracker.BlockTTL(ctx, email); ok {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			}
			c.Error(apperror.TooManyRequests("Too many failed login attempts. Please try again later."))
			return
		}
	}

	pair, err := h.authUC.Login(ctx, req)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindAuth && h.tracker != nil {
			if _, _, terr := h.tracker.RecordFailedAttempt(ctx, email, ip, ua, reqID); terr != nil {
				logger.Log.Warn("Failed to record login attempt", "request_id", reqID, "error", terr)
			}
		}
		c.Error(err)
		return
	}

	if h.tracker != nil {
		if err := h.tracker.ClearAttempts(ctx, email, ip); err != nil {
			logger.Log.Warn("Failed to clear login attempts", "request_id", reqID, "error", err)
		}
	}
	h.secLog.LogLoginSuccess(ctx, email, ip, ua, reqID)

	response.Success(c, http.StatusOK, "Login successful!", pair)
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      RefreshRequest  true  "Refresh token"
// @Success      200   {object}  response.Response{data=RefreshResponse}
// @Failure      401   {object}  response.Response
// @Router       /token/refresh/ [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Unauthorized("Refresh token is required"))
		return
	}

	token := req.Refresh
	if token == "" {
		token = req.RefreshToken
	}

	access, err := h.authUC.Refresh(c.Request.Context(), token)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Token refreshed", RefreshResponse{AccessToken: access})
}
