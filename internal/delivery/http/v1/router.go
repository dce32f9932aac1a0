package v1

import (
	"strings"
	"time"

	"fursa-backend/config"
	"fursa-backend/internal/delivery/http/middleware"
	"fursa-backend/internal/domain"
	"fursa-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	ProfileUC     domain.ProfileUsecase
	SkillUC       domain.SkillUsecase
	JobUC         domain.JobUsecase
	ApplicationUC domain.ApplicationUsecase
	HealthUC      domain.HealthUsecase
	Tokens        domain.TokenService
	LoginTracker  *security.LoginTracker  // optional
	UploadLimiter *security.UploadLimiter // optional
	SecurityLog   *security.SecurityLogger
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes() * 2

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	// Local uploads are served by the API itself; S3 references are absolute URLs
	if cfg.StorageDriver != "s3" && strings.HasPrefix(cfg.MediaURL, "/") {
		r.StaticFS(cfg.MediaURL, gin.Dir(cfg.MediaRoot, false))
	}

	public := r.Group("")
	NewHealthHandler(public, deps.HealthUC)
	NewJobHandler(public, deps.JobUC)

	credentials := r.Group("")
	credentials.Use(middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(cfg.RateLimitLoginThreshold, window)))
	NewAuthHandler(credentials, deps.AuthUC, deps.LoginTracker, deps.SecurityLog)

	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC))
	if deps.UploadLimiter != nil {
		protected.Use(middleware.UploadLimitMiddleware(deps.UploadLimiter))
	}
	{
		NewSkillHandler(public, protected, deps.SkillUC)
		NewProfileHandler(protected, deps.ProfileUC)
		NewApplicationHandler(protected, deps.ApplicationUC)
	}

	return r
}
