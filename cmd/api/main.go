package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fursa-backend/config"
	_ "fursa-backend/docs" // Important for Swagger
	v1 "fursa-backend/internal/delivery/http/v1"
	"fursa-backend/internal/domain"
	"fursa-backend/internal/repository/postgres"
	"fursa-backend/internal/usecase"
	"fursa-backend/pkg/auth"
	"fursa-backend/pkg/database"
	"fursa-backend/pkg/logger"
	"fursa-backend/pkg/redis"
	"fursa-backend/pkg/security"
	"fursa-backend/pkg/security/antivirus"
	"fursa-backend/pkg/storage"
	"fursa-backend/pkg/validation"
)

// @title           Fursa Backend API
// @version         1.0
// @description     Job marketplace backend: accounts, profiles, skills, jobs and applications.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	secLog := security.InitSecurityLogger("fursa-backend", "")
	defer secLog.Sync()
	logger.Log.Info("Starting fursa backend", "port", cfg.Port)

	ctx := context.Background()

	// 3. Setup Database
	if cfg.MigrationsAuto {
		if err := database.Migrate(ctx, cfg.DBUrl); err != nil {
			logger.Log.Error("Migration failed", "error", err)
			os.Exit(1)
		}
	}

	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	secLog.SetStore(security.NewSecurityEventRepository(dbPool))

	// 4. Setup Redis (optional)
	var redisCheck func(context.Context) error
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to memory", "error", err)
		} else {
			redisCheck = redis.HealthCheck
			defer redis.Close()
		}
	}

	// 5. Setup Storage
	fileStorage, err := newFileStorage(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to initialize file storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	profileRepo := postgres.NewProfileRepository(dbPool)
	skillRepo := postgres.NewSkillRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)

	// 7. Setup UseCases
	validate := validation.New()
	tokens := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	uploader := usecase.NewUploader(fileStorage, cfg.MaxUploadBytes())
	if cfg.ClamAVAddr != "" {
		scanner := antivirus.NewClamAVScanner(cfg.ClamAVAddr, cfg.ClamAVTimeout)
		if !scanner.Available(ctx) {
			logger.Log.Warn("ClamAV not reachable yet, uploads will be refused until it is", "addr", cfg.ClamAVAddr)
		}
		uploader.WithScanner(scanner)
	}

	authUC := usecase.NewAuthUsecase(userRepo, tokens, validate)
	profileUC := usecase.NewProfileUsecase(profileRepo, skillRepo, uploader, validate, cfg.SkillWhitelist)
	skillUC := usecase.NewSkillUsecase(skillRepo, validate)
	jobUC := usecase.NewJobUsecase(jobRepo)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, uploader, validate)
	healthUC := usecase.NewHealthUsecase(dbPool, redisCheck)

	// 8. Setup Security Services
	loginTracker := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		BlockDuration: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		UseIPTracking: true,
	}, secLog)
	uploadLimiter := security.NewUploadLimiter(cfg.UploadsPerMinute, cfg.UploadsPerDay)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		ProfileUC:     profileUC,
		SkillUC:       skillUC,
		JobUC:         jobUC,
		ApplicationUC: applicationUC,
		HealthUC:      healthUC,
		Tokens:        tokens,
		LoginTracker:  loginTracker,
		UploadLimiter: uploadLimiter,
		SecurityLog:   secLog,
		Config:        cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func newFileStorage(ctx context.Context, cfg *config.Config) (domain.FileStorage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return storage.NewS3Storage(ctx, storage.S3Config{
			Provider:        storage.S3Provider(cfg.S3Provider),
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
		})
	case "local", "":
		if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
			return nil, err
		}
		return storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL), nil
	default:
		return nil, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
	}
}
