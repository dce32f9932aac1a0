package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSkillWhitelist is the set of skill names a profile may carry when
// SKILL_WHITELIST is not set.
var DefaultSkillWhitelist = []string{"Python", "React", "JavaScript", "Django", "Flutter"}

type Config struct {
	Port     string
	DBUrl    string
	LogLevel string
	// Run embedded migrations on startup
	MigrationsAuto bool
	// Token Configuration
	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration
	// Profiles
	SkillWhitelist []string
	MaxUploadMB    int
	// Malware scanning; empty ClamAVAddr disables it
	ClamAVAddr    string
	ClamAVTimeout time.Duration
	// CORS
	CORSAllowedOrigins []string
	// Storage Configuration
	StorageDriver string // "local" or "s3"
	MediaRoot     string // local driver: directory on disk
	MediaURL      string // public URL prefix for stored files
	S3Provider    string // "aws", "wasabi" or "custom"
	S3Endpoint    string
	S3Region      string
	S3Bucket      string
	S3AccessKeyID string
	S3SecretKey   string
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	FailedLoginBlockMinutes  int
	FailedLoginMaxAttempts   int
	UploadsPerMinute         int
	UploadsPerDay            int
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBUrl:          getEnv("DATABASE_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "debug"),
		MigrationsAuto: getEnvBool("MIGRATIONS_AUTO", true),
		// Token Configuration
		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		JWTAccessTTL:     getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL:    getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		// Profiles
		SkillWhitelist: getEnvList("SKILL_WHITELIST", DefaultSkillWhitelist),
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 5),
		ClamAVAddr:     getEnv("CLAMAV_ADDR", ""),
		ClamAVTimeout:  getEnvDuration("CLAMAV_TIMEOUT", 30*time.Second),
		// CORS
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:8081",
			"http://localhost:19006",
		}),
		// Storage Configuration
		StorageDriver: getEnv("STORAGE_DRIVER", "local"),
		MediaRoot:     getEnv("MEDIA_ROOT", "./media"),
		MediaURL:      strings.TrimRight(getEnv("MEDIA_URL", "/media"), "/"),
		S3Provider:    getEnv("S3_PROVIDER", "aws"),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3AccessKeyID: getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		FailedLoginBlockMinutes:  getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", 15),
		FailedLoginMaxAttempts:   getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", 5),
		UploadsPerMinute:         getEnvInt("UPLOADS_PER_MINUTE", 10),
		UploadsPerDay:            getEnvInt("UPLOADS_PER_DAY", 50),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		log.Println("WARNING: JWT_ACCESS_SECRET / JWT_REFRESH_SECRET not configured. Token issuance will fail.")
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// MaxUploadBytes returns the per-file upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration parses values like "15m" or "168h"
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
