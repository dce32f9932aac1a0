package usecase

import (
	"context"
	"net/http"
	"time"

	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthUsecase struct {
	db    Pinger
	redis func(ctx context.Context) error
}

// NewHealthUsecase checks the database and, when redisCheck is set, Redis.
func NewHealthUsecase(db Pinger, redisCheck func(ctx context.Context) error) domain.HealthUsecase {
	return &healthUsecase{db: db, redis: redisCheck}
}

// Check fails only when the database is down; a Redis outage degrades the status.
func (u *healthUsecase) Check(ctx context.Context) (*domain.HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := &domain.HealthStatus{Status: "ok", Services: map[string]string{}}

	if err := u.db.Ping(ctx); err != nil {
		status.Status = "unavailable"
		status.Services["database"] = "down"
		return status, apperror.New(http.StatusServiceUnavailable, "Service Unavailable", err)
	}
	status.Services["database"] = "up"

	switch {
	case u.redis == nil:
		status.Services["redis"] = "disabled"
	case u.redis(ctx) != nil:
		status.Status = "degraded"
		status.Services["redis"] = "down"
	default:
		status.Services["redis"] = "up"
	}
	return status, nil
}
