package domain

import "context"

type HealthStatus struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

type HealthUsecase interface {
	Check(ctx context.Context) (*HealthStatus, error)
}
