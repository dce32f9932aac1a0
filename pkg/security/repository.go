package security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRecord is a security event as stored, with the logger's metadata attached.
type EventRecord struct {
	SecurityEvent
	Service     string
	Environment string
	Severity    Severity
}

// EventStore persists security events for later review.
type EventStore interface {
	PersistEvent(ctx context.Context, record EventRecord) error
}

// SecurityEventRepository stores events in the security_events table.
type SecurityEventRepository struct {
	db *pgxpool.Pool
}

var _ EventStore = (*SecurityEventRepository)(nil)

func NewSecurityEventRepository(db *pgxpool.Pool) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

func (r *SecurityEventRepository) PersistEvent(ctx context.Context, record EventRecord) error {
	query := `
		INSERT INTO security_events (
			event_type, service, environment, severity,
			subject_type, subject_value, ip_address, user_agent,
			request_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var details []byte
	if len(record.Details) > 0 {
		details, _ = json.Marshal(record.Details)
	}

	// inet column: empty string is not a valid address
	var ip interface{}
	if record.IP != "" {
		ip = record.IP
	}

	_, err := r.db.Exec(ctx, query,
		string(record.Event),
		record.Service,
		record.Environment,
		string(record.Severity),
		record.SubjectType,
		record.SubjectValue,
		ip,
		record.UserAgent,
		record.RequestID,
		details,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("persist security event: %w", err)
	}
	return nil
}
