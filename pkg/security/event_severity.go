package security

import "go.uber.org/zap/zapcore"

// Severity grades security events for alerting.
type Severity string

const (
	SeverityInfo   Severity = "INFO"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

var eventSeverity = map[EventType]Severity{
	EventLoginSuccess:       SeverityInfo,
	EventLoginFailed:        SeverityMedium,
	EventRateLimitTriggered: SeverityMedium,
	EventUploadLimited:      SeverityMedium,
	EventUnauthorizedAccess: SeverityMedium,
	EventLoginBlocked:       SeverityHigh,
	EventBlockCreated:       SeverityHigh,
	EventMalwareDetected:    SeverityHigh,
}

// GetSeverity returns the severity for an event type. Unknown events are MEDIUM.
func GetSeverity(event EventType) Severity {
	if s, ok := eventSeverity[event]; ok {
		return s
	}
	return SeverityMedium
}

// IsHigh reports whether the event should page someone.
func IsHigh(event EventType) bool {
	return GetSeverity(event) == SeverityHigh
}

func (s Severity) level() zapcore.Level {
	switch s {
	case SeverityInfo:
		return zapcore.InfoLevel
	case SeverityHigh:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
