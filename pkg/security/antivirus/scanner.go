package antivirus

import (
	"context"
	"io"
)

// ScanResult is the verdict for one uploaded file.
type ScanResult struct {
	Infected    bool
	ThreatName  string // empty when clean
	ScannerName string
	Error       error
}

// Scanner checks uploaded file content for malware.
// Implementations fail closed: a scan error yields Infected=true.
type Scanner interface {
	Scan(ctx context.Context, filename string, data io.Reader) ScanResult
	Name() string
	Available(ctx context.Context) bool
}

// NoOpScanner reports every file as clean. Used when no scanner daemon is configured.
type NoOpScanner struct{}

var _ Scanner = (*NoOpScanner)(nil)

func NewNoOpScanner() *NoOpScanner {
	return &NoOpScanner{}
}

func (n *NoOpScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	return ScanResult{ScannerName: n.Name()}
}

func (n *NoOpScanner) Name() string {
	return "noop"
}

func (n *NoOpScanner) Available(ctx context.Context) bool {
	return true
}
