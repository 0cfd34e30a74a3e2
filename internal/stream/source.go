package stream

import (
	"context"
	"errors"

	"ztf-alert-lab/internal/domain"
)

// Stream errors.
var (
	// ErrStreamNotReady is returned while the archive is still building
	// the server-side result stream (HTTP 423). Transient; the Consumer
	// retries it.
	ErrStreamNotReady = errors.New("stream not ready")

	// ErrStreamFailure is returned for any other failure while pulling
	// alerts. Fatal; never retried.
	ErrStreamFailure = errors.New("stream failure")
)

// AlertSource pulls the complete alert sequence for a resume token.
// Alerts may arrive in any order; callers must not assume sorting by
// object or time.
type AlertSource interface {
	GetAlerts(ctx context.Context, resumeToken string) ([]domain.Alert, error)
}
