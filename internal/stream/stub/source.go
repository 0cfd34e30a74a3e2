package stub

import (
	"context"

	"ztf-alert-lab/internal/domain"
)

// StubAlertSource returns fixed in-memory alerts for testing and offline
// runs. Implements stream.AlertSource.
type StubAlertSource struct {
	alerts []domain.Alert

	// Errs are returned, one per call, before alerts are served.
	// Supports exercising the consumer's retry path.
	errs []error
	call int
}

// NewStubAlertSource creates a stub source yielding the given alerts.
func NewStubAlertSource(alerts []domain.Alert) *StubAlertSource {
	return &StubAlertSource{alerts: alerts}
}

// FailWith queues errors to return on successive calls before succeeding.
func (s *StubAlertSource) FailWith(errs ...error) *StubAlertSource {
	s.errs = append(s.errs, errs...)
	return s
}

// GetAlerts returns copies of the stubbed alerts to prevent mutation.
func (s *StubAlertSource) GetAlerts(_ context.Context, _ string) ([]domain.Alert, error) {
	if s.call < len(s.errs) {
		err := s.errs[s.call]
		s.call++
		return nil, err
	}
	s.call++

	result := make([]domain.Alert, len(s.alerts))
	for i, a := range s.alerts {
		result[i] = a.Clone()
	}
	return result, nil
}

// Calls reports how many times GetAlerts has been invoked.
func (s *StubAlertSource) Calls() int {
	return s.call
}
