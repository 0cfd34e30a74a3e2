package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ztf-alert-lab/internal/domain"
)

// Default configuration values.
const (
	DefaultSourceTimeout = 60 * time.Second
)

// HTTPSource pulls alerts from the archive's chunked stream endpoint.
// Chunks are fetched sequentially and acknowledged once their alerts have
// been decoded, so a failed run resumes at the first unacknowledged chunk.
type HTTPSource struct {
	baseURL string
	token   string
	client  *http.Client
	chunks  prometheus.Counter // optional
}

// SourceOption configures HTTPSource.
type SourceOption func(*HTTPSource)

// WithSourceHTTPClient sets a custom http.Client.
func WithSourceHTTPClient(client *http.Client) SourceOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithChunkCounter counts fetched chunks on the given metric.
func WithChunkCounter(counter prometheus.Counter) SourceOption {
	return func(s *HTTPSource) {
		s.chunks = counter
	}
}

// NewHTTPSource creates an alert source for the given archive base URL,
// authenticating with the bearer token.
func NewHTTPSource(baseURL, authToken string, opts ...SourceOption) *HTTPSource {
	s := &HTTPSource{
		baseURL: baseURL,
		token:   authToken,
		client:  &http.Client{Timeout: DefaultSourceTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// chunkResponse is one page of the stream.
type chunkResponse struct {
	Alerts    []json.RawMessage `json:"alerts"`
	Chunk     int               `json:"chunk"`
	Remaining struct {
		Chunks int `json:"chunks"`
	} `json:"remaining"`
}

// GetAlerts materializes the full alert sequence for a resume token.
// HTTP 423 maps to ErrStreamNotReady; any other failure wraps
// ErrStreamFailure.
func (s *HTTPSource) GetAlerts(ctx context.Context, resumeToken string) ([]domain.Alert, error) {
	var alerts []domain.Alert

	for {
		chunk, err := s.fetchChunk(ctx, resumeToken)
		if err != nil {
			return nil, err
		}
		if s.chunks != nil {
			s.chunks.Inc()
		}

		for _, raw := range chunk.Alerts {
			a, err := decodeAlert(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrStreamFailure, err)
			}
			alerts = append(alerts, a)
		}

		if err := s.acknowledgeChunk(ctx, resumeToken, chunk.Chunk); err != nil {
			return nil, err
		}

		if chunk.Remaining.Chunks <= 0 {
			return alerts, nil
		}
	}
}

func (s *HTTPSource) fetchChunk(ctx context.Context, resumeToken string) (*chunkResponse, error) {
	url := fmt.Sprintf("%s/stream/%s/chunk?with_history=true", s.baseURL, resumeToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrStreamFailure, err)
	}
	req.Header.Set("Authorization", "bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch chunk: %v", ErrStreamFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read chunk: %v", ErrStreamFailure, err)
	}

	if resp.StatusCode == http.StatusLocked {
		return nil, fmt.Errorf("%w: stream %s is still being built", ErrStreamNotReady, resumeToken)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d: %s", ErrStreamFailure, resp.StatusCode, body)
	}

	var chunk chunkResponse
	if err := json.Unmarshal(body, &chunk); err != nil {
		return nil, fmt.Errorf("%w: decode chunk: %v", ErrStreamFailure, err)
	}
	return &chunk, nil
}

func (s *HTTPSource) acknowledgeChunk(ctx context.Context, resumeToken string, chunkID int) error {
	url := fmt.Sprintf("%s/stream/%s/chunk/%d/acknowledge", s.baseURL, resumeToken, chunkID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("%w: create acknowledge request: %v", ErrStreamFailure, err)
	}
	req.Header.Set("Authorization", "bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: acknowledge chunk %d: %v", ErrStreamFailure, chunkID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: acknowledge chunk %d: unexpected status %d", ErrStreamFailure, chunkID, resp.StatusCode)
	}
	return nil
}
