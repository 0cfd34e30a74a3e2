package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"ztf-alert-lab/internal/tokencache"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://ampel.zeuthen.desy.de/api/ztf/archive/v3"
	DefaultTimeout = 30 * time.Second
)

// QueryRejectedError is returned when the archive rejects a stream query.
// Detail carries the first server-reported validation message when the
// response body contained one.
type QueryRejectedError struct {
	Status int
	Detail string
}

func (e *QueryRejectedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("archive rejected query (status %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("archive rejected query (status %d)", e.Status)
}

// Client talks to the archive query endpoint.
type Client struct {
	baseURL  string
	token    string
	client   *http.Client
	cacheDir string // empty disables resume-token persistence
	log      zerolog.Logger
	latency  prometheus.ObserverVec // optional, labelled by endpoint
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the archive base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithTokenCache enables best-effort resume-token persistence to dir.
func WithTokenCache(dir string) ClientOption {
	return func(c *Client) {
		c.cacheDir = dir
	}
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithRequestLatency observes request latency on the given metric,
// labelled by endpoint.
func WithRequestLatency(obs prometheus.ObserverVec) ClientOption {
	return func(c *Client) {
		c.latency = obs
	}
}

// NewClient creates an archive client authenticating with the given
// bearer token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		client:  &http.Client{Timeout: DefaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the archive base URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type createStreamResponse struct {
	ResumeToken string `json:"resume_token"`
}

type rejectionResponse struct {
	Detail []struct {
		Msg string `json:"msg"`
	} `json:"detail"`
}

// CreateStream submits the query and returns the opaque resume token
// identifying the server-side result stream. When a token cache directory
// is configured the token is persisted best-effort; persistence failure is
// logged as a warning, never returned.
func (c *Client) CreateStream(ctx context.Context, q Query) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("marshal query: %w", err)
	}

	url := c.baseURL + "/streams/from_query"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "bearer "+c.token)

	reqStart := time.Now()
	resp, err := c.client.Do(req)
	if c.latency != nil {
		c.latency.WithLabelValues("from_query").Observe(time.Since(reqStart).Seconds())
	}
	if err != nil {
		return "", fmt.Errorf("submit query: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rejErr := &QueryRejectedError{Status: resp.StatusCode}
		var rej rejectionResponse
		if err := json.Unmarshal(respBody, &rej); err == nil && len(rej.Detail) > 0 {
			rejErr.Detail = rej.Detail[0].Msg
		}
		return "", rejErr
	}

	var out createStreamResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	c.log.Info().Str("resume_token", out.ResumeToken).Msg("stream initiated")

	if c.cacheDir != "" {
		if err := tokencache.Save(c.cacheDir, out.ResumeToken); err != nil {
			c.log.Warn().Err(err).Str("dir", c.cacheDir).Msg("failed to persist resume token")
		}
	}

	return out.ResumeToken, nil
}
