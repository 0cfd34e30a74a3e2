package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"ztf-alert-lab/internal/domain"
)

// Default retry policy values.
const (
	DefaultRetryBase   = 1 * time.Second
	DefaultRetryBudget = 1 * time.Hour
)

// StreamTimeoutError is returned when the stream stayed not-ready for the
// whole retry budget. It wraps ErrStreamNotReady.
type StreamTimeoutError struct {
	Budget  time.Duration
	Elapsed time.Duration
}

func (e *StreamTimeoutError) Error() string {
	return fmt.Sprintf("stream not ready after %s (budget %s)", e.Elapsed, e.Budget)
}

func (e *StreamTimeoutError) Unwrap() error {
	return ErrStreamNotReady
}

// Consumer pulls the full alert sequence for a resume token, retrying the
// not-ready condition with exponential backoff up to a cumulative time
// budget. Any other source failure propagates immediately.
type Consumer struct {
	source  AlertSource
	base    time.Duration
	budget  time.Duration
	log     zerolog.Logger
	retries prometheus.Counter // optional

	// Injectable clock and sleeper for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// ConsumerOption configures Consumer.
type ConsumerOption func(*Consumer)

// WithRetryBase sets the initial backoff delay.
func WithRetryBase(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.base = d
	}
}

// WithRetryBudget sets the cumulative retry budget.
func WithRetryBudget(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.budget = d
	}
}

// WithConsumerLogger sets the consumer logger.
func WithConsumerLogger(log zerolog.Logger) ConsumerOption {
	return func(c *Consumer) {
		c.log = log
	}
}

// WithRetryCounter counts not-ready retries on the given metric.
func WithRetryCounter(counter prometheus.Counter) ConsumerOption {
	return func(c *Consumer) {
		c.retries = counter
	}
}

// withClock replaces the wall clock and sleeper. Test use only.
func withClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) ConsumerOption {
	return func(c *Consumer) {
		c.now = now
		c.sleep = sleep
	}
}

// NewConsumer creates a consumer over the given alert source.
func NewConsumer(source AlertSource, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		source: source,
		base:   DefaultRetryBase,
		budget: DefaultRetryBudget,
		log:    zerolog.Nop(),
		now:    time.Now,
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Consume materializes the complete alert sequence for the resume token.
// Order within the returned slice is whatever the source yields.
func (c *Consumer) Consume(ctx context.Context, resumeToken string) ([]domain.Alert, error) {
	start := c.now()
	delay := c.base

	for attempt := 0; ; attempt++ {
		alerts, err := c.source.GetAlerts(ctx, resumeToken)
		if err == nil {
			c.log.Info().Int("alerts", len(alerts)).Int("attempts", attempt+1).Msg("stream consumed")
			return alerts, nil
		}
		if !errors.Is(err, ErrStreamNotReady) {
			return nil, fmt.Errorf("consume stream: %w", err)
		}

		elapsed := c.now().Sub(start)
		remaining := c.budget - elapsed
		if remaining <= 0 {
			return nil, &StreamTimeoutError{Budget: c.budget, Elapsed: elapsed}
		}
		// The last wait is truncated so the whole budget is spent before
		// giving up.
		if delay > remaining {
			delay = remaining
		}
		if c.retries != nil {
			c.retries.Inc()
		}

		c.log.Debug().
			Dur("delay", delay).
			Dur("elapsed", elapsed).
			Int("attempt", attempt+1).
			Msg("stream not ready, backing off")

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}
}
