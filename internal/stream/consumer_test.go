package stream

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ztf-alert-lab/internal/domain"
)

// fakeClock advances only when the consumer sleeps.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return nil
}

// scriptedSource fails with the queued errors, then succeeds.
type scriptedSource struct {
	errs   []error
	alerts []domain.Alert
	calls  int
}

func (s *scriptedSource) GetAlerts(_ context.Context, _ string) ([]domain.Alert, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return nil, s.errs[s.calls-1]
	}
	return s.alerts, nil
}

func newTestConsumer(source AlertSource, clock *fakeClock, opts ...ConsumerOption) *Consumer {
	opts = append(opts, withClock(clock.Now, clock.Sleep))
	return NewConsumer(source, opts...)
}

func TestConsumer_SucceedsFirstTry(t *testing.T) {
	source := &scriptedSource{alerts: []domain.Alert{{ObjectID: "ZTF20aaaaaaa"}}}
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := newTestConsumer(source, clock)

	alerts, err := c.Consume(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, 1, source.calls)
}

func TestConsumer_RetriesNotReadyWithBackoff(t *testing.T) {
	source := &scriptedSource{
		errs:   []error{ErrStreamNotReady, ErrStreamNotReady, ErrStreamNotReady},
		alerts: []domain.Alert{{ObjectID: "ZTF20aaaaaaa"}},
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := newTestConsumer(source, clock, WithRetryBase(time.Second))

	alerts, err := c.Consume(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, 4, source.calls)
	// Delays double: 1s + 2s + 4s.
	assert.Equal(t, 7*time.Second, clock.now.Sub(time.Unix(0, 0)))
}

func TestConsumer_OtherErrorsPropagateImmediately(t *testing.T) {
	source := &scriptedSource{
		errs: []error{fmt.Errorf("%w: boom", ErrStreamFailure)},
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := newTestConsumer(source, clock)

	_, err := c.Consume(context.Background(), "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamFailure)
	assert.Equal(t, 1, source.calls)
}

func TestConsumer_BudgetExhaustionEscalatesToTimeout(t *testing.T) {
	// Source that is never ready: retries must stop once the cumulative
	// budget would be exceeded, not loop forever.
	source := &scriptedSource{
		errs: repeatErr(ErrStreamNotReady, 1000),
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := newTestConsumer(source, clock,
		WithRetryBase(time.Second),
		WithRetryBudget(time.Hour),
	)

	_, err := c.Consume(context.Background(), "tok")
	require.Error(t, err)

	var timeout *StreamTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, time.Hour, timeout.Budget)
	assert.Equal(t, time.Hour, timeout.Elapsed)
	assert.ErrorIs(t, err, ErrStreamNotReady)

	// 1+2+4+...: the budget caps the attempt count at a dozen, not 1000.
	assert.Less(t, source.calls, 15)
	// The final wait is truncated so the entire budget is spent before
	// the timeout escalates.
	assert.Equal(t, time.Hour, clock.now.Sub(time.Unix(0, 0)))
}

func TestConsumer_ContextCancelledDuringBackoff(t *testing.T) {
	source := &scriptedSource{errs: repeatErr(ErrStreamNotReady, 10)}
	clock := &fakeClock{now: time.Unix(0, 0)}

	ctx, cancel := context.WithCancel(context.Background())
	c := NewConsumer(source, withClock(clock.Now, func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := c.Consume(ctx, "tok")
	assert.ErrorIs(t, err, context.Canceled)
}

func repeatErr(err error, n int) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = err
	}
	return errs
}
