package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickrcrawler/pkg/config"
	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/logger"
)

func fastConfig(attempts int) *Config {
	return &Config{
		MaxAttempts: attempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(error) bool { return true },
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{9, time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterStaysInRange(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 50; i++ {
		d := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, d, 140*time.Millisecond)
		assert.LessOrEqual(t, d, 260*time.Millisecond)
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, fastConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	attempts := 0
	var retried []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) }

	persistent := errors.New("persistent error")
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return persistent
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, persistent)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDoSingleAttemptReturnsErrorUnwrapped(t *testing.T) {
	boom := &errs.Error{Type: errs.ErrorTypeNetwork, Message: "reset"}
	err := Do(context.Background(), func(context.Context) error { return boom }, fastConfig(1))
	assert.Same(t, boom, err)
}

func TestDoDoesNotRetryNonRetryable(t *testing.T) {
	attempts := 0
	authError := &errs.Error{Type: errs.ErrorTypeAuth, Message: "invalid API key", Code: 100}

	cfg := fastConfig(5)
	cfg.RetryIf = DefaultRetryIf

	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return authError
	}, cfg)

	assert.Same(t, authError, err)
	assert.Equal(t, 1, attempts)
}

func TestDoCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	cfg := fastConfig(5)
	cfg.Backoff = &ConstantBackoff{Delay: time.Hour}

	err := Do(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("error")
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.DeadlineExceeded))
	assert.False(t, DefaultRetryIf(errors.New("untyped")))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeServerError, "502")))
	assert.True(t, DefaultRetryIf(errs.Wrap(errs.ErrorTypeDownload, errs.New(errs.ErrorTypeNetwork, "eof"), "get")))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeNotFound, "404")))
}

func TestRateLimitErrorsUseRateLimitBackoff(t *testing.T) {
	cfg := &Config{
		MaxAttempts:      2,
		Backoff:          &ConstantBackoff{Delay: time.Millisecond},
		RateLimitBackoff: &ConstantBackoff{Delay: 2 * time.Millisecond},
	}

	var delays []time.Duration
	cfg.OnRetry = func(_ int, _ error, d time.Duration) { delays = append(delays, d) }

	_ = Do(context.Background(), func(context.Context) error {
		return errs.New(errs.ErrorTypeRateLimit, "429")
	}, cfg)
	_ = Do(context.Background(), func(context.Context) error {
		return errs.New(errs.ErrorTypeNetwork, "reset")
	}, cfg)

	assert.Equal(t, []time.Duration{2 * time.Millisecond, time.Millisecond}, delays)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(context.Background(), func(context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("temporary error")
		}
		return "page", nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, "page", result)
	assert.Equal(t, 2, attempts)
}

func TestFromConfig(t *testing.T) {
	rc := config.RetryConfig{Enabled: true, MaxAttempts: 4, BaseDelay: time.Second, MaxDelay: 8 * time.Second, Multiplier: 3}
	cfg := FromConfig(rc, logger.NewNopLogger())
	assert.Equal(t, 4, cfg.MaxAttempts)
	eb, ok := cfg.Backoff.(*ExponentialBackoff)
	require.True(t, ok)
	assert.Equal(t, 3.0, eb.Multiplier)

	rc.Enabled = false
	assert.Equal(t, 1, FromConfig(rc, nil).MaxAttempts)
}

func TestWait(t *testing.T) {
	require.NoError(t, Wait(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Wait(ctx, 0), context.Canceled)
}
