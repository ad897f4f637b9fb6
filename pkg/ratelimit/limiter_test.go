package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTokenBucket(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tb := NewTokenBucket(3, time.Second)
	tb.now = clock.now
	tb.Reset()

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "token %d", i)
	}
	assert.False(t, tb.Allow())

	clock.advance(1500 * time.Millisecond)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	clock.advance(time.Hour)
	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow())
	}
	assert.False(t, tb.Allow(), "refill is capped at capacity")

	tb.Reset()
	assert.True(t, tb.Allow())
}

func TestSlidingWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	sw := NewSlidingWindow(2, time.Second)
	sw.now = clock.now

	assert.True(t, sw.Allow())
	clock.advance(400 * time.Millisecond)
	assert.True(t, sw.Allow())
	assert.False(t, sw.Allow())

	clock.advance(600 * time.Millisecond)
	assert.True(t, sw.Allow(), "first request left the window")
	assert.False(t, sw.Allow())

	sw.Reset()
	assert.True(t, sw.Allow())
}

func TestWaitHonoursContext(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	require.NoError(t, tb.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tb.Wait(ctx), context.DeadlineExceeded)

	sw := NewSlidingWindow(1, time.Hour)
	require.NoError(t, sw.Wait(context.Background()))
	assert.ErrorIs(t, sw.Wait(ctx), context.DeadlineExceeded)
}

func TestWaitUnblocksAfterInterval(t *testing.T) {
	tb := NewTokenBucket(1, 30*time.Millisecond)
	require.True(t, tb.Allow())

	start := time.Now()
	require.NoError(t, tb.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestNew(t *testing.T) {
	l, err := New("token_bucket", 60, 5)
	require.NoError(t, err)
	assert.IsType(t, &TokenBucket{}, l)

	l, err = New("sliding_window", 60, 5)
	require.NoError(t, err)
	assert.IsType(t, &SlidingWindow{}, l)

	_, err = New("leaky_bucket", 60, 5)
	assert.Error(t, err)

	_, err = New("token_bucket", 0, 5)
	assert.Error(t, err)
}
