package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(cfg RateLimitConfig) (*RateLimiter, *time.Time) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(cfg)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(RateLimitConfig{RPS: 1, Burst: 2})

	assert.True(t, rl.Allow("conv-1"))
	assert.True(t, rl.Allow("conv-1"))
	assert.False(t, rl.Allow("conv-1"))

	// Other keys have their own budget.
	assert.True(t, rl.Allow("conv-2"))

	*now = now.Add(time.Second)
	assert.True(t, rl.Allow("conv-1"))
	assert.False(t, rl.Allow("conv-1"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, now := newTestLimiter(RateLimitConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute})

	rl.Allow("a")
	*now = now.Add(30 * time.Second)
	rl.Allow("b")
	assert.Equal(t, 2, rl.Len())

	*now = now.Add(45 * time.Second)
	assert.Equal(t, 1, rl.Cleanup())
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_Run(t *testing.T) {
	rl, now := newTestLimiter(RateLimitConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute})
	rl.Allow("k")
	*now = now.Add(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return rl.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{})
	assert.Equal(t, DefaultRateLimitConfig(), rl.cfg)
}
