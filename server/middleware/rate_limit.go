package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures per-key rate limiting.
type RateLimitConfig struct {
	// RPS is the sustained number of requests per second per key.
	RPS float64
	// Burst is the number of requests allowed at once.
	Burst int
	// IdleTTL is how long an unused key is remembered.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig allows 10 requests per second with a burst of 20.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RPS: 10, Burst: 20, IdleTTL: 10 * time.Minute}
}

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides per-key rate limiting, keyed by conversation.
type RateLimiter struct {
	mu     sync.Mutex
	cfg    RateLimitConfig
	limits map[string]*keyLimiter
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	def := DefaultRateLimitConfig()
	if cfg.RPS <= 0 {
		cfg.RPS = def.RPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}
	return &RateLimiter{
		cfg:    cfg,
		limits: make(map[string]*keyLimiter),
		now:    time.Now,
	}
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if kl, ok := rl.limits[key]; ok {
		kl.lastSeen = now
		return kl.limiter
	}

	kl := &keyLimiter{
		limiter:  rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst),
		lastSeen: now,
	}
	rl.limits[key] = kl
	return kl.limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).AllowN(rl.now(), 1)
}

// Cleanup forgets keys idle for longer than IdleTTL and returns how many.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.cfg.IdleTTL)
	removed := 0
	for key, kl := range rl.limits {
		if kl.lastSeen.Before(cutoff) {
			delete(rl.limits, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}

// Run calls Cleanup every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}
