package cache

import (
	"context"
	"log/slog"
	"time"
)

// TieredCache reads the local L1 first and falls back to a shared L2.
// L2 hits are copied into L1.
type TieredCache struct {
	l1    CacheService
	l2    CacheService
	l1TTL time.Duration
}

// NewTieredCache combines l1 and l2. A nil l2 makes the cache L1 only.
func NewTieredCache(l1, l2 CacheService, l1TTL time.Duration) *TieredCache {
	return &TieredCache{l1: l1, l2: l2, l1TTL: l1TTL}
}

// Get retrieves a value from L1, then L2.
func (t *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := t.l1.Get(ctx, key); ok {
		return v, true
	}
	if t.l2 == nil {
		return nil, false
	}
	v, ok := t.l2.Get(ctx, key)
	if !ok {
		return nil, false
	}
	if err := t.l1.Set(ctx, key, v, t.l1TTL); err != nil {
		slog.Debug("failed to backfill L1 cache", "key", key, "error", err)
	}
	return v, true
}

// Set writes to both tiers. An L2 failure is returned after L1 is written.
func (t *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	l1TTL := t.l1TTL
	if l1TTL <= 0 || (ttl > 0 && ttl < l1TTL) {
		l1TTL = ttl
	}
	if err := t.l1.Set(ctx, key, value, l1TTL); err != nil {
		return err
	}
	if t.l2 == nil {
		return nil
	}
	return t.l2.Set(ctx, key, value, ttl)
}

// Invalidate removes the pattern from both tiers.
func (t *TieredCache) Invalidate(ctx context.Context, pattern string) error {
	if err := t.l1.Invalidate(ctx, pattern); err != nil {
		return err
	}
	if t.l2 == nil {
		return nil
	}
	return t.l2.Invalidate(ctx, pattern)
}

var _ CacheService = (*TieredCache)(nil)
