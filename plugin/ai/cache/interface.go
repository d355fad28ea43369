// Package cache stores recognition results keyed by culture and utterance.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// CacheService defines the cache service interface.
type CacheService interface {
	// Get retrieves a value from cache.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value in cache. A non-positive ttl uses the default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes one key, or every key sharing a prefix when
	// pattern ends in "*".
	Invalidate(ctx context.Context, pattern string) error
}

// RecognitionKeyPrefix prefixes every recognition key.
const RecognitionKeyPrefix = "nlu:"

// RecognitionKey returns the cache key for an utterance in culture.
// Utterances differing only in case or surrounding space share a key.
func RecognitionKey(culture, utterance string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(utterance))))
	return RecognitionKeyPrefix + strings.ToLower(culture) + ":" + hex.EncodeToString(sum[:16])
}
