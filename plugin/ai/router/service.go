package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/hrygo/daysuntil/plugin/ai/cache"
	"github.com/hrygo/daysuntil/plugin/ai/timeout"
)

// Provider names.
const (
	ProviderLUIS   = "luis"
	ProviderOpenAI = "openai"
	ProviderRules  = "rules"
)

// RecognitionObserver is told about every remote recognizer call.
type RecognitionObserver interface {
	RecordRecognition(provider string, duration time.Duration, err error)
}

// Config contains the configuration for the recognition service.
type Config struct {
	// Remote is the NLU service. When nil, Rules answers every utterance.
	Remote      Recognizer
	RemoteName  string
	Rules       Recognizer
	Cache       cache.CacheService
	CacheTTL    time.Duration
	Timeout     time.Duration
	MaxInFlight int64
	Observer    RecognitionObserver
}

// Service fronts the configured recognizer with a cache, request
// coalescing and a cap on concurrent remote calls.
type Service struct {
	remote     Recognizer
	remoteName string
	rules      Recognizer
	cache      cache.CacheService
	cacheTTL   time.Duration
	timeout    time.Duration
	sem        *semaphore.Weighted
	group      singleflight.Group
	observer   RecognitionObserver
}

// NewService creates a new recognition service.
func NewService(cfg Config) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeout.RecognitionTimeout
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = timeout.MaxConcurrentRecognitions
	}
	if cfg.Rules == nil {
		cfg.Rules = NewRuleMatcher(nil)
	}
	if cfg.RemoteName == "" {
		cfg.RemoteName = "remote"
	}
	return &Service{
		remote:     cfg.Remote,
		remoteName: cfg.RemoteName,
		rules:      cfg.Rules,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		timeout:    cfg.Timeout,
		sem:        semaphore.NewWeighted(cfg.MaxInFlight),
		observer:   cfg.Observer,
	}
}

// Provider returns the name of the recognizer answering utterances.
func (s *Service) Provider() string {
	if s.remote == nil {
		return ProviderRules
	}
	return s.remoteName
}

// Recognize resolves utterance through the cache, then the remote
// recognizer, or the rule matcher when no remote is configured.
// Remote failures are returned, never replaced by rule matching.
func (s *Service) Recognize(ctx context.Context, utterance, culture string) (*Recognition, error) {
	if s.remote == nil {
		return s.rules.Recognize(ctx, utterance, culture)
	}

	key := cache.RecognitionKey(culture, utterance)
	if rec, ok := s.cached(ctx, key); ok {
		slog.Debug("recognition served from cache", "input", truncate(utterance, 50))
		return rec, nil
	}

	// The shared call must outlive any single caller; each caller still
	// gives up on its own context.
	ch := s.group.DoChan(key, func() (any, error) {
		return s.callRemote(context.WithoutCancel(ctx), utterance, culture)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s recognizer: %w", s.remoteName, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		rec := res.Val.(*Recognition)
		if res.Shared {
			// Callers must not share a mutable result.
			rec = rec.clone()
		}
		return rec, nil
	}
}

func (s *Service) callRemote(ctx context.Context, utterance, culture string) (*Recognition, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sem.Acquire(callCtx, 1); err != nil {
		return nil, fmt.Errorf("%s recognizer: %w", s.remoteName, err)
	}
	defer s.sem.Release(1)

	start := time.Now()
	rec, err := s.remote.Recognize(callCtx, utterance, culture)
	if s.observer != nil {
		s.observer.RecordRecognition(s.remoteName, time.Since(start), err)
	}
	if err != nil {
		slog.Warn("remote recognition failed",
			"provider", s.remoteName,
			"input", truncate(utterance, 50),
			"error", err)
		return nil, fmt.Errorf("%s recognizer: %w", s.remoteName, err)
	}
	if rec.Provider == "" {
		rec.Provider = s.remoteName
	}

	s.store(ctx, cache.RecognitionKey(culture, utterance), rec)
	return rec, nil
}

func (s *Service) cached(ctx context.Context, key string) (*Recognition, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var rec Recognition
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Warn("dropping undecodable cached recognition", "key", key, "error", err)
		_ = s.cache.Invalidate(ctx, key)
		return nil, false
	}
	return &rec, true
}

func (s *Service) store(ctx context.Context, key string, rec *Recognition) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		slog.Warn("failed to cache recognition", "key", key, "error", err)
	}
}

func (r *Recognition) clone() *Recognition {
	c := *r
	c.Entities = append([]Entity(nil), r.Entities...)
	return &c
}

// Ensure Service implements Recognizer
var _ Recognizer = (*Service)(nil)
