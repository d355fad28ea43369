package server

import (
	"context"

	"github.com/hrygo/daysuntil/internal/profile"
	"github.com/hrygo/daysuntil/plugin/ai/cache"
	"github.com/hrygo/daysuntil/plugin/ai/router"
	"github.com/hrygo/daysuntil/plugin/ai/timeout"
)

// newRecognizer builds the recognition service for the configured provider.
// Remote providers sit behind the in-process cache, tiered over Redis when
// one is configured. The returned func releases the caches.
func newRecognizer(ctx context.Context, p *profile.Profile, events router.EventVocabulary, observer router.RecognitionObserver) (*router.Service, func(), error) {
	cfg := router.Config{
		Rules:    router.NewRuleMatcher(events),
		Observer: observer,
	}

	switch p.NLUProvider {
	case profile.ProviderLUIS:
		client, err := router.NewLUISClient(router.LUISConfig{
			AppID:   p.LUISAppID,
			APIKey:  p.LUISAPIKey,
			Host:    p.LUISHost,
			Region:  p.LUISRegion,
			Staging: p.LUISStaging,
			Log:     p.LUISLog,
			Timeout: timeout.RecognitionTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		cfg.Remote = client
		cfg.RemoteName = router.ProviderLUIS
	case profile.ProviderOpenAI:
		cfg.Remote = router.NewLLMRecognizer(router.LLMConfig{
			APIKey:  p.OpenAIAPIKey,
			BaseURL: p.OpenAIBaseURL,
			Model:   p.OpenAIModel,
		})
		cfg.RemoteName = router.ProviderOpenAI
		cfg.Timeout = timeout.LLMRecognitionTimeout
	default:
		return router.NewService(cfg), func() {}, nil
	}

	l1cfg := cache.DefaultServiceConfig()
	if p.CacheCapacity > 0 {
		l1cfg.Capacity = p.CacheCapacity
	}
	if p.CacheTTL > 0 {
		l1cfg.DefaultTTL = p.CacheTTL
	}
	l1 := cache.NewService(l1cfg)
	closers := []func(){l1.Close}
	cfg.Cache = l1
	cfg.CacheTTL = l1cfg.DefaultTTL

	if p.IsRedisEnabled() {
		l2, err := cache.NewRedisCache(ctx, &cache.RedisConfig{
			Addr:       p.RedisAddr,
			Password:   p.RedisPassword,
			DB:         p.RedisDB,
			KeyPrefix:  p.RedisPrefix,
			DefaultTTL: p.CacheTTL,
			PoolSize:   10,
		})
		if err != nil {
			l1.Close()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = l2.Close() })
		cfg.Cache = cache.NewTieredCache(l1, l2, p.CacheTTL)
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return router.NewService(cfg), closeAll, nil
}
