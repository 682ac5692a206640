package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ProviderLimiter keeps one token bucket per upstream provider. Hub legs
// issued by the stitcher draw from the same buckets as direct searches.
type ProviderLimiter struct {
	limiters  map[string]*rate.Limiter
	mu        sync.RWMutex
	defaults  RateLimitConfig
	overrides map[string]RateLimitConfig
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst"`
}

func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

func NewProviderLimiter(config RateLimitConfig, overrides map[string]RateLimitConfig) *ProviderLimiter {
	if config.RequestsPerSecond <= 0 {
		config = DefaultConfig()
	}
	return &ProviderLimiter{
		limiters:  make(map[string]*rate.Limiter),
		defaults:  config,
		overrides: overrides,
	}
}

func NewProviderLimiterWithDefaults() *ProviderLimiter {
	return NewProviderLimiter(DefaultConfig(), nil)
}

func (p *ProviderLimiter) GetLimiter(provider string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[provider]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists = p.limiters[provider]; exists {
		return limiter
	}

	cfg := p.defaults
	if o, ok := p.overrides[provider]; ok && o.RequestsPerSecond > 0 {
		cfg = o
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}

	limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	p.limiters[provider] = limiter
	return limiter
}

func (p *ProviderLimiter) SetProviderLimit(provider string, rps float64, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.limiters[provider] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until provider may issue a request or ctx is done.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	return p.GetLimiter(provider).Wait(ctx)
}
