// Package ratelimit implements the per-provider token-bucket limiter shared
// across all models of one provider (§4.2). Buckets are process-scoped: a
// single ProviderRegistry instance is constructed once and held for the
// engine's lifetime.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Strategy selects what acquire does when a bucket has no token available.
type Strategy string

const (
	// StrategyWait blocks (honoring ctx and an optional timeout) until a
	// token refills.
	StrategyWait Strategy = "wait"
	// StrategyReject fails immediately instead of waiting.
	StrategyReject Strategy = "reject"
)

// RateLimitExceeded is returned when a caller could not acquire a token for
// modelId/providerName, either because the bucket was empty under REJECT,
// the wait timed out, or the caller's context was cancelled mid-wait.
type RateLimitExceeded struct {
	ModelID  string
	Provider string
	Reason   string // "rejected" | "timeout" | "interrupted"
}

func (e *RateLimitExceeded) Error() string {
	return fmt.Sprintf("rate limit exceeded for model %q (provider %q): %s", e.ModelID, e.Provider, e.Reason)
}

// ProviderConfig configures one provider's bucket.
type ProviderConfig struct {
	RPS      int
	Strategy Strategy
	Timeout  time.Duration
}

// ProviderRegistry holds one *rate.Limiter per provider name, shared by
// every model registered to that provider. It is safe for concurrent use;
// construction is the only mutation point.
type ProviderRegistry struct {
	mu         sync.RWMutex
	buckets    map[string]*rate.Limiter
	configs    map[string]ProviderConfig
	providerOf map[string]string // modelId -> providerName
}

// NewProviderRegistry builds buckets for every configured provider.
// providerOf maps modelId -> providerName; a model absent from this map is
// never rate limited (acquire is a no-op for it).
func NewProviderRegistry(configs map[string]ProviderConfig, providerOf map[string]string) *ProviderRegistry {
	buckets := make(map[string]*rate.Limiter, len(configs))
	cfgCopy := make(map[string]ProviderConfig, len(configs))
	for provider, cfg := range configs {
		rps := cfg.RPS
		if rps < 1 {
			rps = 1
		}
		// Burst = rps: one second's worth of tokens refills evenly over
		// that second, matching the "rps tokens/second evenly" contract.
		buckets[provider] = rate.NewLimiter(rate.Limit(rps), rps)
		cfgCopy[provider] = cfg
	}
	pm := make(map[string]string, len(providerOf))
	for k, v := range providerOf {
		pm[k] = v
	}
	return &ProviderRegistry{buckets: buckets, configs: cfgCopy, providerOf: pm}
}

// Acquire blocks or fails per the owning provider's configured strategy. It
// is a no-op when modelId is not registered to any provider.
func (r *ProviderRegistry) Acquire(ctx context.Context, modelID string) error {
	r.mu.RLock()
	provider, registered := r.providerOf[modelID]
	r.mu.RUnlock()
	if !registered {
		return nil
	}

	r.mu.RLock()
	bucket, ok := r.buckets[provider]
	cfg := r.configs[provider]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	switch cfg.Strategy {
	case StrategyReject:
		if !bucket.Allow() {
			return &RateLimitExceeded{ModelID: modelID, Provider: provider, Reason: "rejected"}
		}
		return nil
	default: // StrategyWait
		waitCtx := ctx
		var cancel context.CancelFunc
		if cfg.Timeout > 0 {
			waitCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}
		if err := bucket.Wait(waitCtx); err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return &RateLimitExceeded{ModelID: modelID, Provider: provider, Reason: "interrupted"}
			}
			return &RateLimitExceeded{ModelID: modelID, Provider: provider, Reason: "timeout"}
		}
		return nil
	}
}
