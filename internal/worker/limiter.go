package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/rbarros/sentex/internal/model"
)

// Limiter enforces an independent request rate per vendor. Vendors throttle
// on their own schedules; without per-vendor caps a fan-out to one of them
// produces 429 failures indistinguishable from genuine errors.
type Limiter struct {
	limiters     map[model.Provider]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter with a default per-provider rate.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 2
	}

	return &Limiter{
		limiters:     make(map[model.Provider]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the provider's limiter clears one request or the context
// is cancelled.
func (l *Limiter) Wait(ctx context.Context, provider model.Provider) error {
	return l.getLimiter(provider).Wait(ctx)
}

// SetProviderRate overrides the rate for one vendor.
func (l *Limiter) SetProviderRate(provider model.Provider, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}
	l.limiters[provider] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) getLimiter(provider model.Provider) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[provider]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[provider]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[provider] = limiter

	return limiter
}
