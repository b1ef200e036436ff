package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// BucketConfig sets a steady request rate with a burst allowance.
type BucketConfig struct {
	Rate    rate.Limit
	Burst   int
	IdleTTL time.Duration
}

// DefaultAPIConfig allows 10 requests per second with bursts of 30.
func DefaultAPIConfig() BucketConfig {
	return BucketConfig{Rate: 10, Burst: 30, IdleTTL: 10 * time.Minute}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter keeps one token bucket per identifier. It throttles
// general API traffic without the bans MemoryRateLimiter applies.
type TokenBucketLimiter struct {
	config  BucketConfig
	buckets map[string]*bucket
	mu      sync.Mutex
	now     func() time.Time
	swept   time.Time
}

func NewTokenBucketLimiter(config BucketConfig, now func() time.Time) *TokenBucketLimiter {
	if now == nil {
		now = time.Now
	}
	return &TokenBucketLimiter{
		config:  config,
		buckets: make(map[string]*bucket),
		now:     now,
		swept:   now(),
	}
}

func (l *TokenBucketLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictIdle(now)

	b, ok := l.buckets[identifier]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.config.Rate, l.config.Burst)}
		l.buckets[identifier] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, &RateLimitInfo{RetryAfter: time.Second}
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, &RateLimitInfo{
			ResetTime:  now.Add(delay),
			RetryAfter: delay,
		}
	}
	return true, &RateLimitInfo{Allowed: true}
}

func (l *TokenBucketLimiter) evictIdle(now time.Time) {
	if l.config.IdleTTL <= 0 || now.Sub(l.swept) < l.config.IdleTTL {
		return
	}
	l.swept = now
	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.config.IdleTTL {
			delete(l.buckets, id)
		}
	}
}
