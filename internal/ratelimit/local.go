package ratelimit

import (
	"context"
	"errors"
	"sync"

	"github.com/smallbiznis/rentledger/internal/clock"
	"golang.org/x/time/rate"
)

// LocalBucket keeps one token bucket per key in process memory.
type LocalBucket struct {
	clk   clock.Clock
	rate  rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewLocalBucket(clk clock.Clock, perSecond float64, burst int) *LocalBucket {
	if clk == nil {
		clk = clock.New()
	}
	return &LocalBucket{
		clk:     clk,
		rate:    rate.Limit(perSecond),
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (b *LocalBucket) Allow(_ context.Context, key string) (Result, error) {
	if key == "" {
		return Result{}, errors.New("rate limiter key is empty")
	}

	limiter := b.bucket(key)
	now := b.clk.Now()
	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return Result{Limit: b.burst}, nil
	}

	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Result{Limit: b.burst, RetryAfter: delay}, nil
	}

	return Result{
		Allowed:   true,
		Limit:     b.burst,
		Remaining: int(limiter.TokensAt(now)),
	}, nil
}

func (b *LocalBucket) bucket(key string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	limiter, ok := b.buckets[key]
	if !ok {
		limiter = rate.NewLimiter(b.rate, b.burst)
		b.buckets[key] = limiter
	}
	return limiter
}
