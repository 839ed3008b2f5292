package ratelimit

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyPrefix = "rentledger:ratelimit:"

var Module = fx.Module("ratelimit",
	fx.Provide(ProvideLimiter),
)

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter spends one token from the bucket named by key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// ProvideLimiter shares buckets through Redis when a client is configured and
// keeps them in process otherwise. A non-positive rate disables limiting.
func ProvideLimiter(cfg config.Config, client *redis.Client, clk clock.Clock, log *zap.Logger) Limiter {
	rate, burst := cfg.Email.SendRate, cfg.Email.SendBurst
	if rate <= 0 {
		log.Info("email send throttle disabled")
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	if client != nil {
		return NewTokenBucket(client, rate, burst)
	}
	return NewLocalBucket(clk, rate, burst)
}
