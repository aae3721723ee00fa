// Package ratelimit implements token bucket rate limiting with a shared
// Redis store or a bounded in-process store.
package ratelimit

import (
    "context"
    "time"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/config"
)

// Decision is the outcome of taking one token from a bucket.
type Decision struct {
    Allowed    bool
    Remaining  int64
    RetryAfter time.Duration
}

// Limiter takes a token from the bucket identified by key.
type Limiter interface {
    Allow(ctx context.Context, key string) (Decision, error)
}

// Bucket describes the shape of every bucket a limiter manages.  Buckets
// start full and gain RefillTokens every RefillInterval, up to Capacity.
// Idle buckets are forgotten after TTL.
type Bucket struct {
    Capacity       int64
    RefillTokens   int64
    RefillInterval time.Duration
    TTL            time.Duration
}

// BucketFrom extracts the bucket shape from cfg.
func BucketFrom(cfg config.RateLimitConfig) Bucket {
    return Bucket{
        Capacity:       int64(cfg.Capacity),
        RefillTokens:   int64(cfg.RefillTokens),
        RefillInterval: cfg.RefillInterval,
        TTL:            cfg.TTL,
    }
}
