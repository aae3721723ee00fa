package ratelimit

import (
    "context"
    "sync"
    "time"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/clock"
)

type bucketState struct {
    tokens     int64
    lastRefill time.Time
    lastSeen   time.Time
}

// MemoryLimiter keeps buckets in process.  It applies the same refill
// arithmetic as the Redis script and holds at most maxKeys buckets; idle
// buckets past their TTL are swept when the map fills up, and the least
// recently seen bucket is dropped if that is not enough.
type MemoryLimiter struct {
    mu      sync.Mutex
    buckets map[string]*bucketState
    bucket  Bucket
    maxKeys int
    clock   clock.Clock
}

// NewMemoryLimiter returns an in-process limiter.
func NewMemoryLimiter(b Bucket, maxKeys int, clk clock.Clock) *MemoryLimiter {
    if maxKeys < 1 {
        maxKeys = 1
    }
    if clk == nil {
        clk = clock.NewSystem()
    }
    return &MemoryLimiter{
        buckets: make(map[string]*bucketState),
        bucket:  b,
        maxKeys: maxKeys,
        clock:   clk,
    }
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
    now := l.clock.Now()

    l.mu.Lock()
    defer l.mu.Unlock()

    st, ok := l.buckets[key]
    if ok && now.Sub(st.lastSeen) > l.bucket.TTL {
        ok = false
    }
    if !ok {
        if len(l.buckets) >= l.maxKeys {
            l.evictLocked(now)
        }
        st = &bucketState{tokens: l.bucket.Capacity, lastRefill: now}
        l.buckets[key] = st
    }
    st.lastSeen = now

    if interval := l.bucket.RefillInterval; interval > 0 && l.bucket.RefillTokens > 0 {
        if elapsed := now.Sub(st.lastRefill); elapsed >= interval {
            n := int64(elapsed / interval)
            st.tokens += n * l.bucket.RefillTokens
            if st.tokens > l.bucket.Capacity {
                st.tokens = l.bucket.Capacity
            }
            st.lastRefill = st.lastRefill.Add(time.Duration(n) * interval)
        }
    }

    if st.tokens > 0 {
        st.tokens--
        return Decision{Allowed: true, Remaining: st.tokens}, nil
    }
    retry := l.bucket.RefillInterval - now.Sub(st.lastRefill)
    if retry < 0 {
        retry = 0
    }
    return Decision{Allowed: false, Remaining: 0, RetryAfter: retry}, nil
}

// Len returns the number of tracked buckets.
func (l *MemoryLimiter) Len() int {
    l.mu.Lock()
    defer l.mu.Unlock()
    return len(l.buckets)
}

func (l *MemoryLimiter) evictLocked(now time.Time) {
    var (
        oldestKey string
        oldest    time.Time
    )
    for k, st := range l.buckets {
        if now.Sub(st.lastSeen) > l.bucket.TTL {
            delete(l.buckets, k)
            continue
        }
        if oldestKey == "" || st.lastSeen.Before(oldest) {
            oldestKey, oldest = k, st.lastSeen
        }
    }
    if len(l.buckets) >= l.maxKeys && oldestKey != "" {
        delete(l.buckets, oldestKey)
    }
}
