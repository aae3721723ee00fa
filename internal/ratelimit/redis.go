package ratelimit

import (
    "context"
    "fmt"
    "strconv"
    "time"

    "github.com/redis/go-redis/v9"
)

// The script refills in whole intervals so that the bucket state only
// depends on now_ms, never on how often the key is touched.
var tokenBucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// RedisLimiter keeps buckets in Redis so every API instance shares them.
type RedisLimiter struct {
    rdb    redis.Scripter
    bucket Bucket
    now    func() time.Time
}

// NewRedisLimiter returns a limiter storing buckets through rdb.
func NewRedisLimiter(rdb redis.Scripter, b Bucket) *RedisLimiter {
    return &RedisLimiter{rdb: rdb, bucket: b, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
    ttl := int64(l.bucket.TTL / time.Second)
    if ttl < 1 {
        ttl = 1
    }
    vals, err := tokenBucketScript.Run(ctx, l.rdb, []string{key},
        l.now().UnixMilli(),
        l.bucket.Capacity,
        l.bucket.RefillTokens,
        l.bucket.RefillInterval.Milliseconds(),
        ttl,
    ).Result()
    if err != nil {
        return Decision{}, fmt.Errorf("rate limit script: %w", err)
    }
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        return Decision{}, fmt.Errorf("rate limit script: unexpected result %#v", vals)
    }
    return Decision{
        Allowed:    asInt64(arr[0]) == 1,
        Remaining:  asInt64(arr[1]),
        RetryAfter: time.Duration(asInt64(arr[2])) * time.Millisecond,
    }, nil
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}
