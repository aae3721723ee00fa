package middleware

import (
    "log/slog"
    "math"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/config"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/ratelimit"
)

// RateLimit takes one token per request from the bucket selected by the
// configured key strategy.  Limiter failures let the request through so an
// outage of the shared store never takes the API down with it.
func RateLimit(cfg config.RateLimitConfig, limiter ratelimit.Limiter) echo.MiddlewareFunc {
    if !cfg.Enabled || limiter == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            d, err := limiter.Allow(c.Request().Context(), key)
            if err != nil {
                slog.WarnContext(c.Request().Context(), "ratelimit: limiter error, allowing request", "key", key, "error", err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))

            if !d.Allowed {
                secs := int(math.Ceil(d.RetryAfter.Seconds()))
                if secs < 1 {
                    secs = 1
                }
                h.Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "rate limit exceeded",
                    "code":        "too_many_requests",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    parts := []string{cfg.Prefix}
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid, ok := UserID(c)
    if !ok {
        uid = "anon"
    }
    route := c.Request().Method + " " + c.Path()

    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
