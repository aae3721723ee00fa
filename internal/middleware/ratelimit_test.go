package middleware

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/config"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/ratelimit"
)

type stubLimiter struct {
    decision ratelimit.Decision
    err      error
    keys     []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (ratelimit.Decision, error) {
    s.keys = append(s.keys, key)
    return s.decision, s.err
}

func serveRateLimited(t *testing.T, cfg config.RateLimitConfig, l ratelimit.Limiter) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    e.GET("/v1/events", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimit(cfg, l))
    req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
    req.RemoteAddr = "10.0.0.1:1234"
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestRateLimit(t *testing.T) {
    t.Parallel()

    cfg := config.RateLimitConfig{Enabled: true, Capacity: 5, Prefix: "rl", KeyStrategy: "ip_route"}

    t.Run("allowed sets headers", func(t *testing.T) {
        l := &stubLimiter{decision: ratelimit.Decision{Allowed: true, Remaining: 4}}
        rec := serveRateLimited(t, cfg, l)
        if rec.Code != http.StatusOK {
            t.Fatalf("expected 200, got %d", rec.Code)
        }
        if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4" {
            t.Fatalf("expected remaining 4, got %q", got)
        }
        if len(l.keys) != 1 || l.keys[0] != "rl:ip:10.0.0.1:route:GET /v1/events" {
            t.Fatalf("unexpected key %v", l.keys)
        }
    })

    t.Run("blocked returns 429", func(t *testing.T) {
        l := &stubLimiter{decision: ratelimit.Decision{Allowed: false, RetryAfter: 1500 * time.Millisecond}}
        rec := serveRateLimited(t, cfg, l)
        if rec.Code != http.StatusTooManyRequests {
            t.Fatalf("expected 429, got %d", rec.Code)
        }
        if got := rec.Header().Get("Retry-After"); got != "2" {
            t.Fatalf("expected Retry-After 2, got %q", got)
        }
    })

    t.Run("limiter error fails open", func(t *testing.T) {
        rec := serveRateLimited(t, cfg, &stubLimiter{err: errors.New("redis down")})
        if rec.Code != http.StatusOK {
            t.Fatalf("expected 200, got %d", rec.Code)
        }
    })

    t.Run("disabled skips limiter", func(t *testing.T) {
        l := &stubLimiter{}
        off := cfg
        off.Enabled = false
        rec := serveRateLimited(t, off, l)
        if rec.Code != http.StatusOK || len(l.keys) != 0 {
            t.Fatalf("expected pass-through, got %d with %d calls", rec.Code, len(l.keys))
        }
    })
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
    t.Parallel()

    payload, err := encodePayload(http.StatusOK, http.Header{"Content-Type": {"application/json"}}, []byte(`{"ok":true}`))
    if err != nil {
        t.Fatalf("encode: %v", err)
    }
    status, hdr, body, ok := decodePayload(payload)
    if !ok || status != http.StatusOK || hdr.Get("Content-Type") != "application/json" || string(body) != `{"ok":true}` {
        t.Fatalf("unexpected decode: ok=%v status=%d hdr=%v body=%q", ok, status, hdr, body)
    }
    if _, _, _, ok := decodePayload(payload[:10]); ok {
        t.Fatalf("expected truncated payload to be rejected")
    }
}
