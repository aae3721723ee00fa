package router // package router registers the API's HTTP routes

import (
    "github.com/labstack/echo/v4"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/handler"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/middleware"
)

// Deps collects what the routes need.  RateLimit and Cache may be no-op
// middleware when their backing stores are disabled.
type Deps struct {
    JWTSecret     string
    DB            handler.Pinger
    Events        *handler.EventHandler
    Orders        *handler.OrderHandler
    Registrations *handler.RegistrationHandler
    RateLimit     echo.MiddlewareFunc
    Cache         echo.MiddlewareFunc
}

// RegisterRoutes registers the probes, which need no authentication.
func RegisterRoutes(e *echo.Echo, d Deps) {
    e.GET("/healthz", handler.Health)
    if d.DB != nil {
        e.GET("/readyz", handler.Ready(d.DB))
    }
}

// RegisterPublic registers the unauthenticated catalogue.  The listing is
// rate limited before the cache so cache hits still consume tokens.
func RegisterPublic(e *echo.Echo, d Deps) {
    e.GET("/v1/events", d.Events.ListEvents, orNoop(d.RateLimit), orNoop(d.Cache))
}

// RegisterCustomer registers the authenticated purchase flow under /v1.
// Rate limiting runs after JWTAuth so buckets can be keyed by user.
func RegisterCustomer(e *echo.Echo, d Deps) {
    g := e.Group("/v1", middleware.JWTAuth(d.JWTSecret))
    g.POST("/orders", d.Orders.CreateOrder)
    g.POST("/payments/verify", d.Registrations.VerifyPayment)
    g.POST("/registrations", d.Registrations.Register, orNoop(d.RateLimit))
    g.GET("/my-registrations", d.Registrations.ListMine)
}

// Register wires every route group.
func Register(e *echo.Echo, d Deps) {
    RegisterRoutes(e, d)
    RegisterPublic(e, d)
    RegisterCustomer(e, d)
}

func orNoop(m echo.MiddlewareFunc) echo.MiddlewareFunc {
    if m == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return m
}
